package argmask_test

import (
	"context"
	"fmt"

	"github.com/skosovsky/argmask"
)

var exportProfile = argmask.MustDefinition(
	argmask.Values("format", argmask.Key("pdf", 1), argmask.Key("svg", 2)),
	argmask.Values("mode", argmask.Key("read", 1), argmask.Key("write", 2)),
)

type ExportArgs struct {
	Filename string
	Format   int
	Mode     int
}

func export(a ExportArgs) string {
	return fmt.Sprintf("%s format=%d mode=%d", a.Filename, a.Format, a.Mode)
}

func ExampleAdapt() {
	f, err := argmask.Adapt(exportProfile, export)
	if err != nil {
		panic(err)
	}
	out, err := f.Call(context.Background(), "x.pdf", "PDF", "read")
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: x.pdf format=1 mode=1
}

func ExampleFunc_Call_invalid() {
	f, _ := argmask.Adapt(exportProfile, export)
	_, err := f.Call(context.Background(), "x.pdf", "png", argmask.Named{"mode": "update"})
	fmt.Println(err)
	// Output:
	// Invalid value for 'format': 'png' (choices are pdf, svg)
	// Invalid value for 'mode': 'update' (choices are read, write)
}

func ExampleFunc_ToolInfo() {
	f, _ := argmask.Adapt(exportProfile, export)
	fmt.Println(f.ToolInfo())
	// Output: [String::pdf|svg: String::read|write:]
}
