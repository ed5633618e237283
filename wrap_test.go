package argmask

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recorder struct {
	calls atomic.Int32
	last  atomic.Pointer[exportArgs]
}

func (r *recorder) export(_ context.Context, a exportArgs) (string, error) {
	r.calls.Add(1)
	r.last.Store(&a)
	return fmt.Sprintf("%s:%d:%d", a.Filename, a.Format, a.Mode), nil
}

func TestFunc_Call_TranslatesPositional(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	f, err := Adapt(exportDef, rec.export)
	require.NoError(t, err)

	got, err := f.Call(context.Background(), "x.pdf", "PDF", "read")
	require.NoError(t, err)
	assert.Equal(t, "x.pdf:1:1", got)
	assert.Equal(t, exportArgs{Filename: "x.pdf", Format: 1, Mode: 1}, *rec.last.Load())
}

func TestFunc_Call_TranslatesNamed(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	f, err := Adapt(exportDef, rec.export)
	require.NoError(t, err)

	got, err := f.Call(context.Background(), "x.svg", Named{"mode": "WRITE", "format": "svg"})
	require.NoError(t, err)
	assert.Equal(t, "x.svg:2:2", got)

	got, err = f.Call(context.Background(), "x.svg", "pdf", Named{"format": "svg"})
	require.NoError(t, err)
	assert.Equal(t, "x.svg:2:0", got, "named value wins over positional")
}

func TestFunc_Call_InvalidValueListsChoices(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	f, err := Adapt(exportDef, rec.export, WithName("export"))
	require.NoError(t, err)

	_, err = f.Call(context.Background(), "x.pdf", "pdf", "update")
	require.ErrorIs(t, err, ErrAdaptation)
	var aerr *AdaptationError
	require.ErrorAs(t, err, &aerr)
	assert.Equal(t, "export", aerr.Func)
	assert.Contains(t, err.Error(), "(choices are read, write)")
	assert.Zero(t, rec.calls.Load())
}

func TestFunc_Call_AllFailuresReportedTogether(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	f, err := Adapt(exportDef, rec.export)
	require.NoError(t, err)

	_, err = f.Call(context.Background(), "x.png", "png", "update")
	require.ErrorIs(t, err, ErrAdaptation)
	assert.Contains(t, err.Error(), "Invalid value for 'format': 'png' (choices are pdf, svg)")
	assert.Contains(t, err.Error(), "Invalid value for 'mode': 'update' (choices are read, write)")
	assert.Len(t, strings.Split(err.Error(), "\n"), 2)
	assert.Zero(t, rec.calls.Load())
}

func TestFunc_Call_SequenceIntoSliceField(t *testing.T) {
	t.Parallel()
	type layersArgs struct {
		Formats []int `arg:"format"`
	}
	var got []int
	f, err := Adapt(exportDef, func(a layersArgs) { got = a.Formats })
	require.NoError(t, err)
	_, err = f.Call(context.Background(), []string{"svg", "pdf"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, got)
}

func TestFunc_Call_KindsAndKwargs(t *testing.T) {
	t.Parallel()
	var got kindArgs
	f, err := Adapt(MustDefinition(Values("dst", Key("home", "/home"))), func(_ context.Context, a *kindArgs) error {
		got = *a
		return nil
	})
	require.NoError(t, err)

	_, err = f.Call(context.Background(), "a", "HOME", "only", Named{"verbose": true, "color": "red"})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Src)
	assert.Equal(t, "/home", got.Dst)
	assert.Equal(t, []string{"only"}, got.Rest)
	assert.True(t, got.Verbose)
	assert.Equal(t, map[string]any{"color": "red"}, got.Extra)
}

func TestFunc_Call_InvocationErrors(t *testing.T) {
	t.Parallel()
	f, err := Adapt(exportDef, func(exportArgs) {})
	require.NoError(t, err)

	_, err = f.Call(context.Background(), Named{"colour": "red"})
	require.ErrorIs(t, err, ErrUnexpectedArgument)

	_, err = f.Call(context.Background(), 42)
	require.ErrorIs(t, err, ErrInvalidArgument)

	noArgs, err := Adapt(exportDef, func() {})
	require.NoError(t, err)
	_, err = noArgs.Call(context.Background(), "ignored")
	require.NoError(t, err, "surplus positional values are not bound")
	_, err = noArgs.Call(context.Background(), Named{"x": 1})
	require.ErrorIs(t, err, ErrUnexpectedArgument)
}

type sizeArgs struct {
	N     int64
	U     uint64
	Small int8
}

func TestFunc_Call_NumericRange(t *testing.T) {
	t.Parallel()
	f, err := Adapt(exportDef, func(a sizeArgs) sizeArgs { return a })
	require.NoError(t, err)
	ctx := context.Background()

	valid := []struct {
		name string
		in   Named
		want sizeArgs
	}{
		{"whole float into int64", Named{"n": float64(-42)}, sizeArgs{N: -42}},
		{"min int64 as float", Named{"n": float64(math.MinInt64)}, sizeArgs{N: math.MinInt64}},
		{"max uint64", Named{"u": uint64(math.MaxUint64)}, sizeArgs{U: math.MaxUint64}},
		{"large float into uint64", Named{"u": 1e19}, sizeArgs{U: 10000000000000000000}},
		{"int into int8", Named{"small": 127}, sizeArgs{Small: 127}},
	}
	for _, tt := range valid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := f.Call(ctx, tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	invalid := []struct {
		name string
		in   Named
	}{
		{"float above int64", Named{"n": 1e20}},
		{"float below int64", Named{"n": -1e20}},
		{"uint64 above int64", Named{"n": uint64(math.MaxUint64)}},
		{"infinity", Named{"n": math.Inf(1)}},
		{"float above uint64", Named{"u": 1e20}},
		{"negative into uint64", Named{"u": -1}},
		{"overflows int8", Named{"small": 300}},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := f.Call(ctx, tt.in)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Nil(t, got)
		})
	}
}

func TestFunc_Call_ReturnsTargetError(t *testing.T) {
	t.Parallel()
	boom := errors.New("boom")
	f, err := Adapt(exportDef, func(context.Context, exportArgs) error { return boom })
	require.NoError(t, err)
	res, err := f.Call(context.Background(), "x", "pdf")
	require.ErrorIs(t, err, boom)
	assert.Nil(t, res)
}

func TestFunc_Call_PassesContext(t *testing.T) {
	t.Parallel()
	type key struct{}
	ctx := context.WithValue(context.Background(), key{}, "v")
	f, err := Adapt(exportDef, func(ctx context.Context) any { return ctx.Value(key{}) })
	require.NoError(t, err)
	got, err := f.Call(ctx)
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestAdapt_Unavailable(t *testing.T) {
	t.Parallel()
	_, err := Adapt(exportDef, func(string, int) {})
	require.ErrorIs(t, err, ErrSignatureUnavailable)
	_, err = Adapt(exportDef, (*Func)(nil))
	require.ErrorIs(t, err, ErrSignatureUnavailable)
	_, err = Adapt(nil, func() {})
	require.ErrorIs(t, err, ErrInvalidDefinition)
}

func TestAdapt_Metadata(t *testing.T) {
	t.Parallel()
	type annotated struct {
		Filename string
		Format   int
		Mode     int `jsonschema:"minimum=1"`
	}
	target := Target{Name: "export", Doc: "Exports a layout.", Fn: func(annotated) {}}
	f, err := Adapt(exportDef, target)
	require.NoError(t, err)

	assert.Equal(t, "export", f.Name())
	assert.Equal(t, "Exports a layout.", f.Doc())
	assert.Same(t, exportDef, f.Definition())
	assert.Len(t, f.Params(), 3)
	hints := f.Hints()
	assert.Equal(t, []any{"pdf", "svg"}, hints["format"].Enum)
	assert.Equal(t, "integer", hints["mode"].Type, "explicit annotation wins")
	assert.Equal(t, []string{"String::pdf|svg:", "String::read|write:"}, f.ToolInfo())

	own, err := Adapt(exportDef, target, WithDoc("Wrapper doc."))
	require.NoError(t, err)
	assert.Equal(t, "Wrapper doc.", own.Doc())
}

func TestAdapt_TargetHintsOverrideReflected(t *testing.T) {
	t.Parallel()
	explicit := &jsonschema.Schema{Type: "integer", Description: "format id"}
	f, err := Adapt(exportDef, &Target{Fn: func(exportArgs) {}, Hints: map[string]*jsonschema.Schema{"format": explicit}})
	require.NoError(t, err)
	assert.Same(t, explicit, f.Hints()["format"])
	assert.NotEmpty(t, f.Name())
}

func TestAdapt_RewrapKeepsToolInfo(t *testing.T) {
	t.Parallel()
	inner, err := Adapt(exportDef, Target{Name: "export", Doc: "Inner doc.", Fn: func(exportArgs) {}, ToolInfo: []string{"GPString::"}})
	require.NoError(t, err)
	require.Equal(t, []string{"GPString::"}, inner.ToolInfo())

	outer, err := Adapt(MustDefinition(Values("filename", Key("default", "x.pdf"))), inner)
	require.NoError(t, err)
	assert.Equal(t, []string{"GPString::"}, outer.ToolInfo())
	assert.Equal(t, "Inner doc.", outer.Doc())
	assert.Equal(t, "export", outer.Name())
	assert.Contains(t, outer.Hints(), "format")
	assert.Contains(t, outer.Hints(), "filename")
}

func TestAdapt_RewrapTranslatesBoth(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	inner, err := Adapt(exportDef, rec.export)
	require.NoError(t, err)
	outer, err := Adapt(MustDefinition(Values("filename", Key("default", "x.pdf"))), inner)
	require.NoError(t, err)

	got, err := outer.Call(context.Background(), "DEFAULT", "svg", Named{"mode": "read"})
	require.NoError(t, err)
	assert.Equal(t, "x.pdf:2:1", got)
}

func TestAdaptAll(t *testing.T) {
	t.Parallel()
	e := &exporter{}
	funcs, err := AdaptAll(exportDef, e)
	require.NoError(t, err)
	require.Contains(t, funcs, "Export")
	assert.Equal(t, "Export", funcs["Export"].Name())

	got, err := funcs["Export"].Call(context.Background(), "x.pdf", Named{"format": "SVG"})
	require.NoError(t, err)
	assert.Equal(t, "x.pdf", got)
	assert.Equal(t, 1, e.calls)

	_, err = AdaptAll(exportDef, exporter{})
	require.NoError(t, err, "value receiver has an empty method set here")

	_, err = AdaptAll(exportDef, nil)
	require.ErrorIs(t, err, ErrSignatureUnavailable)
}

type badMethods struct{}

func (badMethods) Sum(a, b int) int { return a + b }

func TestAdaptAll_FailsOnUnintrospectableMethod(t *testing.T) {
	t.Parallel()
	_, err := AdaptAll(exportDef, badMethods{})
	require.ErrorIs(t, err, ErrSignatureUnavailable)
	assert.Contains(t, err.Error(), "method Sum")
}

func TestFunc_Call_Concurrent(t *testing.T) {
	t.Parallel()
	rec := &recorder{}
	f, err := Adapt(exportDef, rec.export)
	require.NoError(t, err)

	var g errgroup.Group
	for i := range 32 {
		g.Go(func() error {
			format := []string{"pdf", "SVG"}[i%2]
			_, err := f.Call(context.Background(), "x", format, "read")
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.EqualValues(t, 32, rec.calls.Load())
}
