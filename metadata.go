package argmask

import (
	"maps"
	"slices"
	"strings"

	"github.com/invopop/jsonschema"
)

// Metadata is what a registration or reflection consumer reads off a wrapped function.
// ToolInfo is nil when absent; an empty non-nil slice is a present, empty descriptor.
type Metadata struct {
	Doc      string
	Hints    map[string]*jsonschema.Schema
	ToolInfo []string
}

func (m Metadata) clone() Metadata {
	out := Metadata{Doc: m.Doc, Hints: maps.Clone(m.Hints)}
	if m.ToolInfo != nil {
		out.ToolInfo = slices.Clone(m.ToolInfo)
	}
	return out
}

// ChoiceHint returns the inferred type hint of an adapted parameter: a string restricted
// to the given external keys.
func ChoiceHint(choices []string) *jsonschema.Schema {
	enum := make([]any, len(choices))
	for i, c := range choices {
		enum[i] = c
	}
	return &jsonschema.Schema{Type: "string", Enum: enum}
}

// ToolInfoEntry formats the descriptor entry of an adapted parameter: String::k1|k2:
func ToolInfoEntry(choices []string) string {
	return "String::" + strings.Join(choices, "|") + ":"
}

// propagate computes the wrapper's metadata once, at wrap time.
// doc is the wrapper's own documentation; target is the wrapped function's metadata.
func propagate(def *Definition, params []Parameter, doc string, target Metadata) Metadata {
	out := Metadata{Doc: doc}
	if out.Doc == "" {
		out.Doc = target.Doc
	}

	hints := make(map[string]*jsonschema.Schema)
	for _, p := range params {
		if choices := def.Choices(p.Name); choices != nil {
			hints[p.Name] = ChoiceHint(choices)
		}
	}
	maps.Copy(hints, target.Hints)
	if len(hints) > 0 {
		out.Hints = hints
	}

	if target.ToolInfo != nil {
		out.ToolInfo = slices.Clone(target.ToolInfo)
		return out
	}
	out.ToolInfo = make([]string, 0, len(params))
	for _, p := range params {
		if choices := def.Choices(p.Name); choices != nil {
			out.ToolInfo = append(out.ToolInfo, ToolInfoEntry(choices))
		}
	}
	return out
}
