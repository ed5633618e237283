package argmask

import (
	"maps"
	"slices"
)

// Named carries named arguments. Passed as the last argument of Func.Call.
type Named map[string]any

// Arg is one bound argument: a parameter name and the raw value supplied for it.
type Arg struct {
	Name  string
	Value any
}

// Args is the ordered result of binding one call's arguments to parameter names.
type Args []Arg

// Get returns the value bound to name.
func (a Args) Get(name string) (any, bool) {
	for _, arg := range a {
		if arg.Name == name {
			return arg.Value, true
		}
	}
	return nil, false
}

// Map returns the bound arguments as a name -> value map.
func (a Args) Map() map[string]any {
	out := make(map[string]any, len(a))
	for _, arg := range a {
		out[arg.Name] = arg.Value
	}
	return out
}

// Bind maps a call's positional and named arguments onto parameter names.
//
// Positional values pair one-to-one, in order, with the parameters that accept positional
// values (positional-only, positional-or-named, variadic-positional); pairing stops at the
// shorter of the two. A variadic-positional parameter receives at most one value, like any other.
// Named values are overlaid afterwards and win over positional ones: a name already bound keeps
// its position, new names follow in parameter order and names unknown to params in sorted order.
func Bind(params []Parameter, positional []any, named map[string]any) Args {
	out := make(Args, 0, len(params)+len(named))
	i := 0
	for _, p := range params {
		if i >= len(positional) {
			break
		}
		if !p.Kind.positional() {
			continue
		}
		out = append(out, Arg{Name: p.Name, Value: positional[i]})
		i++
	}
	if len(named) == 0 {
		return out
	}
	pending := maps.Clone(named)
	for j := range out {
		if v, ok := pending[out[j].Name]; ok {
			out[j].Value = v
			delete(pending, out[j].Name)
		}
	}
	for _, p := range params {
		if v, ok := pending[p.Name]; ok {
			out = append(out, Arg{Name: p.Name, Value: v})
			delete(pending, p.Name)
		}
	}
	for _, name := range slices.Sorted(maps.Keys(pending)) {
		out = append(out, Arg{Name: name, Value: pending[name]})
	}
	return out
}
