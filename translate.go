package argmask

import (
	"fmt"
	"slices"
	"strings"

	"github.com/skosovsky/argmask/internal/cast"
)

// Translate replaces every adapted argument's external value with its internal value.
//
// A string, or a value of a named string type, is lowercased before lookup. A slice or array
// is checked entry by entry against the keys as given, without case folding, and becomes a
// []any of internal values in the same order. Arguments of other kinds, and arguments whose
// name is not adapted, pass through unchanged. Every invalid argument yields one Failure under
// the lowercase parameter name; if there is any, Translate returns an *AdaptationError listing
// all of them and no translated Args. args is never modified.
func (d *Definition) Translate(args Args) (Args, error) {
	out := slices.Clone(args)
	var failures []Failure
	for i, arg := range out {
		param := strings.ToLower(arg.Name)
		vm, ok := d.maps[param]
		if !ok {
			continue
		}
		if s, ok := cast.ToString(arg.Value); ok {
			key := strings.ToLower(s)
			v, ok := vm.values[key]
			if !ok {
				failures = append(failures, vm.failure(param, []string{key}))
				continue
			}
			out[i].Value = v
			continue
		}
		seq, ok := cast.ToSequence(arg.Value)
		if !ok {
			continue
		}
		mapped := make([]any, len(seq))
		var missing []string
		for j, entry := range seq {
			key, isString := cast.ToString(entry)
			v, found := vm.values[key]
			if !isString || !found {
				missing = append(missing, fmt.Sprint(entry))
				continue
			}
			mapped[j] = v
		}
		if len(missing) > 0 {
			failures = append(failures, vm.failure(param, missing))
			continue
		}
		out[i].Value = mapped
	}
	if len(failures) > 0 {
		return nil, &AdaptationError{Failures: failures}
	}
	return out, nil
}

func (vm *valueMap) failure(param string, invalid []string) Failure {
	quoted := make([]string, len(invalid))
	for i, v := range invalid {
		quoted[i] = "'" + v + "'"
	}
	noun := "value"
	if len(invalid) > 1 {
		noun = "values"
	}
	return Failure{
		Param:   param,
		Invalid: invalid,
		Choices: slices.Clone(vm.keys),
		Message: fmt.Sprintf("Invalid %s for '%s': %s (choices are %s)",
			noun, param, strings.Join(quoted, ", "), strings.Join(vm.keys, ", ")),
	}
}
