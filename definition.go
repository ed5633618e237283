package argmask

import (
	"fmt"
	"slices"
	"strings"

	"github.com/skosovsky/argmask/internal/cast"
)

// Entry declares one external key and the internal value it stands for.
type Entry struct {
	Key   string
	Value any // string or number
}

// Key is shorthand for Entry{Key: external, Value: internal}.
func Key(external string, internal any) Entry {
	return Entry{Key: external, Value: internal}
}

// ValueMap is the raw declaration of one parameter's external-to-internal mapping.
type ValueMap struct {
	Param   string
	Entries []Entry
}

// Values declares the value map of param.
func Values(param string, entries ...Entry) ValueMap {
	return ValueMap{Param: param, Entries: entries}
}

type valueMap struct {
	keys   []string // lowercase, declaration order
	values map[string]any
}

// Definition is a normalized, immutable adaptation profile: parameter name to value map.
// Parameter names and external keys are lowercase. A Definition is not tied to any
// function and may be shared by any number of wrappers and goroutines.
type Definition struct {
	params []string
	maps   map[string]*valueMap
}

// NewDefinition normalizes the declared value maps into a Definition.
// Names and keys are lowercased; repeated declarations of a parameter are merged.
// Returns a *ConflictError (ErrDefinitionConflict) when a key is declared twice with
// different internal values, and ErrInvalidDefinition for empty names or non-scalar values.
func NewDefinition(maps ...ValueMap) (*Definition, error) {
	d := &Definition{maps: make(map[string]*valueMap, len(maps))}
	for _, m := range maps {
		param := strings.ToLower(strings.TrimSpace(m.Param))
		if param == "" {
			return nil, fmt.Errorf("%w: empty parameter name", ErrInvalidDefinition)
		}
		vm, ok := d.maps[param]
		if !ok {
			vm = &valueMap{values: make(map[string]any, len(m.Entries))}
			d.maps[param] = vm
			d.params = append(d.params, param)
		}
		for _, e := range m.Entries {
			key := strings.ToLower(e.Key)
			if key == "" {
				return nil, fmt.Errorf("%w: parameter %q: empty key", ErrInvalidDefinition, param)
			}
			if !cast.IsScalar(e.Value) {
				return nil, fmt.Errorf("%w: parameter %q key %q: value %v (%T) is not a string or number",
					ErrInvalidDefinition, param, key, e.Value, e.Value)
			}
			if prev, dup := vm.values[key]; dup {
				if prev != e.Value {
					return nil, &ConflictError{Param: param, Key: key, First: prev, Second: e.Value}
				}
				continue
			}
			vm.values[key] = e.Value
			vm.keys = append(vm.keys, key)
		}
	}
	return d, nil
}

// MustDefinition is like NewDefinition but panics on error.
// Intended for package-level profile declarations.
func MustDefinition(maps ...ValueMap) *Definition {
	d, err := NewDefinition(maps...)
	if err != nil {
		panic(err)
	}
	return d
}

// Params returns the adapted parameter names in declaration order.
func (d *Definition) Params() []string {
	return slices.Clone(d.params)
}

// Has reports whether param is adapted. The lookup is case-insensitive.
func (d *Definition) Has(param string) bool {
	_, ok := d.maps[strings.ToLower(param)]
	return ok
}

// Choices returns the valid external keys of param in declaration order, or nil.
func (d *Definition) Choices(param string) []string {
	vm, ok := d.maps[strings.ToLower(param)]
	if !ok {
		return nil
	}
	return slices.Clone(vm.keys)
}

// Lookup returns the internal value for key. Both param and key are case-insensitive.
func (d *Definition) Lookup(param, key string) (any, bool) {
	vm, ok := d.maps[strings.ToLower(param)]
	if !ok {
		return nil, false
	}
	v, ok := vm.values[strings.ToLower(key)]
	return v, ok
}
