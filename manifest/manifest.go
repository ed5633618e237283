// Package manifest parses adaptation profiles declared in YAML:
//
//	params:
//	  format:
//	    pdf: 1
//	    svg: 2
//	  mode:
//	    read: 1
//	    write: 2
//
// Parameters and keys keep their declaration order, which becomes the order of choices.
package manifest

import (
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/skosovsky/argmask"
)

// fileManifest is the YAML manifest shape. params stays a node so mapping order survives decoding.
type fileManifest struct {
	Params yaml.Node `yaml:"params"`
}

// ParseBytes parses a YAML manifest and returns its Definition.
// Errors wrap argmask.ErrInvalidManifest; definition errors (e.g. argmask.ErrDefinitionConflict) are wrapped too.
func ParseBytes(data []byte) (*argmask.Definition, error) {
	var m fileManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: %w", argmask.ErrInvalidManifest, err)
	}
	return buildDefinition(&m.Params)
}

// ParseFile reads and parses a manifest file.
func ParseFile(path string) (*argmask.Definition, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is validated by caller
	if err != nil {
		return nil, fmt.Errorf("manifest: read file: %w", err)
	}
	return ParseBytes(data)
}

// ParseFS reads and parses a manifest from fs.FS (e.g. embed.FS).
func ParseFS(fsys fs.FS, name string) (*argmask.Definition, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("manifest: read fs: %w", err)
	}
	return ParseBytes(data)
}

func buildDefinition(params *yaml.Node) (*argmask.Definition, error) {
	if params.Kind == 0 {
		return nil, fmt.Errorf("%w: missing params", argmask.ErrInvalidManifest)
	}
	if params.Kind != yaml.MappingNode || len(params.Content) == 0 {
		return nil, fmt.Errorf("%w: line %d: params must be a non-empty mapping", argmask.ErrInvalidManifest, params.Line)
	}
	maps := make([]argmask.ValueMap, 0, len(params.Content)/2)
	for i := 0; i+1 < len(params.Content); i += 2 {
		name, values := params.Content[i], params.Content[i+1]
		if values.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("%w: line %d: parameter %q must map keys to values", argmask.ErrInvalidManifest, values.Line, name.Value)
		}
		vm := argmask.ValueMap{Param: name.Value}
		for j := 0; j+1 < len(values.Content); j += 2 {
			key, val := values.Content[j], values.Content[j+1]
			if val.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("%w: line %d: parameter %q key %q: value must be a scalar", argmask.ErrInvalidManifest, val.Line, name.Value, key.Value)
			}
			var v any
			if err := val.Decode(&v); err != nil {
				return nil, fmt.Errorf("%w: line %d: %w", argmask.ErrInvalidManifest, val.Line, err)
			}
			vm.Entries = append(vm.Entries, argmask.Key(key.Value, v))
		}
		maps = append(maps, vm)
	}
	def, err := argmask.NewDefinition(maps...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", argmask.ErrInvalidManifest, err)
	}
	return def, nil
}
