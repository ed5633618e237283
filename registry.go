package argmask

import (
	"context"
	"fmt"
	"strings"
)

// DefinitionRegistry returns a named adaptation profile.
type DefinitionRegistry interface {
	GetDefinition(ctx context.Context, name string) (*Definition, error)
}

// ValidateName checks that name is safe for use in file paths and cache keys:
// non-empty, no path separators, no "..", no ':'.
func ValidateName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: empty", ErrInvalidName)
	case strings.ContainsAny(name, `/\:`):
		return fmt.Errorf("%w: %q contains a path separator or ':'", ErrInvalidName, name)
	case strings.Contains(name, ".."):
		return fmt.Errorf("%w: %q contains '..'", ErrInvalidName, name)
	}
	return nil
}

// CandidatePaths returns manifest filename candidates in resolution order: name.yaml, name.yml.
// Call ValidateName(name) before using the result with filesystem paths.
func CandidatePaths(name string) []string {
	return []string{name + ".yaml", name + ".yml"}
}
