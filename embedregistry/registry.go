package embedregistry

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skosovsky/argmask"
	"github.com/skosovsky/argmask/manifest"
)

// Ensures Registry implements argmask.DefinitionRegistry.
var _ argmask.DefinitionRegistry = (*Registry)(nil)

// Registry holds every definition parsed from an fs.FS at construction (eager). Read-only after New, no mutex.
type Registry struct {
	cache map[string]*argmask.Definition
}

// Option configures New.
type Option func(*options)

type options struct {
	limit int
}

// WithConcurrency bounds the number of manifests parsed at once. Zero or less means no limit.
func WithConcurrency(n int) Option {
	return func(o *options) { o.limit = n }
}

// New walks fsys under root, parses every .yaml and .yml file, and returns a Registry keyed by
// file base name without extension. Two files with the same base name are an error.
func New(fsys fs.FS, root string, opts ...Option) (*Registry, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	var files []string
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || (!strings.HasSuffix(p, ".yaml") && !strings.HasSuffix(p, ".yml")) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}

	r := &Registry{cache: make(map[string]*argmask.Definition, len(files))}
	sources := make(map[string]string, len(files))
	var mu sync.Mutex
	var g errgroup.Group
	if o.limit > 0 {
		g.SetLimit(o.limit)
	}
	for _, p := range files {
		name := strings.TrimSuffix(strings.TrimSuffix(path.Base(p), ".yaml"), ".yml")
		if err := argmask.ValidateName(name); err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		g.Go(func() error {
			def, err := manifest.ParseFS(fsys, p)
			if err != nil {
				return fmt.Errorf("%s: %w", p, err)
			}
			mu.Lock()
			defer mu.Unlock()
			if prev, ok := sources[name]; ok {
				return fmt.Errorf("%w: %q defined by both %s and %s", argmask.ErrInvalidManifest, name, prev, p)
			}
			sources[name] = p
			r.cache[name] = def
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return r, nil
}

// GetDefinition returns a definition by name. O(1) map lookup.
func (r *Registry) GetDefinition(ctx context.Context, name string) (*argmask.Definition, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if def, ok := r.cache[name]; ok {
		return def, nil
	}
	return nil, fmt.Errorf("%w: %q", argmask.ErrDefinitionNotFound, name)
}

// Names returns the names of all loaded definitions, in no particular order.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.cache))
	for name := range r.cache {
		out = append(out, name)
	}
	return out
}
