package fileregistry

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/singleflight"

	"github.com/skosovsky/argmask"
	"github.com/skosovsky/argmask/manifest"
)

// Ensures Registry implements argmask.DefinitionRegistry.
var _ argmask.DefinitionRegistry = (*Registry)(nil)

// Registry loads definitions from the filesystem (lazy, cached).
// Concurrent misses for the same name share a single load.
type Registry struct {
	dir   string
	mu    sync.RWMutex
	cache map[string]*argmask.Definition
	sf    singleflight.Group
}

// New creates a Registry that reads YAML manifests from dir.
func New(dir string, opts ...Option) *Registry {
	r := &Registry{
		dir:   dir,
		cache: make(map[string]*argmask.Definition),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Option configures a Registry.
type Option func(*Registry)

// WithPreload stores already-built definitions under the given names; files are not consulted for them.
func WithPreload(defs map[string]*argmask.Definition) Option {
	return func(r *Registry) {
		for name, def := range defs {
			r.cache[name] = def
		}
	}
}

// GetDefinition returns a definition by name. Lazy-loads and caches.
// Definitions are immutable, so the cached value is shared with callers.
func (r *Registry) GetDefinition(ctx context.Context, name string) (*argmask.Definition, error) {
	if err := argmask.ValidateName(name); err != nil {
		return nil, err
	}
	r.mu.RLock()
	def, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	v, err, _ := r.sf.Do(name, func() (any, error) {
		return r.load(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(*argmask.Definition), nil
}

func (r *Registry) load(ctx context.Context, name string) (*argmask.Definition, error) {
	r.mu.RLock()
	def, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}
	for _, file := range argmask.CandidatePaths(name) {
		path := filepath.Join(r.dir, file)
		def, err := manifest.ParseFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			clog.FromContext(ctx).With("path", path).Warnf("failed to load definition: %v", err)
			return nil, err
		}
		r.mu.Lock()
		r.cache[name] = def
		r.mu.Unlock()
		return def, nil
	}
	return nil, fmt.Errorf("%w: %q", argmask.ErrDefinitionNotFound, name)
}

// Reload clears the cache (for hot-reload in development). Preloaded definitions are dropped too.
func (r *Registry) Reload() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]*argmask.Definition)
}
