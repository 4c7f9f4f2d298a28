package source

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrEmptyAdapterName is a configuration error raised at registration.
	ErrEmptyAdapterName = errors.New("adapter name cannot be empty")
	// ErrUnknownAdapter marks a caller/config bug, distinct from data-fetch
	// failures: it must surface, never be swallowed.
	ErrUnknownAdapter = errors.New("unknown adapter")
)

// Factory builds an adapter instance.
type Factory func() Adapter

// Registry maps adapter names to factories. Registration happens explicitly
// from the composition point, never as an import side effect.
type Registry struct {
	mu sync.RWMutex
	m  map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{m: make(map[string]Factory)}
}

// Register binds a factory under a lowercased, trimmed name.
func (r *Registry) Register(name string, factory Factory) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return ErrEmptyAdapterName
	}
	r.mu.Lock()
	r.m[key] = factory
	r.mu.Unlock()
	return nil
}

// Make instantiates the named adapter.
func (r *Registry) Make(name string) (Adapter, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	factory, ok := r.m[key]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAdapter, name)
	}
	return factory(), nil
}

// Names lists registered adapter names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.m))
	for k := range r.m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
