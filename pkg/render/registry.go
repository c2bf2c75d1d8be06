package render

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrRendererRequired = errors.New("render: renderer with a name is required")
	ErrRendererExists   = errors.New("render: renderer already registered")
	ErrRendererNotFound = errors.New("render: renderer not found")
)

// Registry maps output names ("html", "tui") to renderers. The server and
// the CLI look renderers up by the name a caller asks for.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]Renderer
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Renderer)}
}

// Register adds each renderer under its Name. It stops at the first nil,
// unnamed or duplicate renderer; earlier ones stay registered.
func (r *Registry) Register(renderers ...Renderer) error {
	if len(renderers) == 0 {
		return ErrRendererRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, renderer := range renderers {
		if renderer == nil || renderer.Name() == "" {
			return ErrRendererRequired
		}
		name := renderer.Name()
		if _, taken := r.byName[name]; taken {
			return fmt.Errorf("%w: %q", ErrRendererExists, name)
		}
		r.byName[name] = renderer
	}
	return nil
}

func (r *Registry) Get(name string) (Renderer, error) {
	r.mu.RLock()
	renderer, ok := r.byName[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRendererNotFound, name)
	}
	return renderer, nil
}

// List returns the registered names in order.
func (r *Registry) List() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byName[name]
	return ok
}
