// Package registry maps names to node and router functions so graphs
// loaded from declarative definitions can reference code by name.
package registry

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/stategraph/stategraph/internal/core/graph"
)

var (
	ErrDuplicateRegistration = errors.New("name already registered")
	ErrNotRegistered         = errors.New("name not registered")
)

// Registry holds named functions. Safe for concurrent use; registration
// is usually done at init time, lookup at graph-load time.
type Registry struct {
	mu      sync.RWMutex
	nodes   map[string]graph.NodeFunc
	routers map[string]graph.RouterFunc
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		nodes:   make(map[string]graph.NodeFunc),
		routers: make(map[string]graph.RouterFunc),
	}
}

// RegisterNode binds a name to a node function.
func (r *Registry) RegisterNode(name string, fn graph.NodeFunc) error {
	if fn == nil {
		return graph.ErrNilNodeFunc
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.nodes[name]; exists {
		return fmt.Errorf("%w: node %q", ErrDuplicateRegistration, name)
	}
	r.nodes[name] = fn
	return nil
}

// RegisterRouter binds a name to a router function.
func (r *Registry) RegisterRouter(name string, fn graph.RouterFunc) error {
	if fn == nil {
		return graph.ErrNilRouter
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.routers[name]; exists {
		return fmt.Errorf("%w: router %q", ErrDuplicateRegistration, name)
	}
	r.routers[name] = fn
	return nil
}

// Node looks up a node function by name.
func (r *Registry) Node(name string) (graph.NodeFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.nodes[name]
	if !ok {
		return nil, fmt.Errorf("%w: node %q", ErrNotRegistered, name)
	}
	return fn, nil
}

// Router looks up a router function by name.
func (r *Registry) Router(name string) (graph.RouterFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.routers[name]
	if !ok {
		return nil, fmt.Errorf("%w: router %q", ErrNotRegistered, name)
	}
	return fn, nil
}

// Nodes returns the registered node names, sorted.
func (r *Registry) Nodes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.nodes))
	for name := range r.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Routers returns the registered router names, sorted.
func (r *Registry) Routers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.routers))
	for name := range r.routers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
