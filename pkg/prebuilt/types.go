package prebuilt

import (
	"fmt"
	"sort"
	"sync"

	"github.com/stategraph/stategraph/pkg/stategraph"
)

// Builder constructs a compiled graph from a typed configuration.
// Implementations should be pure and return a graph that already passed
// compile validation.
type Builder interface {
	Name() string
	Build(cfg any) (*stategraph.CompiledGraph, error)
}

// BuildFunc adapts a function to the Builder interface.
type BuildFunc struct {
	BuilderName string
	Fn          func(cfg any) (*stategraph.CompiledGraph, error)
}

func (b BuildFunc) Name() string { return b.BuilderName }

func (b BuildFunc) Build(cfg any) (*stategraph.CompiledGraph, error) {
	return b.Fn(cfg)
}

// Registry holds named prebuilt builders.
type Registry struct {
	mu       sync.RWMutex
	builders map[string]Builder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

// Register adds or replaces a builder.
func (r *Registry) Register(b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.builders[b.Name()] = b
}

// MustRegister panics on duplicate names, for init time wiring.
func (r *Registry) MustRegister(b Builder) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.builders[b.Name()]; exists {
		panic(fmt.Sprintf("prebuilt already registered: %s", b.Name()))
	}
	r.builders[b.Name()] = b
}

// Get retrieves a builder by name.
func (r *Registry) Get(name string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.builders[name]
	return b, ok
}

// Names lists the registered builders, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
