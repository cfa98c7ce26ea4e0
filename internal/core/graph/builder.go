package graph

import (
	"fmt"
	"sort"

	"github.com/stategraph/stategraph/internal/core/state"
)

// Builder accumulates nodes and edges and produces an immutable
// CompiledGraph. The builder is mutable and unchecked beyond the
// per-operation guards below; Compile performs full structural
// validation. A failed Compile exposes no partial definition; the
// builder may be corrected and compiled again.
//
// Builders are not safe for concurrent use.
type Builder struct {
	name   string
	schema *state.Schema

	nodes map[string]*Node

	edges        map[string]string
	conditionals map[string]*conditionalEdge

	entry    string
	entrySet int
}

// NewBuilder creates a builder for a named graph over the given schema.
func NewBuilder(name string, schema *state.Schema) *Builder {
	if schema == nil {
		schema = state.NewSchema()
	}
	return &Builder{
		name:         name,
		schema:       schema,
		nodes:        make(map[string]*Node),
		edges:        make(map[string]string),
		conditionals: make(map[string]*conditionalEdge),
	}
}

// AddNode registers a work function under a unique name.
func (b *Builder) AddNode(name string, fn NodeFunc) error {
	if Reserved(name) {
		return fmt.Errorf("%w: %s", ErrReservedName, name)
	}
	if fn == nil {
		return fmt.Errorf("%w: %s", ErrNilNodeFunc, name)
	}
	if _, exists := b.nodes[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, name)
	}
	b.nodes[name] = &Node{Name: name, Fn: fn}
	return nil
}

// AddEdge declares a fixed transition from -> to. The source must already
// be registered (or be the Start sentinel, which sets the entry point);
// the target may be registered later and is resolved at Compile. A node
// carries at most one outgoing edge of either kind.
func (b *Builder) AddEdge(from, to string) error {
	if from == Start {
		return b.SetEntry(to)
	}
	if _, exists := b.nodes[from]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if b.hasOutgoing(from) {
		return fmt.Errorf("%w: %s", ErrConflictingEdge, from)
	}
	b.edges[from] = to
	return nil
}

// AddConditionalEdge attaches a routing function to from. Optional
// targets declare the router's codomain; each must resolve to a node or
// End at Compile, and a routed name outside the declared set fails the
// run even if the node exists.
func (b *Builder) AddConditionalEdge(from string, router RouterFunc, targets ...string) error {
	if _, exists := b.nodes[from]; !exists {
		return fmt.Errorf("%w: %s", ErrUnknownNode, from)
	}
	if router == nil {
		return fmt.Errorf("%w: %s", ErrNilRouter, from)
	}
	if b.hasOutgoing(from) {
		return fmt.Errorf("%w: %s", ErrConflictingEdge, from)
	}
	b.conditionals[from] = &conditionalEdge{from: from, router: router, targets: targets}
	return nil
}

// SetEntry designates the entry node. Calling it more than once is an
// InvalidEntry error at Compile.
func (b *Builder) SetEntry(name string) error {
	b.entry = name
	b.entrySet++
	return nil
}

func (b *Builder) hasOutgoing(name string) bool {
	if _, ok := b.edges[name]; ok {
		return true
	}
	_, ok := b.conditionals[name]
	return ok
}

// Compile validates the accumulated definition and freezes it. Checks:
// every edge target resolves to a registered node or End, exactly one
// entry point is set and registered. Unreachable nodes are reported as
// non-fatal warnings on the compiled graph.
func (b *Builder) Compile() (*CompiledGraph, error) {
	switch {
	case b.entrySet == 0:
		return nil, fmt.Errorf("%w: no entry point set", ErrInvalidEntry)
	case b.entrySet > 1:
		return nil, fmt.Errorf("%w: entry point set %d times", ErrInvalidEntry, b.entrySet)
	}
	if _, ok := b.nodes[b.entry]; !ok {
		return nil, fmt.Errorf("%w: %q is not a registered node", ErrInvalidEntry, b.entry)
	}

	for from, to := range b.edges {
		if err := b.resolveTarget(from, to); err != nil {
			return nil, err
		}
	}
	for from, cond := range b.conditionals {
		for _, to := range cond.targets {
			if err := b.resolveTarget(from, to); err != nil {
				return nil, err
			}
		}
	}

	g := &CompiledGraph{
		name:         b.name,
		schema:       b.schema,
		entry:        b.entry,
		nodes:        make(map[string]*Node, len(b.nodes)),
		edges:        make(map[string]string, len(b.edges)),
		conditionals: make(map[string]*conditionalEdge, len(b.conditionals)),
	}
	for name, n := range b.nodes {
		g.nodes[name] = n
	}
	for from, to := range b.edges {
		g.edges[from] = to
	}
	for from, cond := range b.conditionals {
		g.conditionals[from] = &conditionalEdge{
			from:    cond.from,
			router:  cond.router,
			targets: append([]string(nil), cond.targets...),
		}
	}
	g.warnings = b.reachabilityWarnings()
	return g, nil
}

func (b *Builder) resolveTarget(from, to string) error {
	if to == End {
		return nil
	}
	if _, ok := b.nodes[to]; !ok {
		return fmt.Errorf("%w: %s -> %s", ErrDanglingEdge, from, to)
	}
	return nil
}

// reachabilityWarnings walks fixed edges and declared conditional targets
// from the entry node. Conditional edges without declared targets have an
// unknown codomain, so the analysis is skipped entirely rather than
// reporting false positives.
func (b *Builder) reachabilityWarnings() []string {
	for _, cond := range b.conditionals {
		if len(cond.targets) == 0 {
			return nil
		}
	}

	seen := map[string]bool{b.entry: true}
	queue := []string{b.entry}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		var outs []string
		if to, ok := b.edges[cur]; ok {
			outs = append(outs, to)
		}
		if cond, ok := b.conditionals[cur]; ok {
			outs = append(outs, cond.targets...)
		}
		for _, to := range outs {
			if to == End || seen[to] {
				continue
			}
			seen[to] = true
			queue = append(queue, to)
		}
	}

	var warnings []string
	unreachable := make([]string, 0)
	for name := range b.nodes {
		if !seen[name] {
			unreachable = append(unreachable, name)
		}
	}
	sort.Strings(unreachable)
	for _, name := range unreachable {
		warnings = append(warnings, fmt.Sprintf("node %q is unreachable from entry %q", name, b.entry))
	}
	return warnings
}
