package graph

import (
	"sort"

	"github.com/stategraph/stategraph/internal/core/state"
)

// CompiledGraph is the validated, immutable graph definition. It holds no
// per-run data, so one compiled graph can back any number of concurrent
// runs.
type CompiledGraph struct {
	name   string
	schema *state.Schema
	entry  string

	nodes        map[string]*Node
	edges        map[string]string
	conditionals map[string]*conditionalEdge

	warnings []string
}

// Name returns the graph's name.
func (g *CompiledGraph) Name() string { return g.name }

// Entry returns the entry node name.
func (g *CompiledGraph) Entry() string { return g.entry }

// Schema returns the state schema the graph was declared over.
func (g *CompiledGraph) Schema() *state.Schema { return g.schema }

// Node looks up a registered node by name.
func (g *CompiledGraph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Nodes returns all registered node names in sorted order.
func (g *CompiledGraph) Nodes() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FixedTarget returns the fixed-edge target of from, if one is declared.
func (g *CompiledGraph) FixedTarget(from string) (string, bool) {
	to, ok := g.edges[from]
	return to, ok
}

// Router returns the conditional router of from, if one is declared.
func (g *CompiledGraph) Router(from string) (RouterFunc, bool) {
	cond, ok := g.conditionals[from]
	if !ok {
		return nil, false
	}
	return cond.router, true
}

// RouteAllowed reports whether a routed target is acceptable for from: it
// must be End or a registered node, and fall inside the declared target
// set when one was given.
func (g *CompiledGraph) RouteAllowed(from, target string) bool {
	cond, ok := g.conditionals[from]
	if !ok {
		return false
	}
	if !cond.allows(target) {
		return false
	}
	if target == End {
		return true
	}
	_, registered := g.nodes[target]
	return registered
}

// Warnings returns non-fatal findings from Compile, currently nodes
// unreachable from the entry point.
func (g *CompiledGraph) Warnings() []string {
	return append([]string(nil), g.warnings...)
}
