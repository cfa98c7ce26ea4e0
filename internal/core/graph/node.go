// Package graph provides the graph domain model: named nodes, fixed and
// conditional edges, a mutable builder and the immutable compiled
// definition the execution engine runs against.
package graph

import (
	"context"

	"github.com/stategraph/stategraph/internal/core/state"
)

// Reserved node identifiers. They live in the same namespace as user
// node names and are rejected at AddNode time.
const (
	// Start is the reserved entry sentinel.
	Start = "__start__"
	// End is the reserved terminal sentinel: routing to End finishes the
	// run successfully.
	End = "__end__"
)

// NodeFunc is the work function of a node. It receives the current state
// snapshot (read-only) and returns a partial update, or an error that is
// fatal for the run. Per-run configuration travels on the context.
type NodeFunc func(ctx context.Context, s state.State) (state.Update, error)

// RouterFunc decides the next node from the post-merge state of a
// conditional edge's source. It returns a declared node name or End.
type RouterFunc func(ctx context.Context, s state.State) string

// Node is a named unit of work. Nodes are stateless templates created at
// build time and immutable thereafter.
type Node struct {
	Name string
	Fn   NodeFunc
}

// Reserved reports whether a name collides with a sentinel.
func Reserved(name string) bool {
	return name == Start || name == End
}
