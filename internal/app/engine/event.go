package engine

import "github.com/stategraph/stategraph/internal/core/state"

// StreamMode selects what a stream subscriber sees after each step.
type StreamMode string

const (
	// StreamModeDelta emits each step's raw partial update, keyed by the
	// node that produced it, before any reducer ran.
	StreamModeDelta StreamMode = "delta"

	// StreamModeFull emits the complete accumulated state snapshot after
	// each step's merge.
	StreamModeFull StreamMode = "full"
)

// EventKind discriminates stream events.
type EventKind string

const (
	// EventStep is emitted exactly once per completed step.
	EventStep EventKind = "step"
	// EventEnd marks the successful end of a run. Failed or canceled
	// runs surface their condition through Stream.Err instead.
	EventEnd EventKind = "end"
)

// Event is the unit delivered to a stream subscriber. Events arrive in
// strict execution order, one per completed step, then a single EventEnd
// on normal termination.
type Event struct {
	Kind EventKind
	// Step is the 1-based step number. Zero for EventEnd.
	Step int
	// Node names the node executed at this step.
	Node string
	// Update carries the node's raw partial update in delta mode.
	Update state.Update
	// State carries the post-merge snapshot in full mode.
	State state.State
}
