// Package state provides the shared-state model for graph execution:
// a declared schema of named fields, each with a merge reducer, and
// immutable per-step snapshots produced by applying partial updates.
package state

// State is a snapshot of the shared state at a step boundary. Snapshots
// are never mutated after creation; the engine produces a fresh State
// from the previous one on every merge, so holders of an older snapshot
// can keep reading it without synchronization.
type State map[string]any

// Update is a partial state update returned by a node: a subset of the
// schema's fields mapped to incoming values. The values are raw, as the
// node produced them, before any reducer runs.
type Update map[string]any

// Clone returns a shallow copy of the snapshot. Field values are shared;
// reducers are expected to treat them as read-only.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Clone returns a shallow copy of the update.
func (u Update) Clone() Update {
	out := make(Update, len(u))
	for k, v := range u {
		out[k] = v
	}
	return out
}
