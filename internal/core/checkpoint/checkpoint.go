// Package checkpoint defines the saved-run-position entity and the
// persistence contract its storage adapters implement. The engine itself
// never checkpoints implicitly; a saver is wired in per run.
package checkpoint

import (
	"time"

	"github.com/stategraph/stategraph/internal/core/state"
)

// Checkpoint captures a run between two steps: the merged state after
// step Step and the node the engine would execute next. NextNode may be
// the End sentinel when the checkpoint was taken at termination.
type Checkpoint struct {
	ID        string      `json:"id" msgpack:"id"`
	GraphName string      `json:"graph_name" msgpack:"graph_name"`
	RunID     string      `json:"run_id" msgpack:"run_id"`
	Step      int         `json:"step" msgpack:"step"`
	NextNode  string      `json:"next_node" msgpack:"next_node"`
	State     state.State `json:"state" msgpack:"state"`
	CreatedAt time.Time   `json:"created_at" msgpack:"created_at"`
}

// Validate checks the fields every saver relies on.
func (c *Checkpoint) Validate() error {
	if c.ID == "" {
		return ErrInvalidCheckpointID
	}
	if c.GraphName == "" {
		return ErrInvalidGraphName
	}
	if c.RunID == "" {
		return ErrInvalidRunID
	}
	if c.State == nil {
		return ErrNilState
	}
	return nil
}
