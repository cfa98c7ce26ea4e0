package engine

import (
	"time"

	"github.com/stategraph/stategraph/internal/core/state"
)

// Status is the lifecycle state of a run.
type Status string

const (
	StatusPending  Status = "pending"
	StatusRunning  Status = "running"
	StatusDone     Status = "done"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
)

// Terminal reports whether the status is a final one.
func (s Status) Terminal() bool {
	return s == StatusDone || s == StatusFailed || s == StatusCanceled
}

// StepRecord describes one completed step.
type StepRecord struct {
	Step     int           `json:"step"`
	Node     string        `json:"node"`
	Update   state.Update  `json:"update"`
	Duration time.Duration `json:"duration"`
}

// Result is the outcome of a run. For failed or canceled runs, State
// holds the last durably merged snapshot; the in-flight step's update is
// never part of it.
type Result struct {
	RunID     string        `json:"run_id"`
	GraphName string        `json:"graph_name"`
	Status    Status        `json:"status"`
	State     state.State   `json:"state"`
	Steps     []StepRecord  `json:"steps"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Path returns the node names in execution order.
func (r *Result) Path() []string {
	path := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		path[i] = s.Node
	}
	return path
}
