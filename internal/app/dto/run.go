// Package dto carries the request and response shapes of the run API.
// These are wire types: validated with struct tags at the boundary and
// translated to and from engine types by the callers, never consumed by
// the engine directly.
package dto

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/stategraph/stategraph/internal/app/engine"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// RunRequest asks for a graph to be executed with an initial state.
type RunRequest struct {
	Graph      string         `json:"graph" validate:"required"`
	Input      map[string]any `json:"input"`
	StreamMode string         `json:"stream_mode,omitempty" validate:"omitempty,oneof=delta full"`
	StepLimit  int            `json:"step_limit,omitempty" validate:"gte=0"`
	RunID      string         `json:"run_id,omitempty"`
	Config     map[string]any `json:"config,omitempty"`
	ResumeFrom string         `json:"resume_from,omitempty"`
}

// Validate checks structural constraints. Graph existence is the
// server's job; the request only has to be well formed.
func (r *RunRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return nil
}

// Options translates the request into engine run options.
func (r *RunRequest) Options() []engine.RunOption {
	var opts []engine.RunOption
	if r.StreamMode != "" {
		opts = append(opts, engine.WithStreamMode(engine.StreamMode(r.StreamMode)))
	}
	if r.StepLimit > 0 {
		opts = append(opts, engine.WithStepLimit(r.StepLimit))
	}
	if r.RunID != "" {
		opts = append(opts, engine.WithRunID(r.RunID))
	}
	if r.Config != nil {
		opts = append(opts, engine.WithConfig(r.Config))
	}
	return opts
}

// StepSummary is the wire form of one completed step.
type StepSummary struct {
	Step     int            `json:"step"`
	Node     string         `json:"node"`
	Update   map[string]any `json:"update,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// RunResponse reports the outcome of a run.
type RunResponse struct {
	RunID     string         `json:"run_id"`
	Graph     string         `json:"graph"`
	Status    string         `json:"status"`
	State     map[string]any `json:"state"`
	Steps     []StepSummary  `json:"steps"`
	StartTime time.Time      `json:"start_time"`
	EndTime   time.Time      `json:"end_time"`
	Duration  time.Duration  `json:"duration"`
	Error     string         `json:"error,omitempty"`
}

// FromResult builds the wire response for a finished run. err is the
// run's terminal error, if any; the result itself is still reported.
func FromResult(res *engine.Result, err error) *RunResponse {
	resp := &RunResponse{
		RunID:     res.RunID,
		Graph:     res.GraphName,
		Status:    string(res.Status),
		State:     res.State,
		StartTime: res.StartTime,
		EndTime:   res.EndTime,
		Duration:  res.Duration,
	}
	for _, s := range res.Steps {
		resp.Steps = append(resp.Steps, StepSummary{
			Step:     s.Step,
			Node:     s.Node,
			Update:   s.Update,
			Duration: s.Duration,
		})
	}
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
