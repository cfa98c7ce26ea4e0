// Package engine drives compiled graphs: a strictly sequential step loop
// that invokes one node at a time, merges its partial update through the
// state schema, emits one observable event per completed step and follows
// fixed or conditional edges until the End sentinel is reached.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/state"
	"github.com/stategraph/stategraph/internal/infrastructure/metrics"
)

// ErrGraphMismatch is returned by Resume when a checkpoint names a
// different graph than the one supplied.
var ErrGraphMismatch = errors.New("checkpoint belongs to a different graph")

// Engine executes runs. It holds no per-run data; one Engine may drive
// any number of concurrent runs over shared compiled graphs. Each run's
// mutable data (current snapshot, current node, status) lives on the
// loop's stack and is never shared.
type Engine struct {
	log *slog.Logger
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{log: nopLogger}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the graph from its entry node until End, a failure, or a
// control condition. The returned Result carries the final snapshot and
// one record per completed step.
func (e *Engine) Run(ctx context.Context, g *graph.CompiledGraph, initial state.State, opts ...RunOption) (*Result, error) {
	cfg := newRunConfig(opts)
	return e.execute(ctx, g, initial, cfg, nil)
}

// Resume loads a checkpoint and continues the run from the node the
// checkpoint recorded as next. The resumed run keeps the original run ID.
func (e *Engine) Resume(ctx context.Context, g *graph.CompiledGraph, saver checkpoint.Saver, checkpointID string, opts ...RunOption) (*Result, error) {
	cp, err := saver.Load(ctx, checkpointID)
	if err != nil {
		return nil, fmt.Errorf("load checkpoint %s: %w", checkpointID, err)
	}
	if cp.GraphName != g.Name() {
		return nil, fmt.Errorf("%w: checkpoint %s is for %q, got %q", ErrGraphMismatch, checkpointID, cp.GraphName, g.Name())
	}

	cfg := newRunConfig(opts)
	cfg.runID = cp.RunID
	cfg.startNode = cp.NextNode
	cfg.startStep = cp.Step
	return e.execute(ctx, g, cp.State, cfg, nil)
}

type nodeOutcome struct {
	update state.Update
	err    error
}

// invoke runs the work function and suspends until it settles or the
// run's context is canceled. The result channel is buffered so an
// abandoned invocation does not leak its goroutine.
func invoke(ctx context.Context, fn graph.NodeFunc, snap state.State) (state.Update, error) {
	out := make(chan nodeOutcome, 1)
	go func() {
		update, err := fn(ctx, snap)
		out <- nodeOutcome{update: update, err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case o := <-out:
		return o.update, o.err
	}
}

func (e *Engine) execute(ctx context.Context, g *graph.CompiledGraph, initial state.State, cfg *runConfig, sink func(Event)) (*Result, error) {
	if cfg.runID == "" {
		cfg.runID = uuid.NewString()
	}
	log := e.log.With("graph", g.Name(), "run_id", cfg.runID)

	result := &Result{
		RunID:     cfg.runID,
		GraphName: g.Name(),
		Status:    StatusPending,
		StartTime: time.Now(),
	}

	var snap state.State
	if cfg.startNode != "" {
		// Resumed state was validated when it was first merged.
		snap = initial.Clone()
	} else {
		var err error
		if snap, err = g.Schema().Init(initial); err != nil {
			return nil, err
		}
	}

	result.Status = StatusRunning
	metrics.RunStarted()

	finish := func(status Status, err error) (*Result, error) {
		result.Status = status
		result.State = snap
		result.EndTime = time.Now()
		result.Duration = result.EndTime.Sub(result.StartTime)
		metrics.RunFinished(string(status), result.Duration)
		if err != nil {
			log.Warn("run finished", "status", status, "steps", len(result.Steps), "error", err)
		} else {
			log.Info("run finished", "status", status, "steps", len(result.Steps))
		}
		return result, err
	}

	current := g.Entry()
	if cfg.startNode != "" {
		current = cfg.startNode
	}
	step := cfg.startStep

	for current != graph.End {
		if cerr := ctx.Err(); cerr != nil {
			return finish(StatusCanceled, fmt.Errorf("%w: %w", ErrCanceled, cerr))
		}
		if cfg.stepLimit > 0 && step >= cfg.stepLimit {
			return finish(StatusCanceled, fmt.Errorf("%w: limit %d", ErrStepLimitExceeded, cfg.stepLimit))
		}

		node, ok := g.Node(current)
		if !ok {
			// Only reachable through a checkpoint naming a node the graph
			// no longer has; compile rules out everything else.
			return finish(StatusFailed, fmt.Errorf("%w: %s", graph.ErrUnknownNode, current))
		}

		step++
		stepCtx := e.stepContext(ctx, cfg, current, step)
		stepStart := time.Now()

		update, nerr := invoke(stepCtx, node.Fn, snap)
		if nerr != nil {
			if errors.Is(nerr, context.Canceled) || errors.Is(nerr, context.DeadlineExceeded) {
				return finish(StatusCanceled, fmt.Errorf("%w: %w", ErrCanceled, nerr))
			}
			return finish(StatusFailed, &NodeError{Node: current, Step: step, Err: nerr})
		}

		merged, aerr := g.Schema().Apply(snap, update)
		if aerr != nil {
			return finish(StatusFailed, aerr)
		}
		snap = merged

		result.Steps = append(result.Steps, StepRecord{
			Step:     step,
			Node:     current,
			Update:   update.Clone(),
			Duration: time.Since(stepStart),
		})
		metrics.StepExecuted(g.Name())
		log.Debug("step completed", "step", step, "node", current)

		// The event goes out only after the update is durably merged.
		if sink != nil {
			sink(e.stepEvent(cfg.streamMode, step, current, update, snap))
		}

		next, rerr := e.route(stepCtx, g, current, snap)
		if rerr != nil {
			return finish(StatusFailed, rerr)
		}

		if cfg.saver != nil && step%cfg.checkpointEvery == 0 {
			e.saveCheckpoint(ctx, log, g, cfg, step, next, snap)
		}

		current = next
	}

	if sink != nil {
		sink(Event{Kind: EventEnd})
	}
	return finish(StatusDone, nil)
}

// route picks the node after current: a fixed edge is followed as-is, a
// conditional edge consults its router with the post-merge snapshot, and
// a node with no outgoing edge terminates the run.
func (e *Engine) route(ctx context.Context, g *graph.CompiledGraph, current string, snap state.State) (string, error) {
	if to, ok := g.FixedTarget(current); ok {
		return to, nil
	}
	router, ok := g.Router(current)
	if !ok {
		return graph.End, nil
	}
	target := router(ctx, snap)
	if !g.RouteAllowed(current, target) {
		return "", &RouteError{Node: current, Target: target}
	}
	return target, nil
}

func (e *Engine) stepEvent(mode StreamMode, step int, node string, update state.Update, snap state.State) Event {
	ev := Event{Kind: EventStep, Step: step, Node: node}
	switch mode {
	case StreamModeDelta:
		ev.Update = update.Clone()
	default:
		ev.State = snap
	}
	return ev
}

func (e *Engine) saveCheckpoint(ctx context.Context, log *slog.Logger, g *graph.CompiledGraph, cfg *runConfig, step int, next string, snap state.State) {
	cp := &checkpoint.Checkpoint{
		ID:        uuid.NewString(),
		GraphName: g.Name(),
		RunID:     cfg.runID,
		Step:      step,
		NextNode:  next,
		State:     snap,
		CreatedAt: time.Now(),
	}
	if err := cfg.saver.Save(ctx, cp); err != nil {
		log.Warn("checkpoint save failed", "step", step, "error", err)
		return
	}
	metrics.CheckpointSaved()
}
