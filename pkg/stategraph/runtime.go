package stategraph

import (
	"context"
	"log/slog"

	"github.com/stategraph/stategraph/internal/adapters/repository/memory"
	"github.com/stategraph/stategraph/internal/app/engine"
	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/state"
)

// Core type aliases so callers work with one import.
type (
	State         = state.State
	Update        = state.Update
	Schema        = state.Schema
	Reducer       = state.Reducer
	Builder       = graph.Builder
	CompiledGraph = graph.CompiledGraph
	NodeFunc      = graph.NodeFunc
	RouterFunc    = graph.RouterFunc
	Result        = engine.Result
	Event         = engine.Event
	Stream        = engine.Stream
	StreamMode    = engine.StreamMode
	RunOption     = engine.RunOption
	Checkpoint    = checkpoint.Checkpoint
	Saver         = checkpoint.Saver
)

// Graph sentinels and stream modes.
const (
	Start = graph.Start
	End   = graph.End

	StreamModeDelta = engine.StreamModeDelta
	StreamModeFull  = engine.StreamModeFull
)

// Schema constructors.
func NewSchema() *Schema { return state.NewSchema() }

// Built-in reducers.
func Replace() Reducer { return state.Replace() }
func Append() Reducer  { return state.Append() }
func Merge() Reducer   { return state.Merge() }
func Max() Reducer     { return state.Max() }
func Min() Reducer     { return state.Min() }

// NewBuilder starts a graph definition against the schema.
func NewBuilder(name string, schema *Schema) *Builder {
	return graph.NewBuilder(name, schema)
}

// Run options, re-exported.
var (
	WithStreamMode  = engine.WithStreamMode
	WithStepLimit   = engine.WithStepLimit
	WithRunID       = engine.WithRunID
	WithConfig      = engine.WithConfig
	WithCheckpoints = engine.WithCheckpoints
)

// Runtime bundles an engine with a default in-memory saver. The zero
// dependencies default suits local use and tests; production callers
// swap the saver for a durable adapter.
type Runtime struct {
	engine *engine.Engine
	saver  checkpoint.Saver
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger routes engine logs to the given logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.engine = engine.New(engine.WithLogger(logger))
	}
}

// WithSaver replaces the default in-memory checkpoint saver.
func WithSaver(saver checkpoint.Saver) RuntimeOption {
	return func(rt *Runtime) {
		rt.saver = saver
	}
}

// NewRuntime constructs a runtime with in-memory components.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		engine: engine.New(),
		saver:  memory.NewSaver(),
	}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

// Saver returns the runtime's checkpoint saver.
func (rt *Runtime) Saver() checkpoint.Saver { return rt.saver }

// Run executes the graph to completion.
func (rt *Runtime) Run(ctx context.Context, g *CompiledGraph, initial State, opts ...RunOption) (*Result, error) {
	return rt.engine.Run(ctx, g, initial, opts...)
}

// RunCheckpointed executes the graph, saving a checkpoint through the
// runtime's saver after every step.
func (rt *Runtime) RunCheckpointed(ctx context.Context, g *CompiledGraph, initial State, opts ...RunOption) (*Result, error) {
	opts = append(opts, engine.WithCheckpoints(rt.saver, 1))
	return rt.engine.Run(ctx, g, initial, opts...)
}

// Resume continues a run from one of the runtime saver's checkpoints.
func (rt *Runtime) Resume(ctx context.Context, g *CompiledGraph, checkpointID string, opts ...RunOption) (*Result, error) {
	return rt.engine.Resume(ctx, g, rt.saver, checkpointID, opts...)
}

// StreamRun executes the graph and streams its events.
func (rt *Runtime) StreamRun(ctx context.Context, g *CompiledGraph, initial State, opts ...RunOption) *Stream {
	return rt.engine.Stream(ctx, g, initial, opts...)
}
