package engine

import (
	"log/slog"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/infrastructure/logging"
)

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine's logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.log = logger
		}
	}
}

// RunOption configures a single run.
type RunOption func(*runConfig)

type runConfig struct {
	runID      string
	streamMode StreamMode
	stepLimit  int
	config     map[string]any

	saver           checkpoint.Saver
	checkpointEvery int

	startNode string
	startStep int
}

func newRunConfig(opts []RunOption) *runConfig {
	cfg := &runConfig{
		streamMode:      StreamModeFull,
		checkpointEvery: 1,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithStreamMode selects the observation mode for the run. The default
// is StreamModeFull.
func WithStreamMode(mode StreamMode) RunOption {
	return func(cfg *runConfig) {
		cfg.streamMode = mode
	}
}

// WithStepLimit bounds the number of steps. Zero (the default) means
// unbounded; exceeding the limit terminates the run with
// ErrStepLimitExceeded.
func WithStepLimit(n int) RunOption {
	return func(cfg *runConfig) {
		cfg.stepLimit = n
	}
}

// WithRunID fixes the run identifier instead of generating one.
func WithRunID(id string) RunOption {
	return func(cfg *runConfig) {
		cfg.runID = id
	}
}

// WithConfig attaches an opaque per-run configuration carrier. Nodes and
// routers read it back with ConfigFromContext; the engine itself never
// inspects it.
func WithConfig(config map[string]any) RunOption {
	return func(cfg *runConfig) {
		cfg.config = config
	}
}

// WithCheckpoints saves a checkpoint through saver after every n-th
// completed step. n below 1 is treated as 1. Checkpoint write failures
// are logged, not fatal.
func WithCheckpoints(saver checkpoint.Saver, every int) RunOption {
	return func(cfg *runConfig) {
		cfg.saver = saver
		if every < 1 {
			every = 1
		}
		cfg.checkpointEvery = every
	}
}

var nopLogger = logging.NewNop()
