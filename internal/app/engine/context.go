package engine

import "context"

// contextKey is a private type for context values injected by the engine,
// so keys cannot collide with other packages.
type contextKey string

const (
	runIDKey  contextKey = "stategraph.run_id"
	stepKey   contextKey = "stategraph.step"
	nodeKey   contextKey = "stategraph.node"
	configKey contextKey = "stategraph.config"
)

// RunIDFromContext returns the identifier of the run executing the
// calling node.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey).(string)
	return id, ok
}

// StepFromContext returns the 1-based step number of the calling node's
// invocation.
func StepFromContext(ctx context.Context) (int, bool) {
	step, ok := ctx.Value(stepKey).(int)
	return step, ok
}

// NodeFromContext returns the name of the node being executed.
func NodeFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(nodeKey).(string)
	return name, ok
}

// ConfigFromContext returns the per-run configuration carrier passed via
// WithConfig. The engine treats it as opaque.
func ConfigFromContext(ctx context.Context) (map[string]any, bool) {
	cfg, ok := ctx.Value(configKey).(map[string]any)
	return cfg, ok
}

func (e *Engine) stepContext(ctx context.Context, cfg *runConfig, node string, step int) context.Context {
	ctx = context.WithValue(ctx, runIDKey, cfg.runID)
	ctx = context.WithValue(ctx, stepKey, step)
	ctx = context.WithValue(ctx, nodeKey, node)
	if cfg.config != nil {
		ctx = context.WithValue(ctx, configKey, cfg.config)
	}
	return ctx
}
