package prebuilt

import (
	"context"
	"errors"
	"fmt"

	"github.com/stategraph/stategraph/pkg/stategraph"
)

var (
	ErrMissingAgent = errors.New("agent loop requires an agent node")
	ErrMissingTools = errors.New("agent loop requires a tools node")
	ErrMissingDone  = errors.New("agent loop requires a done predicate")
	ErrBadConfig    = errors.New("unexpected config type")
)

// AgentLoopConfig describes the classic two-node loop: an agent node
// that reasons, a tools node that acts, and a predicate on the merged
// state that decides when the agent is finished.
type AgentLoopConfig struct {
	// GraphName names the compiled graph. Empty means "agent_loop".
	GraphName string
	// Schema declares the loop's state. Nil gets a schema with an
	// appending "messages" field and a replacing "done" field.
	Schema *stategraph.Schema
	// Agent produces the next thought or final answer.
	Agent stategraph.NodeFunc
	// Tools executes whatever the agent asked for.
	Tools stategraph.NodeFunc
	// Done inspects the state after each agent step; true ends the run.
	Done func(s stategraph.State) bool
}

// NewAgentLoop compiles the agent/tools cycle from the configuration.
func NewAgentLoop(cfg AgentLoopConfig) (*stategraph.CompiledGraph, error) {
	switch {
	case cfg.Agent == nil:
		return nil, ErrMissingAgent
	case cfg.Tools == nil:
		return nil, ErrMissingTools
	case cfg.Done == nil:
		return nil, ErrMissingDone
	}

	name := cfg.GraphName
	if name == "" {
		name = "agent_loop"
	}
	schema := cfg.Schema
	if schema == nil {
		schema = stategraph.NewSchema().
			AddField("messages", stategraph.Append()).
			AddField("done", stategraph.Replace())
	}

	b := stategraph.NewBuilder(name, schema)
	if err := b.AddNode("agent", cfg.Agent); err != nil {
		return nil, err
	}
	if err := b.AddNode("tools", cfg.Tools); err != nil {
		return nil, err
	}
	router := func(ctx context.Context, s stategraph.State) string {
		if cfg.Done(s) {
			return stategraph.End
		}
		return "tools"
	}
	if err := b.AddConditionalEdge("agent", router, "tools", stategraph.End); err != nil {
		return nil, err
	}
	if err := b.AddEdge("tools", "agent"); err != nil {
		return nil, err
	}
	if err := b.SetEntry("agent"); err != nil {
		return nil, err
	}
	return b.Compile()
}

// AgentLoopBuilder wraps NewAgentLoop for registry use.
func AgentLoopBuilder() Builder {
	return BuildFunc{
		BuilderName: "agent_loop",
		Fn: func(cfg any) (*stategraph.CompiledGraph, error) {
			typed, ok := cfg.(AgentLoopConfig)
			if !ok {
				return nil, fmt.Errorf("%w: want AgentLoopConfig, got %T", ErrBadConfig, cfg)
			}
			return NewAgentLoop(typed)
		},
	}
}
