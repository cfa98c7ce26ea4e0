package prebuilt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/pkg/stategraph"
)

func TestNewAgentLoop(t *testing.T) {
	turns := 0
	g, err := NewAgentLoop(AgentLoopConfig{
		Agent: func(ctx context.Context, s stategraph.State) (stategraph.Update, error) {
			turns++
			return stategraph.Update{
				"messages": []any{"thinking"},
				"done":     turns >= 2,
			}, nil
		},
		Tools: func(ctx context.Context, s stategraph.State) (stategraph.Update, error) {
			return stategraph.Update{"messages": []any{"tool result"}}, nil
		},
		Done: func(s stategraph.State) bool {
			done, _ := s["done"].(bool)
			return done
		},
	})
	require.NoError(t, err)

	res, err := stategraph.NewRuntime().Run(context.Background(), g, stategraph.State{})
	require.NoError(t, err)
	assert.Equal(t, []string{"agent", "tools", "agent"}, res.Path())
	assert.Len(t, res.State["messages"], 3)
}

func TestNewAgentLoopValidation(t *testing.T) {
	noop := func(ctx context.Context, s stategraph.State) (stategraph.Update, error) { return nil, nil }
	pred := func(s stategraph.State) bool { return true }

	_, err := NewAgentLoop(AgentLoopConfig{Tools: noop, Done: pred})
	require.ErrorIs(t, err, ErrMissingAgent)
	_, err = NewAgentLoop(AgentLoopConfig{Agent: noop, Done: pred})
	require.ErrorIs(t, err, ErrMissingTools)
	_, err = NewAgentLoop(AgentLoopConfig{Agent: noop, Tools: noop})
	require.ErrorIs(t, err, ErrMissingDone)
}

func TestNewPipeline(t *testing.T) {
	stage := func(tag string) stategraph.NodeFunc {
		return func(ctx context.Context, s stategraph.State) (stategraph.Update, error) {
			return stategraph.Update{"results": []any{tag}}, nil
		}
	}
	g, err := NewPipeline(PipelineConfig{
		Stages: []Stage{
			{Name: "extract", Fn: stage("extract")},
			{Name: "transform", Fn: stage("transform")},
			{Name: "load", Fn: stage("load")},
		},
	})
	require.NoError(t, err)

	res, err := stategraph.NewRuntime().Run(context.Background(), g, stategraph.State{})
	require.NoError(t, err)
	assert.Equal(t, []any{"extract", "transform", "load"}, res.State["results"])

	_, err = NewPipeline(PipelineConfig{})
	require.ErrorIs(t, err, ErrEmptyPipeline)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.MustRegister(AgentLoopBuilder())
	r.MustRegister(PipelineBuilder())

	assert.Equal(t, []string{"agent_loop", "pipeline"}, r.Names())

	b, ok := r.Get("pipeline")
	require.True(t, ok)
	_, err := b.Build("not a config")
	require.ErrorIs(t, err, ErrBadConfig)

	assert.Panics(t, func() { r.MustRegister(PipelineBuilder()) })
}
