// Package integration exercises full runs through the public façade,
// across stream modes and checkpoint backends.
package integration

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/adapters/repository/memory"
	"github.com/stategraph/stategraph/internal/adapters/repository/sqlite"
	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/pkg/stategraph"
)

// asInt absorbs the integer widths different checkpoint codecs decode
// into.
func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// reviewGraph cycles draft -> review until two revisions accumulate,
// then publishes.
func reviewGraph(t *testing.T) *stategraph.CompiledGraph {
	t.Helper()
	schema := stategraph.NewSchema().
		AddField("revisions", stategraph.Append()).
		AddField("round", stategraph.Replace()).
		AddField("status", stategraph.Replace())

	b := stategraph.NewBuilder("review_flow", schema)
	require.NoError(t, b.AddNode("draft", func(ctx context.Context, s stategraph.State) (stategraph.Update, error) {
		round := asInt(s["round"])
		return stategraph.Update{
			"revisions": []any{round + 1},
			"round":     round + 1,
			"status":    "drafting",
		}, nil
	}))
	require.NoError(t, b.AddNode("review", func(ctx context.Context, s stategraph.State) (stategraph.Update, error) {
		return stategraph.Update{"status": "reviewed"}, nil
	}))
	require.NoError(t, b.AddNode("publish", func(ctx context.Context, s stategraph.State) (stategraph.Update, error) {
		return stategraph.Update{"status": "published"}, nil
	}))
	require.NoError(t, b.AddEdge("draft", "review"))
	router := func(ctx context.Context, s stategraph.State) string {
		if asInt(s["round"]) >= 2 {
			return "publish"
		}
		return "draft"
	}
	require.NoError(t, b.AddConditionalEdge("review", router, "draft", "publish"))
	require.NoError(t, b.AddEdge("publish", stategraph.End))
	require.NoError(t, b.SetEntry("draft"))
	g, err := b.Compile()
	require.NoError(t, err)
	return g
}

func TestDeltaReplayEqualsFullRun(t *testing.T) {
	ctx := context.Background()
	rt := stategraph.NewRuntime()
	g := reviewGraph(t)

	full, err := rt.Run(ctx, g, stategraph.State{})
	require.NoError(t, err)
	assert.Equal(t, "published", full.State["status"])
	assert.Equal(t, []string{"draft", "review", "draft", "review", "publish"}, full.Path())

	stream := rt.StreamRun(ctx, g, stategraph.State{}, stategraph.WithStreamMode(stategraph.StreamModeDelta))
	replayed, err := g.Schema().Init(stategraph.State{})
	require.NoError(t, err)
	for ev := range stream.Events() {
		if ev.Update == nil {
			continue
		}
		replayed, err = g.Schema().Apply(replayed, ev.Update)
		require.NoError(t, err)
	}
	require.NoError(t, stream.Err())

	if diff := cmp.Diff(full.State, replayed); diff != "" {
		t.Fatalf("replayed state differs from full run (-full +replayed):\n%s", diff)
	}
}

func TestCheckpointRoundTripAcrossBackends(t *testing.T) {
	ctx := context.Background()
	g := reviewGraph(t)

	sqliteSaver, err := sqlite.Open(ctx, filepath.Join(t.TempDir(), "cp.db"))
	require.NoError(t, err)
	defer sqliteSaver.Close()

	backends := map[string]stategraph.Saver{
		"memory": memory.NewSaver(),
		"sqlite": sqliteSaver,
	}

	for name, saver := range backends {
		t.Run(name, func(t *testing.T) {
			rt := stategraph.NewRuntime(stategraph.WithSaver(saver))

			partial, err := rt.RunCheckpointed(ctx, g, stategraph.State{}, stategraph.WithStepLimit(3))
			require.Error(t, err)
			require.Len(t, partial.Steps, 3)

			cps, err := saver.List(ctx, checkpoint.Filter{RunID: partial.RunID, Limit: 1})
			require.NoError(t, err)
			require.Len(t, cps, 1)
			assert.Equal(t, 3, cps[0].Step)

			resumed, err := rt.Resume(ctx, g, cps[0].ID, stategraph.WithStepLimit(10))
			require.NoError(t, err)
			assert.Equal(t, "published", resumed.State["status"])
			assert.Equal(t, partial.RunID, resumed.RunID)
			assert.Len(t, resumed.State["revisions"], 2)
		})
	}
}

func TestConcurrentRunsShareOneGraph(t *testing.T) {
	ctx := context.Background()
	rt := stategraph.NewRuntime()
	g := reviewGraph(t)

	const runs = 16
	results := make(chan *stategraph.Result, runs)
	errs := make(chan error, runs)
	for i := 0; i < runs; i++ {
		go func() {
			res, err := rt.Run(ctx, g, stategraph.State{})
			results <- res
			errs <- err
		}()
	}
	for i := 0; i < runs; i++ {
		require.NoError(t, <-errs)
		res := <-results
		assert.Equal(t, "published", res.State["status"])
		assert.Len(t, res.Steps, 5)
	}
}
