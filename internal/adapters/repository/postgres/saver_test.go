package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/state"
)

// Full round-trip coverage needs a live server; set STATEGRAPH_POSTGRES_URL
// to run it.
func TestSaverIntegration(t *testing.T) {
	url := os.Getenv("STATEGRAPH_POSTGRES_URL")
	if url == "" {
		t.Skip("STATEGRAPH_POSTGRES_URL not set")
	}

	ctx := context.Background()
	s, err := Connect(ctx, url)
	require.NoError(t, err)
	defer s.Close()

	cp := &checkpoint.Checkpoint{
		ID:        "pgtest-cp-1",
		GraphName: "pgtest_pipeline",
		RunID:     "pgtest-run-1",
		Step:      1,
		NextNode:  "next",
		State:     state.State{"messages": []any{"a"}},
		CreatedAt: time.Now(),
	}
	defer s.Delete(ctx, cp.ID)

	require.NoError(t, s.Save(ctx, cp))

	out, err := s.Load(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, cp.Step, out.Step)
	assert.Len(t, out.State["messages"], 1)

	list, err := s.List(ctx, checkpoint.Filter{RunID: cp.RunID})
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, s.Delete(ctx, cp.ID))
	_, err = s.Load(ctx, cp.ID)
	require.ErrorIs(t, err, checkpoint.ErrCheckpointNotFound)
}

func TestSaverArgumentChecks(t *testing.T) {
	ctx := context.Background()
	s := NewSaver(nil)

	err := s.Save(ctx, &checkpoint.Checkpoint{})
	require.Error(t, err)

	_, err = s.Load(ctx, "")
	require.ErrorIs(t, err, checkpoint.ErrInvalidCheckpointID)

	require.ErrorIs(t, s.Delete(ctx, ""), checkpoint.ErrInvalidCheckpointID)

	_, err = s.List(ctx, checkpoint.Filter{Limit: -1})
	require.Error(t, err)
}
