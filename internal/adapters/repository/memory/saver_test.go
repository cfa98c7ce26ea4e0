package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/checkpoint"
	"github.com/stategraph/stategraph/internal/core/state"
)

func newCheckpoint(id string, step int, at time.Time) *checkpoint.Checkpoint {
	return &checkpoint.Checkpoint{
		ID:        id,
		GraphName: "pipeline",
		RunID:     "run-1",
		Step:      step,
		NextNode:  "next",
		State:     state.State{"step": step},
		CreatedAt: at,
	}
}

func TestSaverRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSaver()

	in := newCheckpoint("cp-1", 1, time.Now())
	require.NoError(t, s.Save(ctx, in))

	out, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, in.Step, out.Step)
	assert.Equal(t, in.State, out.State)

	// The stored copy must be isolated from caller mutation.
	in.State["step"] = 99
	out2, err := s.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, 1, out2.State["step"])
}

func TestSaverLoadMissing(t *testing.T) {
	s := NewSaver()
	_, err := s.Load(context.Background(), "nope")
	require.ErrorIs(t, err, checkpoint.ErrCheckpointNotFound)

	_, err = s.Load(context.Background(), "")
	require.ErrorIs(t, err, checkpoint.ErrInvalidCheckpointID)
}

func TestSaverSaveRejectsInvalid(t *testing.T) {
	s := NewSaver()
	err := s.Save(context.Background(), &checkpoint.Checkpoint{ID: ""})
	require.Error(t, err)
	assert.Zero(t, s.Len())
}

func TestSaverListNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := NewSaver()
	base := time.Now()
	for i := 1; i <= 5; i++ {
		cp := newCheckpoint(fmt.Sprintf("cp-%d", i), i, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, s.Save(ctx, cp))
	}

	list, err := s.List(ctx, checkpoint.Filter{RunID: "run-1"})
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, "cp-5", list[0].ID)
	assert.Equal(t, "cp-1", list[4].ID)

	limited, err := s.List(ctx, checkpoint.Filter{RunID: "run-1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "cp-5", limited[0].ID)
}

func TestSaverListFilters(t *testing.T) {
	ctx := context.Background()
	s := NewSaver()
	base := time.Now()

	cp := newCheckpoint("cp-a", 1, base)
	require.NoError(t, s.Save(ctx, cp))

	other := newCheckpoint("cp-b", 1, base.Add(time.Minute))
	other.GraphName = "other_graph"
	other.RunID = "run-2"
	require.NoError(t, s.Save(ctx, other))

	byGraph, err := s.List(ctx, checkpoint.Filter{GraphName: "pipeline"})
	require.NoError(t, err)
	require.Len(t, byGraph, 1)
	assert.Equal(t, "cp-a", byGraph[0].ID)

	since := base.Add(30 * time.Second)
	recent, err := s.List(ctx, checkpoint.Filter{Since: &since})
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "cp-b", recent[0].ID)

	_, err = s.List(ctx, checkpoint.Filter{Limit: -1})
	require.Error(t, err)
}

func TestSaverDelete(t *testing.T) {
	ctx := context.Background()
	s := NewSaver()
	require.NoError(t, s.Save(ctx, newCheckpoint("cp-1", 1, time.Now())))

	require.NoError(t, s.Delete(ctx, "cp-1"))
	assert.Zero(t, s.Len())
	require.ErrorIs(t, s.Delete(ctx, "cp-1"), checkpoint.ErrCheckpointNotFound)
}
