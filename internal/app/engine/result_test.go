package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stategraph/stategraph/internal/core/state"
)

func TestStatusTerminal(t *testing.T) {
	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusRunning.Terminal())
	assert.True(t, StatusDone.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.True(t, StatusCanceled.Terminal())
}

func TestResultPath(t *testing.T) {
	r := &Result{Steps: []StepRecord{
		{Step: 1, Node: "a", Update: state.Update{}},
		{Step: 2, Node: "b", Update: state.Update{}},
	}}
	assert.Equal(t, []string{"a", "b"}, r.Path())
	assert.Empty(t, (&Result{}).Path())
}
