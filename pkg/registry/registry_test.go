package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/state"
)

func TestRegistryNodes(t *testing.T) {
	r := New()
	fn := func(ctx context.Context, s state.State) (state.Update, error) { return nil, nil }

	require.NoError(t, r.RegisterNode("greet", fn))
	require.ErrorIs(t, r.RegisterNode("greet", fn), ErrDuplicateRegistration)
	require.ErrorIs(t, r.RegisterNode("nil", nil), graph.ErrNilNodeFunc)

	got, err := r.Node("greet")
	require.NoError(t, err)
	assert.NotNil(t, got)

	_, err = r.Node("missing")
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegistryRouters(t *testing.T) {
	r := New()
	fn := func(ctx context.Context, s state.State) string { return graph.End }

	require.NoError(t, r.RegisterRouter("decide", fn))
	require.ErrorIs(t, r.RegisterRouter("decide", fn), ErrDuplicateRegistration)
	require.ErrorIs(t, r.RegisterRouter("nil", nil), graph.ErrNilRouter)

	_, err := r.Router("missing")
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestRegistryListing(t *testing.T) {
	r := New()
	fn := func(ctx context.Context, s state.State) (state.Update, error) { return nil, nil }
	require.NoError(t, r.RegisterNode("b", fn))
	require.NoError(t, r.RegisterNode("a", fn))

	assert.Equal(t, []string{"a", "b"}, r.Nodes())
	assert.Empty(t, r.Routers())
}
