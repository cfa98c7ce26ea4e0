package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stategraph/stategraph/internal/core/state"
)

func noopNode(ctx context.Context, s state.State) (state.Update, error) {
	return state.Update{}, nil
}

func testSchema() *state.Schema {
	return state.NewSchema().AddField("status", nil)
}

func TestAddNodeGuards(t *testing.T) {
	b := NewBuilder("t", testSchema())

	require.NoError(t, b.AddNode("a", noopNode))

	t.Run("duplicate", func(t *testing.T) {
		err := b.AddNode("a", noopNode)
		assert.ErrorIs(t, err, ErrDuplicateNode)
	})
	t.Run("reserved names", func(t *testing.T) {
		assert.ErrorIs(t, b.AddNode(Start, noopNode), ErrReservedName)
		assert.ErrorIs(t, b.AddNode(End, noopNode), ErrReservedName)
	})
	t.Run("nil fn", func(t *testing.T) {
		assert.ErrorIs(t, b.AddNode("b", nil), ErrNilNodeFunc)
	})
}

func TestAddEdgeGuards(t *testing.T) {
	b := NewBuilder("t", testSchema())
	require.NoError(t, b.AddNode("a", noopNode))

	t.Run("unknown source", func(t *testing.T) {
		assert.ErrorIs(t, b.AddEdge("missing", "a"), ErrUnknownNode)
		assert.ErrorIs(t, b.AddConditionalEdge("missing", func(context.Context, state.State) string { return End }), ErrUnknownNode)
	})

	t.Run("forward reference to a later node is allowed", func(t *testing.T) {
		require.NoError(t, b.AddEdge("a", "b"))
		require.NoError(t, b.AddNode("b", noopNode))
	})

	t.Run("second outgoing edge conflicts", func(t *testing.T) {
		assert.ErrorIs(t, b.AddEdge("a", "b"), ErrConflictingEdge)
		assert.ErrorIs(t, b.AddConditionalEdge("a", func(context.Context, state.State) string { return End }), ErrConflictingEdge)
	})

	t.Run("nil router", func(t *testing.T) {
		assert.ErrorIs(t, b.AddConditionalEdge("b", nil), ErrNilRouter)
	})
}

func TestAddEdgeFromStartSetsEntry(t *testing.T) {
	b := NewBuilder("t", testSchema())
	require.NoError(t, b.AddNode("a", noopNode))
	require.NoError(t, b.AddEdge(Start, "a"))
	require.NoError(t, b.AddEdge("a", End))

	g, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, "a", g.Entry())
}

func TestCompileEntryValidation(t *testing.T) {
	t.Run("missing entry", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		_, err := b.Compile()
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("duplicate entry", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		require.NoError(t, b.SetEntry("a"))
		require.NoError(t, b.SetEntry("a"))
		_, err := b.Compile()
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})

	t.Run("unregistered entry", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		require.NoError(t, b.SetEntry("ghost"))
		_, err := b.Compile()
		assert.ErrorIs(t, err, ErrInvalidEntry)
	})
}

func TestCompileDanglingEdges(t *testing.T) {
	t.Run("fixed edge", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		require.NoError(t, b.SetEntry("a"))
		require.NoError(t, b.AddEdge("a", "ghost"))
		_, err := b.Compile()
		assert.ErrorIs(t, err, ErrDanglingEdge)
	})

	t.Run("declared conditional target", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		require.NoError(t, b.SetEntry("a"))
		require.NoError(t, b.AddConditionalEdge("a",
			func(context.Context, state.State) string { return End },
			"ghost", End))
		_, err := b.Compile()
		assert.ErrorIs(t, err, ErrDanglingEdge)
	})
}

func TestBuilderRecoversAfterFailedCompile(t *testing.T) {
	b := NewBuilder("t", testSchema())
	require.NoError(t, b.AddNode("a", noopNode))
	require.NoError(t, b.AddEdge("a", "ghost"))
	require.NoError(t, b.SetEntry("a"))

	_, err := b.Compile()
	require.ErrorIs(t, err, ErrDanglingEdge)

	// Register the missing node and compile again.
	require.NoError(t, b.AddNode("ghost", noopNode))
	g, err := b.Compile()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "ghost"}, g.Nodes())
}

func TestCompileDeterministic(t *testing.T) {
	build := func() (*CompiledGraph, error) {
		b := NewBuilder("t", testSchema())
		if err := b.AddNode("a", noopNode); err != nil {
			return nil, err
		}
		if err := b.AddNode("b", noopNode); err != nil {
			return nil, err
		}
		if err := b.AddEdge("a", "b"); err != nil {
			return nil, err
		}
		if err := b.SetEntry("a"); err != nil {
			return nil, err
		}
		return b.Compile()
	}

	g1, err1 := build()
	g2, err2 := build()
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Equal(t, g1.Nodes(), g2.Nodes())
	assert.Equal(t, g1.Entry(), g2.Entry())
	assert.Equal(t, g1.Warnings(), g2.Warnings())
}

func TestReachabilityWarnings(t *testing.T) {
	t.Run("unreachable node flagged", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		require.NoError(t, b.AddNode("island", noopNode))
		require.NoError(t, b.AddEdge("a", End))
		require.NoError(t, b.SetEntry("a"))

		g, err := b.Compile()
		require.NoError(t, err)
		require.Len(t, g.Warnings(), 1)
		assert.Contains(t, g.Warnings()[0], "island")
	})

	t.Run("declared conditional targets count as reachable", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("agent", noopNode))
		require.NoError(t, b.AddNode("tools", noopNode))
		require.NoError(t, b.AddConditionalEdge("agent",
			func(context.Context, state.State) string { return End },
			"tools", End))
		require.NoError(t, b.AddEdge("tools", "agent"))
		require.NoError(t, b.SetEntry("agent"))

		g, err := b.Compile()
		require.NoError(t, err)
		assert.Empty(t, g.Warnings())
	})

	t.Run("undeclared router codomain skips the analysis", func(t *testing.T) {
		b := NewBuilder("t", testSchema())
		require.NoError(t, b.AddNode("a", noopNode))
		require.NoError(t, b.AddNode("island", noopNode))
		require.NoError(t, b.AddConditionalEdge("a",
			func(context.Context, state.State) string { return End }))
		require.NoError(t, b.SetEntry("a"))

		g, err := b.Compile()
		require.NoError(t, err)
		assert.Empty(t, g.Warnings())
	})
}

func TestRouteAllowed(t *testing.T) {
	b := NewBuilder("t", testSchema())
	require.NoError(t, b.AddNode("a", noopNode))
	require.NoError(t, b.AddNode("b", noopNode))
	require.NoError(t, b.AddNode("c", noopNode))
	require.NoError(t, b.AddConditionalEdge("a",
		func(context.Context, state.State) string { return "b" },
		"b", End))
	require.NoError(t, b.AddEdge("b", "c"))
	require.NoError(t, b.SetEntry("a"))

	g, err := b.Compile()
	require.NoError(t, err)

	assert.True(t, g.RouteAllowed("a", "b"))
	assert.True(t, g.RouteAllowed("a", End))
	// Registered node outside the declared target set.
	assert.False(t, g.RouteAllowed("a", "c"))
	// Unregistered name.
	assert.False(t, g.RouteAllowed("a", "ghost"))
	// Node without a conditional edge.
	assert.False(t, g.RouteAllowed("b", "c"))
}
