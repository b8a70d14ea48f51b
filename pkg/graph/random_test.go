package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomSizeErrors(t *testing.T) {
	_, err := Random("r", -1, 0, 1, false)
	require.ErrorIs(t, err, ErrSize)
	_, err = Random("r", 0, 3, 1, false)
	require.ErrorIs(t, err, ErrSize)
	_, err = Random("r", 4, 7, 1, true)
	require.ErrorIs(t, err, ErrSize)

	g, err := Random("r", 4, 6, 1, true)
	require.NoError(t, err)
	assert.Equal(t, 6, g.NumEdges())
}

func TestRandomIsDeterministic(t *testing.T) {
	a, err := Random("a", 40, 120, 99, false)
	require.NoError(t, err)
	b, err := Random("a", 40, 120, 99, false)
	require.NoError(t, err)
	requireSameGraph(t, a, b)

	c, err := Random("a", 40, 120, 100, false)
	require.NoError(t, err)
	assert.NotEqual(t, a.Edges(), c.Edges())
}

func TestRandomSimple(t *testing.T) {
	// 30 of 45 pairs takes the dense path; 10 takes rejection sampling.
	for _, e := range []int{10, 30, 45} {
		g, err := Random("s", 10, e, int64(e), true, WithDirect(true))
		require.NoError(t, err)
		require.NoError(t, g.Check())
		assert.True(t, g.Direct())
		assert.Equal(t, e, g.NumEdges())

		seen := make(map[[2]int]bool)
		for _, spec := range g.Edges() {
			require.NotEqual(t, spec.Node1, spec.Node2, "self-loop")
			key := [2]int{min(spec.Node1, spec.Node2), max(spec.Node1, spec.Node2)}
			require.False(t, seen[key], "parallel edge %v", key)
			seen[key] = true
		}
	}
}

func TestRandomLabels(t *testing.T) {
	g, err := Random("r", 12, 0, 5, false)
	require.NoError(t, err)
	assert.Equal(t, "0", g.NodeLabel(0))
	assert.Equal(t, "11", g.NodeLabel(11))
	assert.Equal(t, 0, g.NumEdges())
}
