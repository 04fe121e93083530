package barrier

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/stretchr/testify/require"
)

func TestAddRejectsBelowEarliestPending(t *testing.T) {
	s := New()
	require.False(t, s.Add(5, 10))
	require.Equal(t, 0, s.Len())
}

func TestBlocksOnlyAboveMin(t *testing.T) {
	s := New()
	require.True(t, s.Add(10, 1))
	require.True(t, s.Add(20, 1))

	min, ok := s.Min()
	require.True(t, ok)
	require.Equal(t, chains.BroadcastID(10), min)

	require.False(t, s.Blocks(10))
	require.False(t, s.Blocks(5))
	require.True(t, s.Blocks(11))
	require.True(t, s.Blocks(20))
}

func TestPruneDiscardsStaleBarriers(t *testing.T) {
	s := New()
	s.Add(10, 1)
	s.Add(20, 1)
	s.Add(30, 1)

	s.Prune(25)
	require.Equal(t, 1, s.Len())
	min, ok := s.Min()
	require.True(t, ok)
	require.Equal(t, chains.BroadcastID(30), min)
}

func TestAddIsIdempotent(t *testing.T) {
	s := New()
	s.Add(10, 1)
	s.Add(10, 1)
	require.Equal(t, 1, s.Len())
}

func TestNoBarriersNeverBlocks(t *testing.T) {
	s := New()
	require.False(t, s.Blocks(1))
	require.False(t, s.Blocks(1000000))
}
