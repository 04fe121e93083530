package safemode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultFlagsEnableRetryAndWitnessing(t *testing.T) {
	f := DefaultFlags()
	require.True(t, f.RetryEnabled)
	require.True(t, f.EgressWitnessingEnabled)
}

func TestSetFlagsOverridesDefaults(t *testing.T) {
	c := New(Margins{BlockMargin: 5, ChainBlockMargin: 10})
	c.SetFlags(Flags{RetryEnabled: false, EgressWitnessingEnabled: true})

	f := c.Flags()
	require.False(t, f.RetryEnabled)
	require.True(t, f.EgressWitnessingEnabled)
}

func TestRescheduleMargins(t *testing.T) {
	c := New(Margins{BlockMargin: 5, ChainBlockMargin: 10})

	require.Equal(t, uint64(110), c.RescheduleTimeout(100))
	require.Equal(t, uint64(105), c.RescheduleDelayedRetry(100))

	c.SetMargins(Margins{BlockMargin: 1, ChainBlockMargin: 2})
	require.Equal(t, uint64(102), c.RescheduleTimeout(100))
	require.Equal(t, uint64(101), c.RescheduleDelayedRetry(100))
}
