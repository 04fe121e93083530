package nomination

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/stretchr/testify/require"
)

func accounts(n int) []chains.AccountID {
	out := make([]chains.AccountID, n)
	for i := range out {
		out[i][0] = byte(i + 1)
	}
	return out
}

func TestNominateIsDeterministic(t *testing.T) {
	set := accounts(5)
	seed := ForBroadcastAttempt(chains.BroadcastID(42), 100)

	a, ok := Nominate(seed, set, nil)
	require.True(t, ok)
	b, ok := Nominate(seed, set, nil)
	require.True(t, ok)
	require.Equal(t, a, b)
}

func TestNominateExcludesKnownFailed(t *testing.T) {
	set := accounts(3)
	seed := ForBroadcastAttempt(chains.BroadcastID(1), 1)

	nominee, ok := Nominate(seed, set, nil)
	require.True(t, ok)

	excluded := map[chains.AccountID]struct{}{nominee: {}}
	retry, ok := Nominate(seed, set, excluded)
	require.True(t, ok)
	require.NotEqual(t, nominee, retry)
}

func TestNominateReturnsFalseWhenAllExcluded(t *testing.T) {
	set := accounts(2)
	excluded := map[chains.AccountID]struct{}{set[0]: {}, set[1]: {}}
	_, ok := Nominate(ForBroadcastAttempt(1, 1), set, excluded)
	require.False(t, ok)
}

func TestNominateOrderIndependent(t *testing.T) {
	set := accounts(4)
	reversed := []chains.AccountID{set[3], set[2], set[1], set[0]}
	seed := ForBroadcastAttempt(chains.BroadcastID(9), 5)

	a, _ := Nominate(seed, set, nil)
	b, _ := Nominate(seed, reversed, nil)
	require.Equal(t, a, b)
}
