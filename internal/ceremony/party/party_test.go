package party

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func acct(b byte) AccountId {
	var a AccountId
	a[0] = b
	return a
}

func TestMappingDeterministicAcrossInputOrder(t *testing.T) {
	accounts := []AccountId{acct(5), acct(1), acct(9), acct(3)}

	m1, err := NewMapping(accounts)
	require.NoError(t, err)

	shuffled := append([]AccountId(nil), accounts...)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	m2, err := NewMapping(shuffled)
	require.NoError(t, err)

	require.True(t, m1.Equal(m2))
	for _, a := range accounts {
		idx1, ok1 := m1.IdxOf(a)
		idx2, ok2 := m2.IdxOf(a)
		require.True(t, ok1)
		require.True(t, ok2)
		require.Equal(t, idx1, idx2)
	}
}

func TestMappingRejectsDuplicates(t *testing.T) {
	_, err := NewMapping([]AccountId{acct(1), acct(1)})
	require.Error(t, err)
}

func TestMappingRejectsEmpty(t *testing.T) {
	_, err := NewMapping(nil)
	require.Error(t, err)
}

func TestThreshold(t *testing.T) {
	cases := []struct {
		n int
		t int
	}{
		{n: 1, t: 0},
		{n: 3, t: 1},
		{n: 4, t: 1},
		{n: 5, t: 2},
		{n: 7, t: 3},
	}
	for _, c := range cases {
		accounts := make([]AccountId, c.n)
		for i := range accounts {
			accounts[i] = acct(byte(i + 1))
		}
		m, err := NewMapping(accounts)
		require.NoError(t, err)
		require.Equal(t, c.t, m.Threshold(), "n=%d", c.n)
	}
}

func TestAccountOfPanicsOutOfRange(t *testing.T) {
	m, err := NewMapping([]AccountId{acct(1)})
	require.NoError(t, err)
	require.Panics(t, func() { m.AccountOf(0) })
	require.Panics(t, func() { m.AccountOf(2) })
}

func TestOthersExcludesSelf(t *testing.T) {
	m, err := NewMapping([]AccountId{acct(1), acct(2), acct(3)})
	require.NoError(t, err)

	self, ok := m.IdxOf(acct(2))
	require.True(t, ok)

	others := m.Others(self)
	require.Len(t, others, 2)
	for _, idx := range others {
		require.NotEqual(t, self, idx)
	}
}
