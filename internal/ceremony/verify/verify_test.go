package verify

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/wire"
	"github.com/stretchr/testify/require"
)

func strEqual(a, b string) bool { return a == b }

func TestVerifyAcceptsUnanimousValues(t *testing.T) {
	claims := map[party.PartyIdx]map[party.PartyIdx]string{
		1: {2: "A", 3: "B"},
		2: {1: "X", 3: "B"},
		3: {1: "X", 2: "A"},
	}

	accepted, failures, err := Verify(wire.StageVerifyHashComm2, claims, strEqual)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, "X", accepted[1])
	require.Equal(t, "A", accepted[2])
	require.Equal(t, "B", accepted[3])
}

func TestVerifyRescuesMinorityOfflineSender(t *testing.T) {
	// Party 1 delivered its stage-1 value to 2 but not to 3; a
	// supermajority (2 out of 3 verifiers, which already IS the strict
	// majority threshold) still agrees on party 1's value.
	claims := map[party.PartyIdx]map[party.PartyIdx]string{
		1: {1: "X"},
		2: {1: "X"},
		3: {},
	}

	accepted, failures, err := Verify(wire.StageVerifyHashComm2, claims, strEqual)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, "X", accepted[1])
}

func TestVerifyReportsInconsistencyOnEquivocation(t *testing.T) {
	// Party A sent two different values to different halves of the set.
	claims := map[party.PartyIdx]map[party.PartyIdx]string{
		1: {1: "valueForHalf1"},
		2: {1: "valueForHalf1"},
		3: {1: "valueForHalf2"},
		4: {1: "valueForHalf2"},
	}

	accepted, failures, err := Verify(wire.StageVerifyCoeffComm4, claims, strEqual)
	require.NoError(t, err)
	require.NotContains(t, accepted, party.PartyIdx(1))
	require.Len(t, failures, 1)
	require.Equal(t, party.PartyIdx(1), failures[0].Sender)
	require.Equal(t, Inconsistency, failures[0].Kind)
}

func TestVerifyReportsInsufficientMessagesWhenSenderMostlySilent(t *testing.T) {
	// Sender 2 only reached 1 of 3 verifiers - below the strict
	// majority of 2, so it's reported InsufficientMessages rather than
	// Inconsistency (no disagreement, just too few claims).
	claims := map[party.PartyIdx]map[party.PartyIdx]string{
		1: {2: "a"},
		2: {1: "a"},
		3: {1: "a"},
	}

	accepted, failures, err := Verify(wire.StageVerifyComplaints7, claims, strEqual)
	require.NoError(t, err)
	require.Equal(t, "a", accepted[party.PartyIdx(1)])
	require.NotContains(t, accepted, party.PartyIdx(2))

	require.Len(t, failures, 1)
	require.Equal(t, party.PartyIdx(2), failures[0].Sender)
	require.Equal(t, InsufficientMessages, failures[0].Kind)
}

func TestVerifyDoesNotReportSilentVerifiers(t *testing.T) {
	// Party 4 times out during verification itself (contributes no
	// vector at all); the remaining 3 still agree unanimously, so no
	// one is reported - verifiers are never named, only senders.
	claims := map[party.PartyIdx]map[party.PartyIdx]string{
		1: {1: "X", 2: "Y"},
		2: {1: "X", 2: "Y"},
		3: {1: "X", 2: "Y"},
	}

	accepted, failures, err := Verify(wire.StageVerifyBlameResponses9, claims, strEqual)
	require.NoError(t, err)
	require.Empty(t, failures)
	require.Equal(t, "X", accepted[1])
	require.Equal(t, "Y", accepted[2])
}

func TestVerifyNoVerifiers(t *testing.T) {
	_, _, err := Verify[string](wire.StageVerifyHashComm2, nil, strEqual)
	require.ErrorIs(t, err, ErrNoVerifiers)
}

func TestFailureKindString(t *testing.T) {
	require.Equal(t, "Inconsistency", Inconsistency.String())
	require.Equal(t, "InsufficientMessages", InsufficientMessages.String())
}
