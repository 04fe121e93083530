package metrics

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestCeremonyObserveOutcomeLabelsSuccessAndFailure(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCeremony(reg)

	c.ObserveOutcome(runner.Outcome{Success: &runner.KeyShare{}})
	c.ObserveOutcome(runner.Outcome{Failure: &runner.FailureResult{
		Reason: runner.FailureReason{Kind: runner.ReasonInvalidCommitment},
	}})

	require.Equal(t, float64(1), testutil.ToFloat64(c.terminations.WithLabelValues("Success")))
	require.Equal(t, float64(1), testutil.ToFloat64(c.terminations.WithLabelValues("InvalidCommitment")))
}

func TestCeremonyObserveBlame(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCeremony(reg)

	c.ObserveBlame()
	c.ObserveBlame()

	require.Equal(t, float64(2), testutil.ToFloat64(c.blames))
}

func TestBroadcastObserveSuccessAndAbort(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBroadcast(reg)

	b.ObserveAttempt("ethereum")
	b.ObserveAttempt("ethereum")
	b.ObserveSuccess("ethereum", 2)

	require.Equal(t, float64(2), testutil.ToFloat64(b.attempts.WithLabelValues("ethereum")))
	require.Equal(t, float64(1), testutil.ToFloat64(b.successes.WithLabelValues("ethereum")))

	b.ObserveAbort("bitcoin", 5)
	require.Equal(t, float64(1), testutil.ToFloat64(b.aborts.WithLabelValues("bitcoin")))
}

func TestBroadcastObserveFeeDeficits(t *testing.T) {
	reg := prometheus.NewRegistry()
	b := NewBroadcast(reg)

	b.ObserveFeeDeficitRecorded("solana")
	b.ObserveFeeDeficitRefused("solana")
	b.ObserveRetryQueued("solana")

	require.Equal(t, float64(1), testutil.ToFloat64(b.feeDeficits.WithLabelValues("solana")))
	require.Equal(t, float64(1), testutil.ToFloat64(b.feeRefusals.WithLabelValues("solana")))
	require.Equal(t, float64(1), testutil.ToFloat64(b.retryQueued.WithLabelValues("solana")))
}
