// Package metrics instruments the ceremony and broadcast subsystems with
// prometheus counters and histograms, the same way every lnd subsystem
// publishes its own operational metrics rather than leaving instrumentation
// to a caller. This is ambient observability of the engine's own
// operation (stage durations, termination counts, retry counts), distinct
// from simulating or benchmarking external callers.
package metrics

import (
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/runner"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Ceremony collects metrics for the keygen/handover state machine
// (internal/ceremony/runner).
type Ceremony struct {
	terminations *prometheus.CounterVec
	stageSeconds *prometheus.HistogramVec
	blames       prometheus.Counter
}

// NewCeremony registers the ceremony collectors against reg. Pass
// prometheus.DefaultRegisterer for process-wide metrics, or a fresh
// prometheus.NewRegistry() in tests to avoid collisions between parallel
// test binaries.
func NewCeremony(reg prometheus.Registerer) *Ceremony {
	factory := promauto.With(reg)
	return &Ceremony{
		terminations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "ceremony",
			Name:      "terminations_total",
			Help:      "Ceremony runs terminated, partitioned by outcome.",
		}, []string{"outcome"}),
		stageSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "validatorcore",
			Subsystem: "ceremony",
			Name:      "stage_duration_seconds",
			Help:      "Wall-clock time spent in each ceremony stage.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"stage"}),
		blames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "ceremony",
			Name:      "blame_accusations_total",
			Help:      "Blame-phase accusations raised across all ceremonies.",
		}),
	}
}

// ObserveOutcome records a completed ceremony's terminal Outcome. Labels
// mirror runner.ReasonKind's String() so the taxonomy never needs a second
// copy of the switch statement.
func (c *Ceremony) ObserveOutcome(o runner.Outcome) {
	if o.Success != nil {
		c.terminations.WithLabelValues("Success").Inc()
		return
	}
	if o.Failure != nil {
		c.terminations.WithLabelValues(o.Failure.Reason.Kind.String()).Inc()
	}
}

// ObserveStageDuration records how long a single stage took.
func (c *Ceremony) ObserveStageDuration(stage string, seconds float64) {
	c.stageSeconds.WithLabelValues(stage).Observe(seconds)
}

// ObserveBlame increments the blame-accusation counter.
func (c *Ceremony) ObserveBlame() {
	c.blames.Inc()
}

// Broadcast collects metrics for the per-chain broadcast pipeline
// (internal/broadcast/pipeline).
type Broadcast struct {
	attempts     *prometheus.CounterVec
	aborts       *prometheus.CounterVec
	successes    *prometheus.CounterVec
	feeDeficits  *prometheus.CounterVec
	feeRefusals  *prometheus.CounterVec
	retryQueued  *prometheus.CounterVec
	attemptsUsed *prometheus.HistogramVec
}

// NewBroadcast registers the broadcast collectors against reg.
func NewBroadcast(reg prometheus.Registerer) *Broadcast {
	factory := promauto.With(reg)
	return &Broadcast{
		attempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "attempts_total",
			Help:      "Broadcast dispatch attempts, partitioned by chain.",
		}, []string{"chain"}),
		aborts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "aborts_total",
			Help:      "Broadcasts abandoned after every authority reported failure.",
		}, []string{"chain"}),
		successes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "successes_total",
			Help:      "Broadcasts confirmed witnessed successful.",
		}, []string{"chain"}),
		feeDeficits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "fee_deficits_recorded_total",
			Help:      "Fee reimbursements credited to a signer.",
		}, []string{"chain"}),
		feeRefusals: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "fee_deficits_refused_total",
			Help:      "Fee reimbursements refused on witnessed-metadata mismatch.",
		}, []string{"chain"}),
		retryQueued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "retries_scheduled_total",
			Help:      "Broadcast attempts deferred into the retry queue.",
		}, []string{"chain"}),
		attemptsUsed: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "validatorcore",
			Subsystem: "broadcast",
			Name:      "attempts_to_resolution",
			Help:      "Number of dispatch attempts a broadcast took before success or abort.",
			Buckets:   []float64{1, 2, 3, 5, 8, 13},
		}, []string{"chain", "outcome"}),
	}
}

func (b *Broadcast) ObserveAttempt(chain string)    { b.attempts.WithLabelValues(chain).Inc() }
func (b *Broadcast) ObserveRetryQueued(chain string) { b.retryQueued.WithLabelValues(chain).Inc() }

func (b *Broadcast) ObserveAbort(chain string, attempts uint32) {
	b.aborts.WithLabelValues(chain).Inc()
	b.attemptsUsed.WithLabelValues(chain, "aborted").Observe(float64(attempts))
}

func (b *Broadcast) ObserveSuccess(chain string, attempts uint32) {
	b.successes.WithLabelValues(chain).Inc()
	b.attemptsUsed.WithLabelValues(chain, "success").Observe(float64(attempts))
}

func (b *Broadcast) ObserveFeeDeficitRecorded(chain string) {
	b.feeDeficits.WithLabelValues(chain).Inc()
}

func (b *Broadcast) ObserveFeeDeficitRefused(chain string) {
	b.feeRefusals.WithLabelValues(chain).Inc()
}
