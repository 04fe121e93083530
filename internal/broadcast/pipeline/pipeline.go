package pipeline

import (
	"sync"

	"github.com/btcsuite/btclog"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/barrier"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/fee"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/nomination"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/refresh"
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/safemode"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/events"
	"github.com/chainbridge-validators/threshold-core/internal/metrics"
	"github.com/chainbridge-validators/threshold-core/internal/store"
	"github.com/go-errors/errors"
	"github.com/lightningnetwork/lnd/clock"
)

// Error sentinels for the input-error taxonomy (spec.md §7 "Input
// errors"). Wrapped with go-errors/errors so the offence reporter and CLI
// diagnostics retain a stack trace, the same way discovery/validation.go
// and htlcswitch/switch.go construct their domain errors.
var (
	ErrInvalidBroadcastID            = errors.New("pipeline: invalid or unknown broadcast id")
	ErrBroadcastStillPending         = errors.New("pipeline: broadcast still pending")
	ErrInvalidPayload                = errors.New("pipeline: invalid witness payload")
	ErrThresholdSignatureUnavailable = errors.New("pipeline: threshold signature unavailable")
	ErrApiCallUnavailable            = errors.New("pipeline: api call unavailable")
	ErrUnknownValidator              = errors.New("pipeline: origin is not a registered validator")
)

// BroadcastTimeout default, expressed in target-chain blocks (spec.md
// §6.7).
const DefaultBroadcastTimeout uint64 = 100

// Persistence is the subset of internal/store.DB's broadcast-snapshot API
// the pipeline needs to survive a restart. Declared here as an interface,
// rather than requiring *store.DB directly, purely so tests can fake it
// cheaply; *store.DB satisfies it as-is. Nil is a valid Config.Store -
// persistence is then simply skipped.
type Persistence interface {
	SaveBroadcastSnapshot(snap store.BroadcastSnapshot) error
	DeleteBroadcastSnapshot(chain chains.ChainID, id chains.BroadcastID) error
}

// Config parameterizes one chain's Pipeline.
type Config struct {
	Chain   chains.ChainID
	Crypto  chains.ChainCrypto
	Builder chains.TransactionBuilder
	Signer  chains.ThresholdSigner

	Clock    clock.Clock
	Barriers *barrier.Set
	SafeMode *safemode.Controller
	Fees     *fee.Ledger
	Sink     events.Sink
	Logger   btclog.Logger
	Store    Persistence
	Metrics  *metrics.Broadcast

	// AuthoritySet and BroadcastTimeout parameterize nomination and
	// timeout scheduling; both are governance-mutable in the original
	// (spec.md §6.7).
	AuthoritySet     []chains.AccountID
	BroadcastTimeout uint64
}

// Pipeline is one chain's broadcast lifecycle state machine.
type Pipeline struct {
	mu sync.Mutex

	chain   chains.ChainID
	crypto  chains.ChainCrypto
	builder chains.TransactionBuilder
	signer  chains.ThresholdSigner

	clk      clock.Clock
	barriers *barrier.Set
	safeMode *safemode.Controller
	fees     *fee.Ledger
	sink     events.Sink
	log      btclog.Logger
	store    Persistence
	metrics  *metrics.Broadcast

	authoritySet  []chains.AccountID
	timeoutBlocks uint64

	nextID        chains.BroadcastID
	currentHeight uint64

	records map[chains.BroadcastID]*record

	txOutToBroadcast  map[string]chains.BroadcastID
	broadcastToTxOuts map[chains.BroadcastID][]chains.TransactionOutID

	timeouts          []timeoutEntry
	delayedRetryQueue map[uint64][]chains.BroadcastID

	rotation   *rotationWitness
	onChainKey chains.AggKey

	requestToBroadcast map[chains.RequestID]chains.BroadcastID
}

// New constructs an empty Pipeline for one chain.
func New(cfg Config) *Pipeline {
	timeout := cfg.BroadcastTimeout
	if timeout == 0 {
		timeout = DefaultBroadcastTimeout
	}
	return &Pipeline{
		chain:              cfg.Chain,
		crypto:             cfg.Crypto,
		builder:            cfg.Builder,
		signer:             cfg.Signer,
		clk:                cfg.Clock,
		barriers:           cfg.Barriers,
		safeMode:           cfg.SafeMode,
		fees:               cfg.Fees,
		sink:               cfg.Sink,
		log:                cfg.Logger,
		store:              cfg.Store,
		metrics:            cfg.Metrics,
		authoritySet:       cfg.AuthoritySet,
		timeoutBlocks:      timeout,
		records:            make(map[chains.BroadcastID]*record),
		txOutToBroadcast:   make(map[string]chains.BroadcastID),
		broadcastToTxOuts:  make(map[chains.BroadcastID][]chains.TransactionOutID),
		delayedRetryQueue:  make(map[uint64][]chains.BroadcastID),
		requestToBroadcast: make(map[chains.RequestID]chains.BroadcastID),
	}
}

// AttemptCount returns how many dispatch attempts (startBroadcastAttempt
// runs) id has gone through so far - a supplemented feature from the original pallet, not
// named directly in spec.md's distilled text.
func (p *Pipeline) AttemptCount(id chains.BroadcastID) uint32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	r, ok := p.records[id]
	if !ok {
		return 0
	}
	return r.attempts
}

// PendingBroadcastIDs returns every BroadcastId currently pending, for
// tests and diagnostics.
func (p *Pipeline) PendingBroadcastIDs() []chains.BroadcastID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []chains.BroadcastID
	for id, r := range p.records {
		if r.pending {
			out = append(out, id)
		}
	}
	return out
}

// AbortedBroadcastIDs returns every BroadcastId currently sitting in
// AbortedBroadcasts, for the operator re_sign_aborted_broadcasts call and
// diagnostics.
func (p *Pipeline) AbortedBroadcastIDs() []chains.BroadcastID {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []chains.BroadcastID
	for id, r := range p.records {
		if r.aborted {
			out = append(out, id)
		}
	}
	return out
}

// earliestPendingLocked returns the smallest pending BroadcastId, or
// (0, false) if none are pending. Callers must hold p.mu.
func (p *Pipeline) earliestPendingLocked() (chains.BroadcastID, bool) {
	var (
		min   chains.BroadcastID
		found bool
	)
	for id, r := range p.records {
		if !r.pending {
			continue
		}
		if !found || id < min {
			min = id
			found = true
		}
	}
	return min, found
}

// persistLocked checkpoints a record to the configured store, if any. A
// failure here is logged rather than propagated: a stale or missing
// snapshot only degrades restart recovery, it never affects the in-memory
// state machine a running process is actually driven by. Callers must hold
// p.mu.
func (p *Pipeline) persistLocked(r *record) {
	if p.store == nil {
		return
	}
	failed := make([]chains.AccountID, 0, len(r.failed))
	for a := range r.failed {
		failed = append(failed, a)
	}
	snap := store.BroadcastSnapshot{
		ID:        r.id,
		Chain:     r.chain,
		Pending:   r.pending,
		Aborted:   r.aborted,
		Attempts:  r.attempts,
		CreatedAt: r.createdAt,
		Failed:    failed,
		TxOutIDs:  r.txOutIDs,
	}
	if err := p.store.SaveBroadcastSnapshot(snap); err != nil {
		p.log.Errorf("pipeline: failed to persist snapshot for broadcast %d: %v", r.id, err)
	}
}

// forgetLocked removes a record's persisted snapshot, if a store is
// configured. Callers must hold p.mu.
func (p *Pipeline) forgetLocked(id chains.BroadcastID) {
	if p.store == nil {
		return
	}
	if err := p.store.DeleteBroadcastSnapshot(p.chain, id); err != nil {
		p.log.Errorf("pipeline: failed to delete snapshot for broadcast %d: %v", id, err)
	}
}

func (p *Pipeline) nominate(id chains.BroadcastID, blockNumber uint64, excluded map[chains.AccountID]struct{}) (chains.AccountID, bool) {
	seed := nomination.ForBroadcastAttempt(id, blockNumber)
	return nomination.Nominate(seed, p.authoritySet, excluded)
}
