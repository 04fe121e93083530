// Package pipeline implements the per-BroadcastId state machine spec.md
// §4.5 describes: sign -> build -> nominate -> dispatch ->
// (succeed|fail|timeout) -> (retry|abort), plus the per-block
// on_initialize drain, barrier deferral and safe-mode gating.
//
// Grounded on sweep/txgenerator.go's input/attempt batching (how a
// logical unit of work becomes one or more dispatch attempts over time)
// and htlcswitch/switch.go's central dispatch-loop-with-retry-bookkeeping
// shape, combined; contractcourt's resolved/incubating boolean pair is
// the model for PendingBroadcasts/AbortedBroadcasts set membership. Like
// ceremony/runner, the pipeline is externally driven (the current chain
// height arrives through OnInitialize, and every other method uses the
// height it last recorded, rather than reading a clock itself) per
// spec.md §5's single-threaded, deterministic, per-block model.
package pipeline

import (
	"github.com/chainbridge-validators/threshold-core/internal/broadcast/fee"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
)

// record is the per-BroadcastId state the pipeline tracks across its
// entire lifecycle. Most fields are retained even after abort_broadcast
// (spec.md §4.5 "governance can later re-sign"); expire_broadcast and
// transaction_succeeded are the only paths that delete a record outright.
type record struct {
	id    chains.BroadcastID
	chain chains.ChainID

	unsignedCall chains.ApiCall
	signedCall   chains.SignedApiCall // nil until the threshold signature is ready

	requestID  chains.RequestID
	hasRequest bool

	metadata    chains.TransactionMetadata
	txOutIDs    []chains.TransactionOutID
	createdAt   uint64
	attempts    uint32
	shouldBcast bool

	successCb func(chains.TransactionOutID)
	failureCb func()

	failed map[chains.AccountID]struct{}

	// pending is true from allocation until transaction_succeeded,
	// abort_broadcast, or expire_broadcast. aborted is true only after
	// abort_broadcast and before a governance re-sign or expiry.
	pending bool
	aborted bool
}

// timeoutEntry is one row of the Timeouts set (spec.md §4.5
// start_broadcast_attempt step 4).
type timeoutEntry struct {
	expiry  uint64
	id      chains.BroadcastID
	nominee chains.AccountID
}

// rotationWitness is the single-slot (new_key, BroadcastId) record a
// rotation transaction installs (spec.md §4.5
// threshold_sign_and_broadcast_rotation_tx, §4.5 transaction_succeeded
// step 4).
type rotationWitness struct {
	key chains.AggKey
	id  chains.BroadcastID
}

// FeeOutcome is the result type of TransactionSucceeded's fee step.
// TransactionSucceeded does not return it; the outcome is surfaced only
// through the fee events and metrics it emits.
type FeeOutcome = fee.Result
