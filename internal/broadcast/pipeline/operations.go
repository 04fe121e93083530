package pipeline

import (
	"math/big"

	"github.com/chainbridge-validators/threshold-core/internal/broadcast/refresh"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/events"
)

// ThresholdSignAndBroadcast allocates a BroadcastId, registers it in
// PendingBroadcasts, and requests a threshold signature (spec.md §4.5).
func (p *Pipeline) ThresholdSignAndBroadcast(call chains.ApiCall) chains.BroadcastID {
	return p.thresholdSignAndBroadcast(call, true, nil, nil)
}

// ThresholdSignAndBroadcastWithCallback is ThresholdSignAndBroadcast with
// caller-supplied success/failure callbacks (spec.md §4.5).
func (p *Pipeline) ThresholdSignAndBroadcastWithCallback(call chains.ApiCall, onSuccess func(chains.TransactionOutID), onFailure func()) chains.BroadcastID {
	return p.thresholdSignAndBroadcast(call, true, onSuccess, onFailure)
}

// ThresholdSign requests a signature with no dispatch (spec.md §4.5
// "signature only, no dispatch").
func (p *Pipeline) ThresholdSign(call chains.ApiCall) chains.BroadcastID {
	return p.thresholdSignAndBroadcast(call, false, nil, nil)
}

func (p *Pipeline) thresholdSignAndBroadcast(call chains.ApiCall, shouldBroadcast bool, onSuccess func(chains.TransactionOutID), onFailure func()) chains.BroadcastID {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextID++
	id := p.nextID

	r := &record{
		id:           id,
		chain:        p.chain,
		unsignedCall: call,
		createdAt:    p.currentHeight,
		shouldBcast:  shouldBroadcast,
		successCb:    onSuccess,
		failureCb:    onFailure,
		pending:      true,
		failed:       make(map[chains.AccountID]struct{}),
	}
	p.records[id] = r

	reqID := p.signer.RequestSignature(call.ThresholdSignaturePayload())
	r.requestID = reqID
	r.hasRequest = true
	p.requestToBroadcast[reqID] = id

	p.persistLocked(r)

	return id
}

// ThresholdSignAndBroadcastRotationTx is ThresholdSignAndBroadcast plus
// barrier installation and the single-slot rotation witness (spec.md §4.5,
// §4.6).
func (p *Pipeline) ThresholdSignAndBroadcastRotationTx(call chains.ApiCall, newKey chains.AggKey) chains.BroadcastID {
	id := p.thresholdSignAndBroadcast(call, true, nil, nil)

	p.mu.Lock()
	defer p.mu.Unlock()

	earliest, ok := p.earliestPendingLocked()
	if !ok {
		earliest = id
	}
	for _, barrierID := range p.crypto.MaybeBroadcastBarriersOnRotation(id) {
		p.barriers.Add(barrierID, earliest)
	}
	p.rotation = &rotationWitness{key: newKey, id: id}

	return id
}

// OnSignatureReady is the ceremony's callback once the requested signature
// for id completes successfully (spec.md §4.5 "Signature-ready callback").
func (p *Pipeline) OnSignatureReady(reqID chains.RequestID, sig chains.ThresholdSignature, signerKey chains.AggKey) error {
	p.mu.Lock()
	id, ok := p.requestToBroadcast[reqID]
	if !ok {
		p.mu.Unlock()
		return ErrThresholdSignatureUnavailable
	}
	r, ok := p.records[id]
	if !ok {
		p.mu.Unlock()
		return ErrInvalidBroadcastID
	}

	signed := r.unsignedCall.Signed(sig, signerKey)
	r.signedCall = signed
	txOutID := signed.TransactionOutID()
	r.txOutIDs = append(r.txOutIDs, txOutID)

	p.txOutToBroadcast[string(txOutID)] = id
	p.broadcastToTxOuts[id] = append(p.broadcastToTxOuts[id], txOutID)

	shouldDispatchNow := r.shouldBcast && !p.barriers.Blocks(id)
	p.mu.Unlock()

	if !shouldDispatchNow {
		if r.shouldBcast {
			p.scheduleRetry(id, p.currentHeight+1)
		}
		return nil
	}
	return p.startBroadcastAttempt(id)
}

// startBroadcastAttempt implements spec.md §4.5's procedure of the same
// name.
func (p *Pipeline) startBroadcastAttempt(id chains.BroadcastID) error {
	p.mu.Lock()
	r, ok := p.records[id]
	if !ok || r.signedCall == nil {
		p.mu.Unlock()
		return ErrApiCallUnavailable
	}

	tx, err := p.builder.BuildTransaction(r.signedCall)
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.builder.RefreshUnsignedData(&tx)
	r.metadata = p.builder.ExtractMetadata(tx)
	r.attempts++

	nominee, ok := p.nominate(id, p.currentHeight, r.failed)
	if !ok {
		height := p.currentHeight
		p.mu.Unlock()
		p.scheduleRetry(id, height+1)
		return nil
	}

	expiry := p.currentHeight + p.timeoutBlocks
	p.timeouts = append(p.timeouts, timeoutEntry{expiry: expiry, id: id, nominee: nominee})

	txOutID := r.signedCall.TransactionOutID()
	payload := r.signedCall.ThresholdSignaturePayload()
	p.persistLocked(r)
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.ObserveAttempt(p.chain.String())
	}

	p.sink.Emit(events.TransactionBroadcastRequest{
		BroadcastID: id,
		Nominee:     nominee,
		Payload:     payload,
		TxOutID:     txOutID,
	})
	return nil
}

// scheduleRetry defers a broadcast attempt to the DelayedBroadcastRetryQueue
// for the given block.
func (p *Pipeline) scheduleRetry(id chains.BroadcastID, block uint64) {
	p.mu.Lock()
	p.delayedRetryQueue[block] = append(p.delayedRetryQueue[block], id)
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.ObserveRetryQueued(p.chain.String())
	}

	p.sink.Emit(events.BroadcastRetryScheduled{BroadcastID: id, RetryBlock: block})
}

// TransactionFailed implements spec.md §4.5's transaction_failed.
func (p *Pipeline) TransactionFailed(origin chains.AccountID, id chains.BroadcastID) error {
	if !p.isRegisteredValidator(origin) {
		return ErrUnknownValidator
	}

	p.mu.Lock()
	r, ok := p.records[id]
	if !ok || !r.pending {
		p.mu.Unlock()
		return ErrInvalidBroadcastID
	}
	if _, dup := r.failed[origin]; dup {
		p.mu.Unlock()
		p.log.Debugf("pipeline: duplicate transaction_failed from %x for broadcast %d", origin, id)
		return nil
	}
	r.failed[origin] = struct{}{}
	allFailed := len(r.failed) == len(p.authoritySet)
	p.persistLocked(r)
	p.mu.Unlock()

	if allFailed {
		return p.abortBroadcast(id)
	}
	return p.startNextBroadcastAttempt(id)
}

func (p *Pipeline) isRegisteredValidator(a chains.AccountID) bool {
	for _, v := range p.authoritySet {
		if v == a {
			return true
		}
	}
	return false
}

// abortBroadcast implements spec.md §4.5's abort_broadcast. Everything but
// FailedBroadcasters, PendingBroadcasts membership, and the aborted flag
// itself is retained, per spec.md's explicit retention list.
func (p *Pipeline) abortBroadcast(id chains.BroadcastID) error {
	p.mu.Lock()
	r, ok := p.records[id]
	if !ok {
		p.mu.Unlock()
		return ErrInvalidBroadcastID
	}
	r.failed = make(map[chains.AccountID]struct{})
	r.pending = false
	r.aborted = true
	cb := r.failureCb
	attempts := r.attempts
	p.persistLocked(r)
	p.mu.Unlock()

	if p.metrics != nil {
		p.metrics.ObserveAbort(p.chain.String(), attempts)
	}

	if cb != nil {
		cb()
		p.sink.Emit(events.BroadcastCallbackExecuted{BroadcastID: id, Succeeded: false})
	}
	p.sink.Emit(events.BroadcastAborted{BroadcastID: id})
	return nil
}

// ExpireBroadcast purges every record for id outright (spec.md §4.5
// "purge all records").
func (p *Pipeline) ExpireBroadcast(id chains.BroadcastID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.deleteRecordLocked(id)
}

func (p *Pipeline) deleteRecordLocked(id chains.BroadcastID) {
	r, ok := p.records[id]
	if !ok {
		return
	}
	for _, txOut := range r.txOutIDs {
		delete(p.txOutToBroadcast, string(txOut))
	}
	delete(p.broadcastToTxOuts, id)
	delete(p.records, id)
	if p.rotation != nil && p.rotation.id == id {
		p.rotation = nil
	}
	p.forgetLocked(id)
}

// ReSignBroadcast implements spec.md §4.5's re_sign_broadcast. Per the
// resolved Open Question (see DESIGN.md), FailedBroadcasters is preserved
// across a resign - only abort_broadcast clears it.
func (p *Pipeline) ReSignBroadcast(id chains.BroadcastID, requestBroadcast bool, refreshReplayProtection bool) error {
	p.mu.Lock()
	r, ok := p.records[id]
	if !ok {
		p.mu.Unlock()
		return ErrInvalidBroadcastID
	}
	if r.pending {
		p.mu.Unlock()
		return ErrBroadcastStillPending
	}

	if refreshReplayProtection {
		r.unsignedCall.RefreshReplayProtection()
	}
	r.signedCall = nil
	r.pending = true
	r.aborted = false
	r.shouldBcast = requestBroadcast
	call := r.unsignedCall
	p.mu.Unlock()

	reqID := p.signer.RequestSignature(call.ThresholdSignaturePayload())
	p.mu.Lock()
	r.requestID = reqID
	r.hasRequest = true
	p.requestToBroadcast[reqID] = id
	p.persistLocked(r)
	p.mu.Unlock()

	p.sink.Emit(events.CallResigned{BroadcastID: id})
	return nil
}

// ReSignAborted re-signs each of ids that is currently in AbortedBroadcasts;
// ids that are unknown or not aborted are skipped (a supplemented
// bulk-governance feature; see DESIGN.md).
func (p *Pipeline) ReSignAborted(ids []chains.BroadcastID) {
	for _, id := range ids {
		p.mu.Lock()
		r, ok := p.records[id]
		aborted := ok && r.aborted
		p.mu.Unlock()
		if aborted {
			_ = p.ReSignBroadcast(id, true, false)
		}
	}
}

// startNextBroadcastAttempt implements spec.md §4.5's
// start_next_broadcast_attempt, including the requires_signature_refresh
// branch.
func (p *Pipeline) startNextBroadcastAttempt(id chains.BroadcastID) error {
	p.mu.Lock()
	r, ok := p.records[id]
	if !ok || r.signedCall == nil {
		p.mu.Unlock()
		return ErrApiCallUnavailable
	}
	payload := r.signedCall.ThresholdSignaturePayload()
	onChainKey := p.onChainKey
	p.mu.Unlock()

	outcome, replacement := refresh.Evaluate(p.builder, r.unsignedCall, payload, onChainKey)
	switch outcome {
	case refresh.ProceedToDispatch:
		return p.startBroadcastAttempt(id)
	case refresh.RequestFreshSignature:
		p.sink.Emit(events.ThresholdSignatureInvalid{BroadcastID: id})
		reqID := p.signer.RequestSignature(payload)
		p.mu.Lock()
		p.requestToBroadcast[reqID] = id
		p.mu.Unlock()
		return nil
	case refresh.ReplaceAndRequestFreshSignature:
		p.mu.Lock()
		r.unsignedCall = replacement
		p.mu.Unlock()
		p.sink.Emit(events.ThresholdSignatureInvalid{BroadcastID: id})
		reqID := p.signer.RequestSignature(replacement.ThresholdSignaturePayload())
		p.mu.Lock()
		p.requestToBroadcast[reqID] = id
		p.mu.Unlock()
		return nil
	default:
		return nil
	}
}

// TransactionSucceeded implements spec.md §4.5's transaction_succeeded in
// full.
func (p *Pipeline) TransactionSucceeded(txOutID chains.TransactionOutID, signer string, txFee *big.Int, txMetadata chains.TransactionMetadata, txRef string) error {
	p.mu.Lock()
	id, ok := p.txOutToBroadcast[string(txOutID)]
	if !ok {
		p.mu.Unlock()
		return ErrInvalidPayload
	}
	r, ok := p.records[id]
	if !ok {
		p.mu.Unlock()
		return ErrInvalidBroadcastID
	}

	r.pending = false
	r.aborted = false

	// Once id is no longer pending, any barrier it (or an earlier
	// rotation) installed below the new earliest-pending id can never
	// block anything again - prune it (spec.md §4.6).
	if earliest, ok := p.earliestPendingLocked(); ok {
		p.barriers.Prune(earliest)
	} else {
		p.barriers.Prune(id + 1)
	}

	installRotation := p.rotation != nil && p.rotation.id == id
	var newKey chains.AggKey
	if installRotation {
		newKey = p.rotation.key
		p.rotation = nil
	}

	cb := r.successCb
	storedMetadata := r.metadata
	unsignedCall := r.unsignedCall
	chain := p.chain
	attempts := r.attempts
	p.mu.Unlock()

	if installRotation {
		p.onChainKey = newKey
	}

	if p.metrics != nil {
		p.metrics.ObserveSuccess(chain.String(), attempts)
	}

	// Step 5: verify the witnessed metadata against what was recorded at
	// dispatch time and credit (or refuse) the fee-reimbursement ledger.
	if storedMetadata != nil && p.fees != nil {
		result := p.fees.VerifyAndRecord(storedMetadata, txMetadata, unsignedCall, chain, signer, txFee)
		if result.Verified {
			if p.metrics != nil {
				p.metrics.ObserveFeeDeficitRecorded(chain.String())
			}
			p.sink.Emit(events.TransactionFeeDeficitRecorded{BroadcastID: id, Signer: signer})
		} else {
			if p.metrics != nil {
				p.metrics.ObserveFeeDeficitRefused(chain.String())
			}
			p.sink.Emit(events.TransactionFeeDeficitRefused{BroadcastID: id})
		}
	}

	if cb != nil {
		cb(txOutID)
		p.sink.Emit(events.BroadcastCallbackExecuted{BroadcastID: id, Succeeded: true})
	}

	// Step 7: no FailedToBroadcastTransaction offence is reported here.
	// The validators left in FailedBroadcasters[id] are not emitted or
	// passed anywhere; they are discarded with the record below.

	p.sink.Emit(events.BroadcastSuccess{BroadcastID: id, TransactionOutID: txOutID, TransactionRef: txRef})

	p.mu.Lock()
	p.deleteRecordLocked(id)
	p.mu.Unlock()

	return nil
}
