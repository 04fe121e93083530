// Package refresh implements the requires_signature_refresh branch of
// start_next_broadcast_attempt (spec.md §4.5, §6.1): before a pending
// broadcast is (re)dispatched, check whether its stored signature is still
// valid under the chain's current on-chain key.
//
// Grounded on chainregistry.go's per-chain dispatch-through-an-interface
// pattern: the decision is made by calling the chain's own
// TransactionBuilder rather than branching on a chain-id type switch here.
package refresh

import "github.com/chainbridge-validators/threshold-core/internal/chains"

// Outcome is one of the three branches spec.md §4.5 names for
// start_next_broadcast_attempt.
type Outcome int

const (
	// ProceedToDispatch means the stored signature is still valid;
	// start_broadcast_attempt should run unmodified.
	ProceedToDispatch Outcome = iota
	// RequestFreshSignature means the signature is stale and the call
	// itself is unchanged; a fresh signature must be requested before
	// dispatch can proceed.
	RequestFreshSignature
	// ReplaceAndRequestFreshSignature means the call's signer field had
	// to be rewritten to the new on-chain key; PendingApiCalls must be
	// updated to Replacement before a fresh signature is requested.
	ReplaceAndRequestFreshSignature
)

// Evaluate asks builder whether call's stored signature over payload
// remains valid under currentOnChainKey and returns the outcome plus,
// for ReplaceAndRequestFreshSignature, the rewritten call to store.
func Evaluate(builder chains.TransactionBuilder, call chains.ApiCall, payload chains.Payload, currentOnChainKey chains.AggKey) (Outcome, chains.ApiCall) {
	refresh := builder.RequiresSignatureRefresh(call, payload, currentOnChainKey)
	if !refresh.Required {
		return ProceedToDispatch, nil
	}
	if refresh.Replacement == nil {
		return RequestFreshSignature, nil
	}
	return ReplaceAndRequestFreshSignature, refresh.Replacement
}
