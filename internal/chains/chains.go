// Package chains defines the interfaces the broadcast pipeline uses to stay
// chain-agnostic: TransactionBuilder, ApiCall, ChainCrypto and
// ThresholdSigner (spec.md §6). It also supplies concrete ChainCrypto
// implementations - signature verification is cryptography the core itself
// is responsible for, unlike transaction construction, which stays an
// externally-supplied capability (spec.md §1's scope note on
// "constructing...transactions").
//
// Grounded on chainregistry.go's chainCode/chainControl/chainRegistry shape:
// one interface bundle per chain, looked up through a registry keyed by a
// small enum, with a distinguished "primary" entry.
package chains

import (
	"fmt"
	"math/big"
)

// ChainID is an enum-like identifier for a supported target chain, the same
// role chainCode plays for bitcoinChain/litecoinChain.
type ChainID uint32

const (
	Ethereum ChainID = iota
	Bitcoin
	Solana
	Polkadot
)

func (c ChainID) String() string {
	switch c {
	case Ethereum:
		return "ethereum"
	case Bitcoin:
		return "bitcoin"
	case Solana:
		return "solana"
	case Polkadot:
		return "polkadot"
	default:
		return "unknown"
	}
}

// BroadcastID identifies one instance of signing-and-broadcasting an
// ApiCall (spec.md §3 "BroadcastId").
type BroadcastID uint64

// TransactionOutID is the chain-specific identifier witnessers observe
// on-chain for a signed call - a Solana signature, an EVM tx hash, a
// Bitcoin txid. Must be a pure function of the signed call (spec.md §6.2).
type TransactionOutID []byte

func (id TransactionOutID) String() string { return fmt.Sprintf("%x", []byte(id)) }

// Payload is the deterministic byte string an ApiCall asks the
// ThresholdSigner to sign over (spec.md §6.2 threshold_signature_payload).
type Payload []byte

// ApiCall is one chain-specific call awaiting a threshold signature
// (spec.md §6.2).
type ApiCall interface {
	// ThresholdSignaturePayload returns the deterministic bytes to sign.
	ThresholdSignaturePayload() Payload

	// Signed attaches a threshold signature and signer pubkey, producing
	// the call's signed form.
	Signed(sig ThresholdSignature, signerPubkey AggKey) SignedApiCall

	// TransactionOutID is the pure-function identifier witnessers will
	// see on-chain once this call is broadcast in signed form.
	TransactionOutID() TransactionOutID

	// RefreshReplayProtection bumps chain-specific replay fields (a
	// sequence number or nonce) in place, ahead of a resign attempt.
	RefreshReplayProtection()

	// ReturnFeeRefund computes how much of the witnessed on-chain fee
	// the signer is owed back, given this call's own fee-bearing shape
	// (spec.md §4.5 step 5 "payload.return_fee_refund(tx_fee)").
	ReturnFeeRefund(txFee *big.Int) *big.Int
}

// SignedApiCall is an ApiCall that has been signed and is ready to be
// built into a wire-format Transaction.
type SignedApiCall interface {
	ApiCall
	Signature() ThresholdSignature
	SignerPubkey() AggKey
}

// TransactionMetadata is whatever a TransactionBuilder extracts from a
// built Transaction so a later witnessed transaction can be checked for
// consistency against what the pipeline expected to have broadcast
// (spec.md §6.1 verify_metadata).
type TransactionMetadata interface {
	VerifyMetadata(expected TransactionMetadata) bool
}

// Transaction is a chain's canonical wire-format transaction.
type Transaction struct {
	Raw      []byte
	Metadata TransactionMetadata
}

// RequiresSignatureRefresh is the result of asking a TransactionBuilder
// whether a previously signed call needs to be re-emitted before dispatch
// (spec.md §6.1): False, or True(Option<ApiCall>) where Some(modified)
// carries the call rewritten to the current on-chain signer key.
type RequiresSignatureRefresh struct {
	Required    bool
	Replacement ApiCall
}

// TransactionBuilder canonicalises a signed call into wire form for one
// chain (spec.md §6.1). Concrete per-chain implementations construct real
// wire transactions against that chain's SDK; this package only defines
// the contract the pipeline programs against; see the "dropped teacher
// modules" note in DESIGN.md for why wallet/tx-construction libraries
// themselves are out of scope.
type TransactionBuilder interface {
	// BuildTransaction canonicalises a signed call into wire form.
	BuildTransaction(call SignedApiCall) (Transaction, error)

	// RefreshUnsignedData bumps nonce, fee, durable-nonce account, or
	// similar mutable transaction fields in place, ahead of a rebuild.
	RefreshUnsignedData(tx *Transaction)

	// RequiresSignatureRefresh reports whether a call signed under an
	// older on-chain key must be re-emitted under currentOnChainKey
	// before it can be dispatched.
	RequiresSignatureRefresh(call ApiCall, payload Payload, currentOnChainKey AggKey) RequiresSignatureRefresh

	// ExtractMetadata pulls the fields a later witnessed transaction
	// will be checked against out of a just-built Transaction.
	ExtractMetadata(tx Transaction) TransactionMetadata
}

// AggKey is a chain's aggregate threshold public key.
type AggKey interface {
	Bytes() []byte
	Equal(AggKey) bool
}

// ThresholdSignature is a finished threshold signature in chain wire
// format.
type ThresholdSignature interface {
	Bytes() []byte
}

// ChainCrypto is the chain-specific verification and rotation-barrier
// surface the pipeline consults (spec.md §6.3).
type ChainCrypto interface {
	// VerifySignature checks a threshold signature over payload against
	// key.
	VerifySignature(key AggKey, payload Payload, sig ThresholdSignature) bool

	// KeyHandoverIsRequired reports whether this chain's aggregate-key
	// structure requires a handover (resharing) ceremony on rotation,
	// rather than a fresh keygen - true for schemes where a receiver
	// needs a share of the prior secret (e.g. Bitcoin's x-only tweak),
	// false where a pure keygen suffices.
	KeyHandoverIsRequired() bool

	// MaybeBroadcastBarriersOnRotation returns the BroadcastIds that
	// must be ordered behind a key rotation for this chain, if any.
	MaybeBroadcastBarriersOnRotation(rotation BroadcastID) []BroadcastID
}

// RequestID names one outstanding signature request to the ThresholdSigner
// (spec.md §6.4).
type RequestID uint64

// AsyncResult models the Rust-side Pending | Ready(T) enum spec.md's
// ThresholdSigner interface returns signature_result as.
type AsyncResult[T any] struct {
	Ready bool
	Value T
}

// Pending constructs a not-yet-ready AsyncResult.
func Pending[T any]() AsyncResult[T] { return AsyncResult[T]{} }

// ReadyWith constructs a completed AsyncResult.
func ReadyWith[T any](v T) AsyncResult[T] { return AsyncResult[T]{Ready: true, Value: v} }

// SignatureOutcome is the completed form of a signature request: either a
// finished signature, or the set of parties whose misbehavior caused the
// ceremony driving it to fail.
type SignatureOutcome struct {
	Sig    ThresholdSignature
	Failed []AccountID
	Err    error
}

// AccountID mirrors ceremony/party.AccountId's shape without importing the
// ceremony package - chains is lower in the dependency graph than
// ceremony/runner so that runner and chains can each be tested in
// isolation from the other.
type AccountID [32]byte

// ThresholdSigner is the ceremony-engine surface the broadcast pipeline
// drives signing requests through (spec.md §6.4).
type ThresholdSigner interface {
	RequestSignature(payload Payload) RequestID
	RequestSignatureWithCallback(payload Payload, cb func(RequestID)) RequestID
	SignatureResult(id RequestID) (AggKey, AsyncResult[SignatureOutcome])
}
