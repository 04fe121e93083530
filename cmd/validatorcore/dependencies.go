package main

import (
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/events"
	"github.com/chainbridge-validators/threshold-core/internal/rpcwitness"
)

// ChainDeps bundles one target chain's externally-supplied capabilities -
// its TransactionBuilder, ThresholdSigner, witnessed-metadata decoder, and
// block-height source. None of these are built by this module: spec.md §1
// explicitly scopes chain-specific transaction construction and the
// threshold-signing ceremony's external caller out of the core, the same
// way lnd.go's lndMain accepts an already-constructed lnwallet.Config
// rather than instantiating a wallet backend itself.
type ChainDeps struct {
	Crypto          chains.ChainCrypto
	Builder         chains.TransactionBuilder
	Signer          chains.ThresholdSigner
	MetadataDecoder rpcwitness.MetadataDecoder

	// Height yields this chain's current height, polled once per
	// ticker interval to drive the pipeline's OnInitialize.
	Height func() (uint64, error)
}

// Dependencies bundles every externally-supplied capability the daemon
// needs beyond what this module builds itself (store, registry,
// pipelines, metrics, witness server, event sink transport).
type Dependencies struct {
	Chains map[chains.ChainID]ChainDeps

	// AuthoritySet is the current validator set used for nomination
	// (spec.md §4.4), supplied by whatever tracks validator-set
	// membership and rotation - out of this module's scope per §1.
	AuthoritySet []chains.AccountID

	// Sink receives every emitted broadcast-lifecycle event. Defaults
	// to an in-memory sink if nil, matching events.MemorySink's role
	// as the teacher's mock-transport stand-in for tests and any
	// deployment that hasn't wired a real CFE websocket connection
	// yet.
	Sink events.Sink
}
