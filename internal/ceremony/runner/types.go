package runner

import (
	"time"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/wire"
	"github.com/lightningnetwork/lnd/clock"
)

// Mode selects whether a Runner performs a fresh keygen or a key handover
// (resharing) ceremony (spec.md §4.1).
type Mode int

const (
	ModeKeygen Mode = iota
	ModeHandover
)

// HandoverParams carries the extra context a handover ceremony needs beyond
// a fresh keygen's: which parties are contributing a reshared polynomial,
// what the prior aggregate key was (so the PubkeyShares0 prefix stage can
// verify continuity), and this party's own prior share, if it has one.
type HandoverParams struct {
	// SharingSet is S_old: the parties that contribute a resharing
	// polynomial this round.
	SharingSet []party.PartyIdx
	// PriorAggregatePubkey is the key this ceremony must reconstruct
	// continuity with.
	PriorAggregatePubkey scheme.Point
	// OldShare is this party's existing secret share, non-nil only if
	// Self appears in SharingSet ("Sharing" party_status). A receiving
	// party with no prior share ("NonSharing" status) leaves this nil.
	OldShare scheme.Scalar
}

// Config parameterizes a single party's view of one ceremony run.
type Config struct {
	Scheme       scheme.Scheme
	Mapping      *party.Mapping
	Self         party.PartyIdx
	StageTimeout time.Duration
	Clock        clock.Clock

	// SelfX25519Priv and PeerX25519Pub back stage-5's point-to-point
	// share encryption (sharing.Seal/Open).
	SelfX25519Priv [32]byte
	PeerX25519Pub  map[party.PartyIdx][32]byte

	// Handover is nil for a fresh keygen ceremony.
	Handover *HandoverParams
}

// KeyShare is a successful ceremony's output for this party (spec.md §3
// "KeyShare. After successful ceremony: (aggregate_pubkey, x_i,
// [party_pubkeys])").
type KeyShare struct {
	AggregatePubkey scheme.Point
	Share           scheme.Scalar
	PartyPubkeys    map[party.PartyIdx]scheme.Point
}

// ReasonKind is spec.md §4.1's exhaustive ceremony failure taxonomy.
type ReasonKind int

const (
	ReasonBroadcastInconsistency ReasonKind = iota
	ReasonBroadcastInsufficientMessages
	ReasonInvalidCommitment
	ReasonInvalidComplaint
	ReasonInvalidBlameResponse
	ReasonDeserializationError
)

func (k ReasonKind) String() string {
	switch k {
	case ReasonBroadcastInconsistency:
		return "BroadcastFailure(Inconsistency)"
	case ReasonBroadcastInsufficientMessages:
		return "BroadcastFailure(InsufficientMessages)"
	case ReasonInvalidCommitment:
		return "InvalidCommitment"
	case ReasonInvalidComplaint:
		return "InvalidComplaint"
	case ReasonInvalidBlameResponse:
		return "InvalidBlameResponse"
	case ReasonDeserializationError:
		return "DeserializationError"
	default:
		return "UnknownReason"
	}
}

// FailureReason is the terminal reason a ceremony failed.
type FailureReason struct {
	Kind   ReasonKind
	Stage  wire.StageID
	Detail string
}

// FailureResult is the terminal Failure outcome: the parties blamed and why.
type FailureResult struct {
	Blamed []party.PartyIdx
	Reason FailureReason
}

// Outcome is a ceremony's terminal state: exactly one of Success or Failure
// is set.
type Outcome struct {
	Success *KeyShare
	Failure *FailureResult
}

// OutgoingMessage is one message the runner needs delivered to the
// transport, addressed to a single recipient. Broadcast stages produce one
// OutgoingMessage per other party (all carrying the same Env.Raw); stage 5
// produces one per recipient with a distinct, individually-sealed payload.
type OutgoingMessage struct {
	To  party.PartyIdx
	Env wire.Envelope
}

// State is the Runner's coarse lifecycle position (spec.md §4.1 "Initial:
// Idle ... Terminal: Success; Failure").
type State int

const (
	StateIdle State = iota
	StateRunning
	StateSuccess
	StateFailure
)
