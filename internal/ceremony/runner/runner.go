// Package runner drives one party through the nine-stage keygen/handover
// ceremony to a terminal Success(KeyShare) or Failure(blamed, reason),
// wiring together party, scheme, commitment, sharing, wire, verify and
// blame. Grounded on contractcourt/htlc_timeout_resolver.go's small
// explicit-state resolver (advance on timer or event, terminate into one of
// two outcomes) and htlcswitch/switch.go's central dispatch loop, adapted
// from one HTLC's lifecycle to one ceremony participant's lifecycle.
package runner

import (
	"fmt"
	"time"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/blame"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/sharing"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/verify"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/wire"
	"github.com/btcsuite/btclog"
	"github.com/go-errors/errors"
)

// Runner is one party's view of a single ceremony run. It is not safe for
// concurrent use - per spec.md §5, the ceremony is driven by a single
// caller, one Tick/Deliver at a time, with no internal goroutines.
type Runner struct {
	cfg Config
	log btclog.Logger

	state    State
	stage    wire.StageID
	deadline time.Time

	batches map[wire.StageID]*wire.Batch

	poly    *sharing.Polynomial
	comm    *commitment.DKGCommitment
	ownHash commitment.HashDigest

	acceptedHashes      map[party.PartyIdx]commitment.HashDigest
	acceptedCommitments map[party.PartyIdx]*commitment.DKGCommitment
	receivedShares      map[party.PartyIdx]scheme.Scalar
	acceptedComplaints  map[party.PartyIdx][]party.PartyIdx
	accusedParties      []party.PartyIdx
	outcome             *Outcome
}

// New validates cfg and constructs an idle Runner.
func New(cfg Config, log btclog.Logger) (*Runner, error) {
	if cfg.Scheme == nil || cfg.Mapping == nil || cfg.Self == 0 {
		return nil, errors.New("runner: incomplete config")
	}
	if cfg.StageTimeout <= 0 {
		return nil, errors.New("runner: StageTimeout must be positive")
	}
	if cfg.Clock == nil {
		return nil, errors.New("runner: Clock is required")
	}
	return &Runner{
		cfg:                 cfg,
		log:                 log,
		state:               StateIdle,
		batches:             make(map[wire.StageID]*wire.Batch),
		acceptedHashes:      make(map[party.PartyIdx]commitment.HashDigest),
		acceptedCommitments: make(map[party.PartyIdx]*commitment.DKGCommitment),
		receivedShares:      make(map[party.PartyIdx]scheme.Scalar),
		acceptedComplaints:  make(map[party.PartyIdx][]party.PartyIdx),
	}, nil
}

// State reports the runner's current lifecycle position.
func (r *Runner) State() State { return r.state }

// Outcome returns the terminal outcome, or nil if the ceremony has not
// finished.
func (r *Runner) Outcome() *Outcome { return r.outcome }

func (r *Runner) contributors() []party.PartyIdx {
	if r.cfg.Handover != nil {
		return r.cfg.Handover.SharingSet
	}
	return r.cfg.Mapping.All()
}

func (r *Runner) isContributor() bool {
	for _, idx := range r.contributors() {
		if idx == r.cfg.Self {
			return true
		}
	}
	return false
}

func (r *Runner) batch(stage wire.StageID) *wire.Batch {
	b, ok := r.batches[stage]
	if !ok {
		b = wire.NewBatch(stage)
		r.batches[stage] = b
	}
	return b
}

// loopback records the runner's own outgoing broadcast for stage in its own
// batch, since a party never sends itself a message over the wire but must
// still see its own contribution when tallying that stage.
func (r *Runner) loopback(stage wire.StageID, raw []byte) {
	_ = r.batch(stage).Add(wire.Envelope{Stage: stage, From: r.cfg.Self, Raw: raw})
}

// Deliver hands the runner one envelope received from the transport. It
// only buffers; processing happens in Tick once the current stage is ready
// or its deadline has passed.
func (r *Runner) Deliver(env wire.Envelope) error {
	if r.state != StateRunning {
		return fmt.Errorf("runner: cannot deliver while in state %d", r.state)
	}
	return r.batch(env.Stage).Add(env)
}

// Start computes this party's stage-1 (or, in handover mode, stage-0)
// contribution and transitions Idle -> Running.
func (r *Runner) Start(now time.Time) ([]OutgoingMessage, error) {
	if r.state != StateIdle {
		return nil, errors.New("runner: already started")
	}

	if r.isContributor() {
		t := r.cfg.Mapping.Threshold()
		var poly *sharing.Polynomial
		var err error
		if r.cfg.Handover != nil && r.cfg.Handover.OldShare != nil {
			lagrange := sharing.LagrangeCoefficientAtZero(r.cfg.Scheme, r.cfg.Self, r.cfg.Handover.SharingSet)
			c0 := r.cfg.Handover.OldShare.Mul(lagrange)
			poly, err = sharing.NewWithFreeCoefficient(r.cfg.Scheme, t, c0)
		} else {
			poly, err = sharing.NewRandom(r.cfg.Scheme, t)
		}
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
		r.poly = poly

		comm, err := commitment.New(r.cfg.Scheme, poly.Coeffs)
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
		r.comm = comm
		r.ownHash = commitment.Hash(comm)
	}

	r.state = StateRunning

	if r.cfg.Handover != nil {
		return r.startStage(wire.StagePubkeyShares0, now)
	}
	return r.startStage(wire.StageHashComm1, now)
}

func (r *Runner) startStage(stage wire.StageID, now time.Time) ([]OutgoingMessage, error) {
	r.stage = stage
	r.deadline = now.Add(r.cfg.StageTimeout)

	var out []OutgoingMessage
	switch stage {
	case wire.StagePubkeyShares0:
		if r.isContributor() {
			points := make(map[party.PartyIdx]scheme.Point, r.cfg.Mapping.N())
			for _, j := range r.cfg.Mapping.All() {
				points[j] = r.cfg.Scheme.ScalarBaseMult(r.poly.Evaluate(r.cfg.Scheme, r.cfg.Scheme.ScalarFromUint64(uint64(j))))
			}
			raw := encodePointMap(points)
			r.loopback(stage, raw)
			out = r.broadcast(stage, raw)
		}
	case wire.StageHashComm1:
		raw := append([]byte(nil), r.ownHash[:]...)
		r.loopback(stage, raw)
		out = r.broadcast(stage, raw)
	case wire.StageCoeffComm3:
		raw := r.comm.Encode()
		r.loopback(stage, raw)
		out = r.broadcast(stage, raw)
	}
	return out, nil
}

func (r *Runner) broadcast(stage wire.StageID, raw []byte) []OutgoingMessage {
	var out []OutgoingMessage
	for _, idx := range r.cfg.Mapping.Others(r.cfg.Self) {
		out = append(out, OutgoingMessage{To: idx, Env: wire.Envelope{Stage: stage, From: r.cfg.Self, Raw: raw}})
	}
	return out
}

// expectedSenders returns who must be heard from (directly or via timeout)
// before the current stage is ready to process.
func (r *Runner) expectedSenders(stage wire.StageID) []party.PartyIdx {
	switch stage {
	case wire.StagePubkeyShares0, wire.StageHashComm1, wire.StageCoeffComm3:
		return r.contributors()
	case wire.StageSecretShare5:
		return r.contributors()
	case wire.StageBlameResponse8:
		return r.accusedParties
	default:
		return r.cfg.Mapping.All()
	}
}

func (r *Runner) stageReady(now time.Time, stage wire.StageID) bool {
	if !now.Before(r.deadline) {
		return true
	}
	expected := r.expectedSenders(stage)
	b := r.batch(stage)
	for _, idx := range expected {
		if idx == r.cfg.Self {
			continue
		}
		if _, ok := b.Envelopes[idx]; !ok {
			return false
		}
	}
	return true
}

// Tick advances the ceremony if the current stage is complete or has timed
// out. It returns any new outgoing messages for the following stage, and a
// non-nil Outcome once the ceremony reaches a terminal state.
func (r *Runner) Tick(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	if r.state != StateRunning {
		return nil, r.outcome, nil
	}
	if !r.stageReady(now, r.stage) {
		return nil, nil, nil
	}

	out, outcome, err := r.processStage(now)
	if err != nil {
		return nil, nil, err
	}
	if outcome != nil {
		r.outcome = outcome
		if outcome.Success != nil {
			r.state = StateSuccess
		} else {
			r.state = StateFailure
		}
	}
	return out, outcome, nil
}

// withMissingSenders adds an InsufficientMessages failure for every party in
// expected that verify.Verify neither accepted nor already reported. A
// sender that nobody ever claims to have heard from never appears as a key
// in any verifier's claim map, so verify.Verify has no way to know it was
// ever expected - only the runner knows the full contributor list.
func withMissingSenders[T any](failures []verify.Failure, accepted map[party.PartyIdx]T, expected []party.PartyIdx, stage wire.StageID, self party.PartyIdx) []verify.Failure {
	reported := make(map[party.PartyIdx]struct{}, len(failures))
	for _, f := range failures {
		reported[f.Sender] = struct{}{}
	}
	for _, idx := range expected {
		if idx == self {
			continue
		}
		if _, ok := accepted[idx]; ok {
			continue
		}
		if _, ok := reported[idx]; ok {
			continue
		}
		failures = append(failures, verify.Failure{Sender: idx, Kind: verify.InsufficientMessages, Stage: stage})
	}
	return failures
}

func (r *Runner) fail(kind ReasonKind, stage wire.StageID, blamed []party.PartyIdx, detail string) *Outcome {
	return &Outcome{Failure: &FailureResult{
		Blamed: blamed,
		Reason: FailureReason{Kind: kind, Stage: stage, Detail: detail},
	}}
}

func (r *Runner) processStage(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	switch r.stage {
	case wire.StagePubkeyShares0:
		return r.processPubkeyShares0(now)
	case wire.StageHashComm1:
		return r.processHashComm1(now)
	case wire.StageVerifyHashComm2:
		return r.processVerifyHashComm2(now)
	case wire.StageCoeffComm3:
		return r.processCoeffComm3(now)
	case wire.StageVerifyCoeffComm4:
		return r.processVerifyCoeffComm4(now)
	case wire.StageSecretShare5:
		return r.processSecretShare5(now)
	case wire.StageComplaints6:
		return r.processComplaints6(now)
	case wire.StageVerifyComplaints7:
		return r.processVerifyComplaints7(now)
	case wire.StageBlameResponse8:
		return r.processBlameResponse8(now)
	case wire.StageVerifyBlameResponses9:
		return r.processVerifyBlameResponses9(now)
	default:
		return nil, nil, fmt.Errorf("runner: unknown stage %s", r.stage)
	}
}

func (r *Runner) processPubkeyShares0(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	decoded, _ := wire.DecodeAll(r.batch(wire.StagePubkeyShares0), func(b []byte) (map[party.PartyIdx]scheme.Point, error) {
		return decodePointMap(r.cfg.Scheme, b)
	})

	reconstructed := r.cfg.Scheme.Identity()
	for _, k := range r.contributors() {
		points, ok := decoded[k]
		if !ok {
			continue
		}
		// Interpolate f_k(0)*G from every published f_k(j)*G.
		idxs := make([]party.PartyIdx, 0, len(points))
		for j := range points {
			idxs = append(idxs, j)
		}
		for _, j := range idxs {
			lag := sharing.LagrangeCoefficientAtZero(r.cfg.Scheme, j, idxs)
			reconstructed = reconstructed.Add(r.cfg.Scheme.ScalarMult(lag, points[j]))
		}
	}

	if !reconstructed.Equal(r.cfg.Handover.PriorAggregatePubkey) {
		return nil, r.fail(ReasonInvalidCommitment, wire.StagePubkeyShares0, r.contributors(),
			"reconstructed aggregate key does not match the prior on-chain key"), nil
	}

	out, err := r.startStage(wire.StageHashComm1, now)
	return out, nil, err
}

func (r *Runner) processHashComm1(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	decoded, _ := wire.DecodeAll(r.batch(wire.StageHashComm1), func(b []byte) (commitment.HashDigest, error) {
		var h commitment.HashDigest
		if len(b) != len(h) {
			return h, fmt.Errorf("runner: malformed hash commitment payload")
		}
		copy(h[:], b)
		return h, nil
	})

	raw := encodeHashClaims(decoded)
	r.loopback(wire.StageVerifyHashComm2, raw)
	out := r.broadcast(wire.StageVerifyHashComm2, raw)
	r.stage = wire.StageVerifyHashComm2
	r.deadline = now.Add(r.cfg.StageTimeout)
	return out, nil, nil
}

func (r *Runner) processVerifyHashComm2(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	claims := make(map[party.PartyIdx]map[party.PartyIdx]commitment.HashDigest)
	for _, verifier := range r.cfg.Mapping.All() {
		env, ok := r.batch(wire.StageVerifyHashComm2).Envelopes[verifier]
		if !ok {
			continue
		}
		m, err := decodeHashClaims(env.Raw)
		if err != nil {
			continue
		}
		claims[verifier] = m
	}

	accepted, failures, err := verify.Verify(wire.StageVerifyHashComm2, claims, hashEqual)
	if err != nil {
		return nil, nil, err
	}
	failures = withMissingSenders(failures, accepted, r.contributors(), wire.StageVerifyHashComm2, r.cfg.Self)
	if len(failures) > 0 {
		return nil, r.broadcastFailureOutcome(failures), nil
	}
	r.acceptedHashes = accepted

	out, err := r.startStage(wire.StageCoeffComm3, now)
	return out, nil, err
}

func (r *Runner) processCoeffComm3(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	decoded, _ := wire.DecodeAll(r.batch(wire.StageCoeffComm3), func(b []byte) ([]byte, error) {
		return b, nil
	})

	raw := encodeRawClaims(decoded)
	r.loopback(wire.StageVerifyCoeffComm4, raw)
	out := r.broadcast(wire.StageVerifyCoeffComm4, raw)
	r.stage = wire.StageVerifyCoeffComm4
	r.deadline = now.Add(r.cfg.StageTimeout)
	return out, nil, nil
}

func (r *Runner) processVerifyCoeffComm4(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	claims := make(map[party.PartyIdx]map[party.PartyIdx][]byte)
	for _, verifier := range r.cfg.Mapping.All() {
		env, ok := r.batch(wire.StageVerifyCoeffComm4).Envelopes[verifier]
		if !ok {
			continue
		}
		m, err := decodeRawClaims(env.Raw)
		if err != nil {
			continue
		}
		claims[verifier] = m
	}

	accepted, failures, err := verify.Verify(wire.StageVerifyCoeffComm4, claims, bytesEqual)
	if err != nil {
		return nil, nil, err
	}
	failures = withMissingSenders(failures, accepted, r.contributors(), wire.StageVerifyCoeffComm4, r.cfg.Self)
	if len(failures) > 0 {
		return nil, r.broadcastFailureOutcome(failures), nil
	}

	for sender, raw := range accepted {
		comm, err := commitment.Decode(r.cfg.Scheme, raw)
		if err != nil {
			return nil, r.fail(ReasonDeserializationError, wire.StageVerifyCoeffComm4, []party.PartyIdx{sender}, err.Error()), nil
		}
		if !commitment.VerifyHash(r.acceptedHashes[sender], comm) {
			return nil, r.fail(ReasonInvalidCommitment, wire.StageVerifyCoeffComm4, []party.PartyIdx{sender},
				"opened commitment does not match stage-1 hash"), nil
		}
		if !comm.Verify(r.cfg.Scheme) {
			return nil, r.fail(ReasonInvalidCommitment, wire.StageVerifyCoeffComm4, []party.PartyIdx{sender},
				"Schnorr proof of knowledge failed"), nil
		}
		r.acceptedCommitments[sender] = comm
	}

	if r.cfg.Scheme.RequiresSecondaryTweak() {
		aggregatePrimary := r.cfg.Scheme.Identity()
		for _, comm := range r.acceptedCommitments {
			aggregatePrimary = aggregatePrimary.Add(comm.Coeffs[0])
		}
		if err := r.cfg.Scheme.CheckSecondaryTweak(aggregatePrimary); err != nil {
			return nil, r.fail(ReasonInvalidCommitment, wire.StageVerifyCoeffComm4, r.contributors(),
				fmt.Sprintf("secondary-coefficient constraint violated: %v", err)), nil
		}
	}

	out, err := r.startStage5(now)
	return out, nil, err
}

func (r *Runner) startStage5(now time.Time) ([]OutgoingMessage, error) {
	r.stage = wire.StageSecretShare5
	r.deadline = now.Add(r.cfg.StageTimeout)

	if !r.isContributor() {
		return nil, nil
	}

	var out []OutgoingMessage
	for _, j := range r.cfg.Mapping.All() {
		share := r.poly.Evaluate(r.cfg.Scheme, r.cfg.Scheme.ScalarFromUint64(uint64(j)))
		if j == r.cfg.Self {
			r.receivedShares[r.cfg.Self] = share
			continue
		}
		peerPub, ok := r.cfg.PeerX25519Pub[j]
		if !ok {
			return nil, fmt.Errorf("runner: no X25519 key on file for party %d", j)
		}
		sealed, err := sharing.Seal(peerPub, share.Bytes())
		if err != nil {
			return nil, fmt.Errorf("runner: %w", err)
		}
		out = append(out, OutgoingMessage{To: j, Env: wire.Envelope{Stage: wire.StageSecretShare5, From: r.cfg.Self, Raw: sealed.Encode()}})
	}
	return out, nil
}

func (r *Runner) processSecretShare5(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	var complaints []party.PartyIdx
	for _, sender := range r.contributors() {
		if sender == r.cfg.Self {
			continue
		}
		env, ok := r.batch(wire.StageSecretShare5).Envelopes[sender]
		if !ok {
			complaints = append(complaints, sender)
			continue
		}
		sealed, err := sharing.DecodeSealedShare(env.Raw)
		if err != nil {
			complaints = append(complaints, sender)
			continue
		}
		plaintext, err := sharing.Open(r.cfg.SelfX25519Priv, sealed)
		if err != nil {
			complaints = append(complaints, sender)
			continue
		}
		shareScalar, err := r.cfg.Scheme.ScalarFromBytes(plaintext)
		if err != nil {
			complaints = append(complaints, sender)
			continue
		}
		senderComm, ok := r.acceptedCommitments[sender]
		if !ok || !sharing.VerifyShare(r.cfg.Scheme, shareScalar, senderComm, r.cfg.Self) {
			complaints = append(complaints, sender)
			continue
		}
		r.receivedShares[sender] = shareScalar
	}

	raw := encodeAccusedList(complaints)
	r.loopback(wire.StageComplaints6, raw)
	out := r.broadcast(wire.StageComplaints6, raw)
	r.stage = wire.StageComplaints6
	r.deadline = now.Add(r.cfg.StageTimeout)
	return out, nil, nil
}

func (r *Runner) processComplaints6(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	decoded, _ := wire.DecodeAll(r.batch(wire.StageComplaints6), decodeAccusedList)

	for sender, accused := range decoded {
		for _, a := range accused {
			if a == 0 || int(a) > r.cfg.Mapping.N() {
				return nil, r.fail(ReasonInvalidComplaint, wire.StageComplaints6, []party.PartyIdx{sender},
					fmt.Sprintf("complaint references non-existent party %d", a)), nil
			}
		}
	}

	raw := encodeComplaintClaims(decoded)
	r.loopback(wire.StageVerifyComplaints7, raw)
	out := r.broadcast(wire.StageVerifyComplaints7, raw)
	r.stage = wire.StageVerifyComplaints7
	r.deadline = now.Add(r.cfg.StageTimeout)
	return out, nil, nil
}

func (r *Runner) processVerifyComplaints7(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	claims := make(map[party.PartyIdx]map[party.PartyIdx][]party.PartyIdx)
	for _, verifier := range r.cfg.Mapping.All() {
		env, ok := r.batch(wire.StageVerifyComplaints7).Envelopes[verifier]
		if !ok {
			continue
		}
		m, err := decodeComplaintClaims(env.Raw)
		if err != nil {
			continue
		}
		claims[verifier] = m
	}

	accepted, failures, err := verify.Verify(wire.StageVerifyComplaints7, claims, idxSliceEqual)
	if err != nil {
		return nil, nil, err
	}
	failures = withMissingSenders(failures, accepted, r.cfg.Mapping.All(), wire.StageVerifyComplaints7, r.cfg.Self)
	if len(failures) > 0 {
		return nil, r.broadcastFailureOutcome(failures), nil
	}
	r.acceptedComplaints = accepted

	accusedSet := make(map[party.PartyIdx]struct{})
	for _, accused := range accepted {
		for _, a := range accused {
			accusedSet[a] = struct{}{}
		}
	}
	if len(accusedSet) == 0 {
		return nil, r.finish(), nil
	}
	for a := range accusedSet {
		r.accusedParties = append(r.accusedParties, a)
	}

	var complaintSets []blame.ComplaintSet
	for sender, accused := range accepted {
		complaintSets = append(complaintSets, blame.ComplaintSet{From: sender, Accused: accused})
	}

	var out []OutgoingMessage
	if r.isContributor() {
		for _, accused := range r.accusedParties {
			if accused != r.cfg.Self {
				continue
			}
			accusers := blame.AccusersOf(r.cfg.Self, complaintSets)
			resp := blame.BuildResponse(r.cfg.Scheme, r.cfg.Self, r.poly, accusers)
			raw := encodeShareMap(resp.Shares)
			r.loopback(wire.StageBlameResponse8, raw)
			out = r.broadcast(wire.StageBlameResponse8, raw)
		}
	}
	r.stage = wire.StageBlameResponse8
	r.deadline = now.Add(r.cfg.StageTimeout)
	return out, nil, nil
}

func (r *Runner) processBlameResponse8(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	decoded := make(map[party.PartyIdx]map[party.PartyIdx]scheme.Scalar)
	for accused, env := range r.batch(wire.StageBlameResponse8).Envelopes {
		m, err := decodeShareMap(r.cfg.Scheme, env.Raw)
		if err != nil {
			continue
		}
		decoded[accused] = m
	}

	raw := encodeBlameClaims(decoded)
	r.loopback(wire.StageVerifyBlameResponses9, raw)
	out := r.broadcast(wire.StageVerifyBlameResponses9, raw)
	r.stage = wire.StageVerifyBlameResponses9
	r.deadline = now.Add(r.cfg.StageTimeout)
	return out, nil, nil
}

func (r *Runner) processVerifyBlameResponses9(now time.Time) ([]OutgoingMessage, *Outcome, error) {
	claims := make(map[party.PartyIdx]map[party.PartyIdx]map[party.PartyIdx]scheme.Scalar)
	for _, verifier := range r.cfg.Mapping.All() {
		env, ok := r.batch(wire.StageVerifyBlameResponses9).Envelopes[verifier]
		if !ok {
			continue
		}
		m, err := decodeBlameClaims(r.cfg.Scheme, env.Raw)
		if err != nil {
			continue
		}
		claims[verifier] = m
	}

	accepted, failures, err := verify.Verify(wire.StageVerifyBlameResponses9, claims, shareMapEqual)
	if err != nil {
		return nil, nil, err
	}
	failures = withMissingSenders(failures, accepted, r.accusedParties, wire.StageVerifyBlameResponses9, r.cfg.Self)
	if len(failures) > 0 {
		return nil, r.broadcastFailureOutcome(failures), nil
	}

	var complaintSets []blame.ComplaintSet
	for sender, accused := range r.acceptedComplaints {
		complaintSets = append(complaintSets, blame.ComplaintSet{From: sender, Accused: accused})
	}

	var blamed []party.PartyIdx
	for _, accused := range r.accusedParties {
		shares := accepted[accused]
		accusers := blame.AccusersOf(accused, complaintSets)
		verdict, err := blame.Adjudicate(r.cfg.Scheme, blame.Case{
			Accused:    accused,
			Accusers:   accusers,
			Commitment: r.acceptedCommitments[accused],
			Response:   &blame.BlameResponse{From: accused, Shares: shares},
		})
		if verdict == blame.Blamed {
			r.log.Warnf("runner: party %d blamed: %v", accused, err)
			blamed = append(blamed, accused)
			continue
		}
		if revealed, ok := shares[r.cfg.Self]; ok {
			r.receivedShares[accused] = revealed
		}
	}

	if len(blamed) > 0 {
		return nil, r.fail(ReasonInvalidBlameResponse, wire.StageVerifyBlameResponses9, blamed, "accused party failed blame adjudication"), nil
	}

	return nil, r.finish(), nil
}

func (r *Runner) finish() *Outcome {
	aggregate := r.cfg.Scheme.Identity()
	for _, comm := range r.acceptedCommitments {
		aggregate = aggregate.Add(comm.Coeffs[0])
	}

	// Party idx's share public key is the sum, over every contributor's
	// committed polynomial, of that polynomial's homomorphic evaluation at
	// idx - not any single contributor's own constant term.
	partyPubkeys := make(map[party.PartyIdx]scheme.Point, r.cfg.Mapping.N())
	for _, idx := range r.cfg.Mapping.All() {
		x := r.cfg.Scheme.ScalarFromUint64(uint64(idx))
		pk := r.cfg.Scheme.Identity()
		for _, comm := range r.acceptedCommitments {
			pk = pk.Add(comm.Evaluate(r.cfg.Scheme, x))
		}
		partyPubkeys[idx] = pk
	}

	return &Outcome{Success: &KeyShare{
		AggregatePubkey: aggregate,
		Share:           sharing.CombineShares(r.cfg.Scheme, r.receivedShares),
		PartyPubkeys:    partyPubkeys,
	}}
}

func (r *Runner) broadcastFailureOutcome(failures []verify.Failure) *Outcome {
	kind := ReasonBroadcastInconsistency
	if failures[0].Kind == verify.InsufficientMessages {
		kind = ReasonBroadcastInsufficientMessages
	}
	blamed := make([]party.PartyIdx, len(failures))
	for i, f := range failures {
		blamed[i] = f.Sender
	}
	return r.fail(kind, failures[0].Stage, blamed, fmt.Sprintf("%d sender(s) failed broadcast verification", len(failures)))
}
