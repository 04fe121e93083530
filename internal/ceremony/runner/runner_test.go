package runner

import (
	"crypto/rand"
	"testing"
	"time"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/commitment"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/sharing"
	"github.com/chainbridge-validators/threshold-core/internal/clog"
	"github.com/lightningnetwork/lnd/clock"
	"github.com/stretchr/testify/require"
)

func newTestAccounts(t *testing.T, n int) []party.AccountId {
	accounts := make([]party.AccountId, n)
	for i := range accounts {
		_, err := rand.Read(accounts[i][:])
		require.NoError(t, err)
	}
	return accounts
}

// newTestRunner builds one party's Config/Runner for a fresh keygen ceremony
// over the given mapping, with X25519 keys taken from privs and pubs.
func newTestRunner(t *testing.T, s scheme.Scheme, mapping *party.Mapping, self party.PartyIdx, timeout time.Duration, privs, pubs map[party.PartyIdx][32]byte) *Runner {
	peerPubs := make(map[party.PartyIdx][32]byte, mapping.N()-1)
	for _, j := range mapping.Others(self) {
		peerPubs[j] = pubs[j]
	}
	cfg := Config{
		Scheme:         s,
		Mapping:        mapping,
		Self:           self,
		StageTimeout:   timeout,
		Clock:          clock.NewDefaultClock(),
		SelfX25519Priv: privs[self],
		PeerX25519Pub:  peerPubs,
	}
	r, err := New(cfg, clog.Logger(clog.SubsystemCeremony))
	require.NoError(t, err)
	return r
}

func newX25519Keys(t *testing.T, mapping *party.Mapping) (privs, pubs map[party.PartyIdx][32]byte) {
	privs = make(map[party.PartyIdx][32]byte, mapping.N())
	pubs = make(map[party.PartyIdx][32]byte, mapping.N())
	for _, idx := range mapping.All() {
		var priv [32]byte
		_, err := rand.Read(priv[:])
		require.NoError(t, err)
		pub, err := sharing.X25519PublicFromPrivate(priv)
		require.NoError(t, err)
		privs[idx] = priv
		pubs[idx] = pub
	}
	return privs, pubs
}

// deliverTo routes each outgoing message to its recipient's Runner, if that
// recipient has a Runner in the active set and is currently running. A
// missing or not-yet-started recipient silently drops the message, modeling
// an offline or crashed party.
func deliverTo(t *testing.T, active map[party.PartyIdx]*Runner, msgs []OutgoingMessage) {
	for _, m := range msgs {
		r, ok := active[m.To]
		if !ok || r.State() != StateRunning {
			continue
		}
		require.NoError(t, r.Deliver(m.Env))
	}
}

// runCeremony drives every active runner's Start/Tick loop to a terminal
// state, advancing the simulated clock well past stageTimeout every round so
// a stage missing some of its expected senders still resolves via timeout
// instead of stalling forever.
func runCeremony(t *testing.T, active map[party.PartyIdx]*Runner, stageTimeout time.Duration, maxRounds int) {
	now := time.Now()
	// Every participant must finish Start (and so reach StateRunning) before
	// any Start-phase message is delivered - otherwise a message addressed
	// to a not-yet-started peer would be dropped as if that peer were
	// offline, which isn't what this loop means to simulate.
	var startMsgs []OutgoingMessage
	for _, r := range active {
		msgs, err := r.Start(now)
		require.NoError(t, err)
		startMsgs = append(startMsgs, msgs...)
	}
	deliverTo(t, active, startMsgs)

	for round := 0; round < maxRounds; round++ {
		now = now.Add(2 * stageTimeout)

		anyRunning := false
		for _, r := range active {
			if r.State() != StateRunning {
				continue
			}
			anyRunning = true
			msgs, _, err := r.Tick(now)
			require.NoError(t, err)
			deliverTo(t, active, msgs)
		}
		if !anyRunning {
			return
		}
	}
}

func TestHonestKeygenReachesConsistentSuccess(t *testing.T) {
	for _, s := range []scheme.Scheme{scheme.NewSecp256k1(), scheme.NewEd25519()} {
		s := s
		t.Run(s.Name(), func(t *testing.T) {
			const n = 4
			mapping, err := party.NewMapping(newTestAccounts(t, n))
			require.NoError(t, err)
			privs, pubs := newX25519Keys(t, mapping)

			const timeout = time.Second
			active := make(map[party.PartyIdx]*Runner, n)
			for _, idx := range mapping.All() {
				active[idx] = newTestRunner(t, s, mapping, idx, timeout, privs, pubs)
			}

			runCeremony(t, active, timeout, 20)

			var aggregate scheme.Point
			for _, idx := range mapping.All() {
				r := active[idx]
				require.Equal(t, StateSuccess, r.State(), "party %d", idx)
				outcome := r.Outcome()
				require.NotNil(t, outcome)
				require.NotNil(t, outcome.Success)

				if aggregate == nil {
					aggregate = outcome.Success.AggregatePubkey
				} else {
					require.True(t, aggregate.Equal(outcome.Success.AggregatePubkey), "party %d disagrees on aggregate pubkey", idx)
				}

				// x_i*G must equal the published per-party verification key.
				require.True(t, s.ScalarBaseMult(outcome.Success.Share).Equal(outcome.Success.PartyPubkeys[idx]),
					"party %d's share is inconsistent with its own verification key", idx)
			}
		})
	}
}

func TestKeygenFailsWithInsufficientMessagesWhenAPartyNeverStarts(t *testing.T) {
	s := scheme.NewSecp256k1()
	const n = 3
	mapping, err := party.NewMapping(newTestAccounts(t, n))
	require.NoError(t, err)
	privs, pubs := newX25519Keys(t, mapping)

	const timeout = time.Second

	// Party 1 is never constructed as an active participant: it neither
	// starts nor ever delivers anything, modeling a crash before the
	// ceremony begins.
	active := make(map[party.PartyIdx]*Runner, 2)
	for _, idx := range []party.PartyIdx{2, 3} {
		active[idx] = newTestRunner(t, s, mapping, idx, timeout, privs, pubs)
	}

	runCeremony(t, active, timeout, 20)

	for _, idx := range []party.PartyIdx{2, 3} {
		r := active[idx]
		require.Equal(t, StateFailure, r.State(), "party %d", idx)
		outcome := r.Outcome()
		require.NotNil(t, outcome)
		require.NotNil(t, outcome.Failure)
		require.Equal(t, ReasonBroadcastInsufficientMessages, outcome.Failure.Reason.Kind)
		require.Contains(t, outcome.Failure.Blamed, party.PartyIdx(1))
	}
}

func TestEncodeDecodeHashClaimsRoundTrip(t *testing.T) {
	claims := map[party.PartyIdx]commitment.HashDigest{
		1: {0x01, 0x02},
		2: {0xff},
	}
	raw := encodeHashClaims(claims)
	decoded, err := decodeHashClaims(raw)
	require.NoError(t, err)
	require.Equal(t, claims, decoded)
}

func TestEncodeDecodeBlameClaimsRoundTrip(t *testing.T) {
	s := scheme.NewSecp256k1()
	s1, err := s.RandomScalar()
	require.NoError(t, err)
	s2, err := s.RandomScalar()
	require.NoError(t, err)

	claims := map[party.PartyIdx]map[party.PartyIdx]scheme.Scalar{
		3: {1: s1, 2: s2},
	}
	raw := encodeBlameClaims(claims)
	decoded, err := decodeBlameClaims(s, raw)
	require.NoError(t, err)
	require.True(t, shareMapEqual(claims[3], decoded[3]))
}

func TestEncodeDecodeComplaintClaimsRoundTrip(t *testing.T) {
	claims := map[party.PartyIdx][]party.PartyIdx{
		1: {3, 2},
		2: {3},
	}
	raw := encodeComplaintClaims(claims)
	decoded, err := decodeComplaintClaims(raw)
	require.NoError(t, err)
	require.True(t, idxSliceEqual(claims[1], decoded[1]))
	require.True(t, idxSliceEqual(claims[2], decoded[2]))
}
