package store

import (
	"testing"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/runner"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/wire"
	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSaveAndLoadKeyShare(t *testing.T) {
	db := openTestDB(t)
	s := scheme.NewSecp256k1()

	share, err := s.RandomScalar()
	require.NoError(t, err)
	aggPub := s.ScalarBaseMult(share)
	partyPub := s.ScalarBaseMult(share)

	ks := &runner.KeyShare{
		AggregatePubkey: aggPub,
		Share:           share,
		PartyPubkeys:    map[party.PartyIdx]scheme.Point{1: partyPub, 2: partyPub},
	}

	require.NoError(t, db.SaveKeyShare("ceremony-1", "secp256k1", ks))

	loaded, loadedScheme, err := db.LoadKeyShare("ceremony-1")
	require.NoError(t, err)
	require.Equal(t, "secp256k1", loadedScheme.Name())
	require.True(t, loaded.AggregatePubkey.Equal(aggPub))
	require.True(t, loaded.Share.Equal(share))
	require.Len(t, loaded.PartyPubkeys, 2)
	require.True(t, loaded.PartyPubkeys[1].Equal(partyPub))
}

func TestLoadKeyShareMissingReturnsError(t *testing.T) {
	db := openTestDB(t)
	_, _, err := db.LoadKeyShare("does-not-exist")
	require.Error(t, err)
}

func TestDeleteKeyShareAndListCeremonyIDs(t *testing.T) {
	db := openTestDB(t)
	s := scheme.NewEd25519()
	share, err := s.RandomScalar()
	require.NoError(t, err)
	pub := s.ScalarBaseMult(share)
	ks := &runner.KeyShare{AggregatePubkey: pub, Share: share, PartyPubkeys: map[party.PartyIdx]scheme.Point{1: pub}}

	require.NoError(t, db.SaveKeyShare("c-a", "ed25519", ks))
	require.NoError(t, db.SaveKeyShare("c-b", "ed25519", ks))

	ids, err := db.ListCeremonyIDs()
	require.NoError(t, err)
	require.Equal(t, []string{"c-a", "c-b"}, ids)

	require.NoError(t, db.DeleteKeyShare("c-a"))
	ids, err = db.ListCeremonyIDs()
	require.NoError(t, err)
	require.Equal(t, []string{"c-b"}, ids)
}

func TestTranscriptRoundTripPreservesOrder(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.AppendTranscriptMessage("c-1", wire.StagePubkeyShares0, 1, []byte("first")))
	require.NoError(t, db.AppendTranscriptMessage("c-1", wire.StagePubkeyShares0, 2, []byte("second")))

	stages, payloads, err := db.LoadTranscript("c-1")
	require.NoError(t, err)
	require.Equal(t, [][]byte{[]byte("first"), []byte("second")}, payloads)
	require.Equal(t, []wire.StageID{wire.StagePubkeyShares0, wire.StagePubkeyShares0}, stages)

	require.NoError(t, db.DeleteTranscript("c-1"))
	stages, payloads, err = db.LoadTranscript("c-1")
	require.NoError(t, err)
	require.Empty(t, stages)
	require.Empty(t, payloads)
}

func TestBroadcastSnapshotRoundTrip(t *testing.T) {
	db := openTestDB(t)
	snap := BroadcastSnapshot{
		ID:        7,
		Chain:     chains.Ethereum,
		Pending:   true,
		Attempts:  2,
		CreatedAt: 100,
		Failed:    []chains.AccountID{{1}, {2}},
	}
	require.NoError(t, db.SaveBroadcastSnapshot(snap))

	loaded, err := db.LoadBroadcastSnapshots(chains.Ethereum)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	require.Equal(t, snap.ID, loaded[0].ID)
	require.Equal(t, snap.Attempts, loaded[0].Attempts)

	require.NoError(t, db.DeleteBroadcastSnapshot(chains.Ethereum, 7))
	loaded, err = db.LoadBroadcastSnapshots(chains.Ethereum)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestWipeClearsAllBuckets(t *testing.T) {
	db := openTestDB(t)
	s := scheme.NewSecp256k1()
	share, err := s.RandomScalar()
	require.NoError(t, err)
	pub := s.ScalarBaseMult(share)
	ks := &runner.KeyShare{AggregatePubkey: pub, Share: share, PartyPubkeys: map[party.PartyIdx]scheme.Point{1: pub}}
	require.NoError(t, db.SaveKeyShare("c-1", "secp256k1", ks))
	require.NoError(t, db.SaveBroadcastSnapshot(BroadcastSnapshot{ID: 1, Chain: chains.Bitcoin}))

	require.NoError(t, db.Wipe())

	ids, err := db.ListCeremonyIDs()
	require.NoError(t, err)
	require.Empty(t, ids)

	snaps, err := db.LoadBroadcastSnapshots(chains.Bitcoin)
	require.NoError(t, err)
	require.Empty(t, snaps)
}
