package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/party"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/runner"
	"github.com/chainbridge-validators/threshold-core/internal/ceremony/scheme"
	"go.etcd.io/bbolt"
)

// storedKeyShare is the wire-encodable shadow of runner.KeyShare: points and
// scalars are opaque interfaces over whichever curve library backs the
// ceremony's scheme, so only their Bytes() encoding - plus the scheme name
// needed to parse them back - is ever persisted.
type storedKeyShare struct {
	SchemeName      string            `json:"scheme"`
	AggregatePubkey []byte            `json:"aggregate_pubkey"`
	Share           []byte            `json:"share"`
	PartyPubkeys    map[uint32][]byte `json:"party_pubkeys"`
}

// SaveKeyShare persists a ceremony's successful output, keyed by an opaque
// ceremony identifier supplied by the caller (the runtime's CeremonyId).
func (d *DB) SaveKeyShare(ceremonyID string, schemeName string, ks *runner.KeyShare) error {
	pub := make(map[uint32][]byte, len(ks.PartyPubkeys))
	for idx, p := range ks.PartyPubkeys {
		pub[uint32(idx)] = p.Bytes()
	}

	raw, err := json.Marshal(storedKeyShare{
		SchemeName:      schemeName,
		AggregatePubkey: ks.AggregatePubkey.Bytes(),
		Share:           ks.Share.Bytes(),
		PartyPubkeys:    pub,
	})
	if err != nil {
		return fmt.Errorf("store: marshaling key share: %w", err)
	}

	return d.bolt.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeyShares)
		return b.Put([]byte(ceremonyID), raw)
	})
}

// LoadKeyShare reconstructs a previously saved KeyShare along with the
// scheme it was encoded under, so the caller can immediately resume signing
// with it.
func (d *DB) LoadKeyShare(ceremonyID string) (*runner.KeyShare, scheme.Scheme, error) {
	var raw []byte
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeyShares)
		v := b.Get([]byte(ceremonyID))
		if v == nil {
			return fmt.Errorf("store: no key share for ceremony %q", ceremonyID)
		}
		raw = append(raw, v...)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	var stored storedKeyShare
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, nil, fmt.Errorf("store: unmarshaling key share: %w", err)
	}

	s, err := scheme.ByName(stored.SchemeName)
	if err != nil {
		return nil, nil, fmt.Errorf("store: resolving scheme %q: %w", stored.SchemeName, err)
	}

	aggPub, err := s.PointFromBytes(stored.AggregatePubkey)
	if err != nil {
		return nil, nil, fmt.Errorf("store: parsing aggregate pubkey: %w", err)
	}
	share, err := s.ScalarFromBytes(stored.Share)
	if err != nil {
		return nil, nil, fmt.Errorf("store: parsing share: %w", err)
	}

	partyPubkeys := make(map[party.PartyIdx]scheme.Point, len(stored.PartyPubkeys))
	for idx, raw := range stored.PartyPubkeys {
		p, err := s.PointFromBytes(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("store: parsing party %d pubkey: %w", idx, err)
		}
		partyPubkeys[party.PartyIdx(idx)] = p
	}

	return &runner.KeyShare{
		AggregatePubkey: aggPub,
		Share:           share,
		PartyPubkeys:    partyPubkeys,
	}, s, nil
}

// DeleteKeyShare removes a ceremony's persisted key share, used once its
// aggregate key has been fully rotated away and governance has pruned it.
func (d *DB) DeleteKeyShare(ceremonyID string) error {
	return d.bolt.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketKeyShares).Delete([]byte(ceremonyID))
	})
}

// ListCeremonyIDs returns every ceremony ID with a persisted key share, in
// lexicographic (bbolt key) order.
func (d *DB) ListCeremonyIDs() ([]string, error) {
	var ids []string
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketKeyShares)
		return b.ForEach(func(k, _ []byte) error {
			ids = append(ids, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(ids)
	return ids, nil
}

// transcriptKey orders a ceremony's transcript bucket by arrival
// sequence alone, the way channeldb orders its indexed buckets by a
// big-endian integer prefix for correct cursor-scan order.
func transcriptKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}
