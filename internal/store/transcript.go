package store

import (
	"encoding/binary"
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/ceremony/wire"
	"go.etcd.io/bbolt"
)

// transcriptEntry is one recorded wire envelope, kept for audit/replay and
// for the blame/adjudication path (spec.md §4.3 needs to re-examine a
// specific party's prior broadcast to settle a complaint).
type transcriptEntry struct {
	Stage wire.StageID
	From  uint32
	Raw   []byte
}

// AppendTranscriptMessage records one inbound or outbound envelope for a
// ceremony, ordered by arrival. Nested per-ceremony sub-buckets mirror
// channeldb's "top bucket keyed by concern, sub-bucket keyed by ID" layout.
func (d *DB) AppendTranscriptMessage(ceremonyID string, stage wire.StageID, from uint32, raw []byte) error {
	return d.bolt.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket(bucketTranscripts)
		sub, err := top.CreateBucketIfNotExists([]byte(ceremonyID))
		if err != nil {
			return fmt.Errorf("store: creating transcript bucket for %q: %w", ceremonyID, err)
		}

		seq, err := sub.NextSequence()
		if err != nil {
			return err
		}

		entry := transcriptEntry{Stage: stage, From: from, Raw: raw}
		encoded, err := encodeTranscriptEntry(entry)
		if err != nil {
			return err
		}
		return sub.Put(transcriptKey(seq), encoded)
	})
}

// LoadTranscript returns every recorded envelope for a ceremony, in arrival
// order.
func (d *DB) LoadTranscript(ceremonyID string) ([]wire.StageID, [][]byte, error) {
	var stages []wire.StageID
	var payloads [][]byte

	err := d.bolt.View(func(tx *bbolt.Tx) error {
		top := tx.Bucket(bucketTranscripts)
		sub := top.Bucket([]byte(ceremonyID))
		if sub == nil {
			return nil
		}
		return sub.ForEach(func(_, v []byte) error {
			entry, err := decodeTranscriptEntry(v)
			if err != nil {
				return err
			}
			stages = append(stages, entry.Stage)
			payloads = append(payloads, entry.Raw)
			return nil
		})
	})
	return stages, payloads, err
}

// DeleteTranscript purges a ceremony's entire recorded transcript, called
// once its KeyShare (success) or FailureResult (failure) has been durably
// recorded elsewhere.
func (d *DB) DeleteTranscript(ceremonyID string) error {
	return d.bolt.Update(func(tx *bbolt.Tx) error {
		err := tx.Bucket(bucketTranscripts).DeleteBucket([]byte(ceremonyID))
		if err != nil && err != bbolt.ErrBucketNotFound {
			return err
		}
		return nil
	})
}

// encodeTranscriptEntry uses a fixed-width header (stage, from) followed by
// the raw envelope bytes, avoiding a JSON/gob dependency for what is, on
// the wire, already an opaque byte payload.
func encodeTranscriptEntry(e transcriptEntry) ([]byte, error) {
	buf := make([]byte, 5+len(e.Raw))
	buf[0] = byte(e.Stage)
	binary.BigEndian.PutUint32(buf[1:5], e.From)
	copy(buf[5:], e.Raw)
	return buf, nil
}

func decodeTranscriptEntry(b []byte) (transcriptEntry, error) {
	if len(b) < 5 {
		return transcriptEntry{}, fmt.Errorf("store: truncated transcript entry (%d bytes)", len(b))
	}
	raw := make([]byte, len(b)-5)
	copy(raw, b[5:])
	return transcriptEntry{
		Stage: wire.StageID(b[0]),
		From:  binary.BigEndian.Uint32(b[1:5]),
		Raw:   raw,
	}, nil
}
