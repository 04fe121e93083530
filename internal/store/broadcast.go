package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"go.etcd.io/bbolt"
)

// BroadcastSnapshot is the persisted shadow of a pipeline record: enough to
// rebuild PendingBroadcasts/AwaitingBroadcast/TransactionMetadata/
// FailedBroadcasters membership for a BroadcastId after a process restart.
// It deliberately does not carry the unsigned/signed ApiCall or any
// callback closures - those are runtime-supplied and are re-attached by the
// caller when it replays ThresholdSignAndBroadcast(WithCallback) for any
// BroadcastId this snapshot reports as still pending.
type BroadcastSnapshot struct {
	ID        chains.BroadcastID        `json:"id"`
	Chain     chains.ChainID            `json:"chain"`
	Pending   bool                      `json:"pending"`
	Aborted   bool                      `json:"aborted"`
	Attempts  uint32                    `json:"attempts"`
	CreatedAt uint64                    `json:"created_at"`
	Failed    []chains.AccountID        `json:"failed,omitempty"`
	TxOutIDs  []chains.TransactionOutID `json:"tx_out_ids,omitempty"`
}

func broadcastBucketName(chain chains.ChainID) []byte {
	return []byte(fmt.Sprintf("chain-%d", uint32(chain)))
}

func broadcastKey(id chains.BroadcastID) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, uint64(id))
	return key
}

// SaveBroadcastSnapshot upserts one chain's BroadcastId snapshot.
func (d *DB) SaveBroadcastSnapshot(snap BroadcastSnapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: marshaling broadcast snapshot: %w", err)
	}

	return d.bolt.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket(bucketBroadcasts)
		sub, err := top.CreateBucketIfNotExists(broadcastBucketName(snap.Chain))
		if err != nil {
			return err
		}
		return sub.Put(broadcastKey(snap.ID), raw)
	})
}

// DeleteBroadcastSnapshot removes one chain's BroadcastId snapshot, called
// alongside ExpireBroadcast/transaction_succeeded's in-memory cleanup.
func (d *DB) DeleteBroadcastSnapshot(chain chains.ChainID, id chains.BroadcastID) error {
	return d.bolt.Update(func(tx *bbolt.Tx) error {
		top := tx.Bucket(bucketBroadcasts)
		sub := top.Bucket(broadcastBucketName(chain))
		if sub == nil {
			return nil
		}
		return sub.Delete(broadcastKey(id))
	})
}

// LoadBroadcastSnapshots returns every persisted snapshot for a chain, used
// at startup to rebuild the in-memory Pipeline state.
func (d *DB) LoadBroadcastSnapshots(chain chains.ChainID) ([]BroadcastSnapshot, error) {
	var out []BroadcastSnapshot
	err := d.bolt.View(func(tx *bbolt.Tx) error {
		top := tx.Bucket(bucketBroadcasts)
		sub := top.Bucket(broadcastBucketName(chain))
		if sub == nil {
			return nil
		}
		return sub.ForEach(func(_, v []byte) error {
			var snap BroadcastSnapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				return err
			}
			out = append(out, snap)
			return nil
		})
	})
	return out, err
}
