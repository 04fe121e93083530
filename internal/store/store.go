// Package store provides bbolt-backed persistence for both the ceremony
// subsystem (per-ceremony KeyShares and message transcripts) and the
// broadcast subsystem (per-chain BroadcastId lifecycle snapshots), so a
// validator process can recover its signing key material and in-flight
// broadcasts across a restart.
//
// Grounded on channeldb/db.go's bucket-per-concern layout: one top-level
// bucket per concern, nested sub-buckets keyed by a stable ID, every
// mutation wrapped in a single Update/View transaction rather than
// scattered individual bolt calls.
package store

import (
	"fmt"
	"os"
	"path/filepath"

	"go.etcd.io/bbolt"
)

const (
	dbFileName       = "validatorcore.db"
	dbFilePermission = 0600
)

var (
	bucketKeyShares   = []byte("key-shares")
	bucketTranscripts = []byte("ceremony-transcripts")
	bucketBroadcasts  = []byte("broadcast-records")
	topLevelBuckets   = [][]byte{bucketKeyShares, bucketTranscripts, bucketBroadcasts}
)

// DB is the primary datastore for the validatorcore daemon.
type DB struct {
	bolt   *bbolt.DB
	dbPath string
}

// Open opens (creating if necessary) the store at dbPath/validatorcore.db,
// ensuring every top-level bucket exists.
func Open(dbPath string) (*DB, error) {
	if err := os.MkdirAll(dbPath, 0700); err != nil {
		return nil, fmt.Errorf("store: creating db directory: %w", err)
	}

	path := filepath.Join(dbPath, dbFileName)
	bdb, err := bbolt.Open(path, dbFilePermission, nil)
	if err != nil {
		return nil, fmt.Errorf("store: opening bbolt db: %w", err)
	}

	db := &DB{bolt: bdb, dbPath: dbPath}
	if err := db.createBuckets(); err != nil {
		bdb.Close()
		return nil, err
	}
	return db, nil
}

func (d *DB) createBuckets() error {
	return d.bolt.Update(func(tx *bbolt.Tx) error {
		for _, name := range topLevelBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return fmt.Errorf("store: creating bucket %s: %w", name, err)
			}
		}
		return nil
	})
}

// Close releases the underlying bbolt file handle.
func (d *DB) Close() error {
	return d.bolt.Close()
}

// Wipe deletes every record in every bucket, atomically. Used by tests.
func (d *DB) Wipe() error {
	return d.bolt.Update(func(tx *bbolt.Tx) error {
		for _, name := range topLevelBuckets {
			if err := tx.DeleteBucket(name); err != nil && err != bbolt.ErrBucketNotFound {
				return err
			}
			if _, err := tx.CreateBucket(name); err != nil {
				return err
			}
		}
		return nil
	})
}
