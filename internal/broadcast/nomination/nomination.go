// Package nomination selects a single nominee validator for a broadcast
// attempt: deterministic in (seed, exclusion set, authority set), so every
// node reaches the same answer independently (spec.md §4.4).
//
// Grounded on routing/pathfind_test.go's deterministic-selection test
// harness shape (derive an index from a seed rather than draw from a live
// RNG) and channeldb/graph.go's practice of always iterating a node set in
// a stable sorted order before anything seed-dependent touches it, so the
// seed's meaning doesn't drift with map iteration order.
package nomination

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"sort"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
)

// Seed is the nomination randomness source. For a fresh broadcast attempt
// it is derived from (BroadcastId, current_block_number) per spec.md §4.4.
type Seed []byte

// ForBroadcastAttempt builds the seed spec.md §4.4 specifies for broadcast
// retries: (BroadcastId, current_block_number).
func ForBroadcastAttempt(id chains.BroadcastID, blockNumber uint64) Seed {
	var buf [16]byte
	binary.BigEndian.PutUint64(buf[:8], uint64(id))
	binary.BigEndian.PutUint64(buf[8:], blockNumber)
	return buf[:]
}

// Nominate deterministically picks one validator from authoritySet,
// excluding any in excluded. Returns ok=false if every authority is
// excluded.
func Nominate(seed Seed, authoritySet []chains.AccountID, excluded map[chains.AccountID]struct{}) (chains.AccountID, bool) {
	eligible := make([]chains.AccountID, 0, len(authoritySet))
	for _, a := range authoritySet {
		if _, out := excluded[a]; out {
			continue
		}
		eligible = append(eligible, a)
	}
	if len(eligible) == 0 {
		var zero chains.AccountID
		return zero, false
	}

	// Sort first so the chosen index depends only on (seed, eligible
	// set), never on the caller's slice order.
	sort.Slice(eligible, func(i, j int) bool {
		return bytes.Compare(eligible[i][:], eligible[j][:]) < 0
	})

	h := sha256.Sum256(seed)
	idx := binary.BigEndian.Uint64(h[:8]) % uint64(len(eligible))
	return eligible[idx], true
}
