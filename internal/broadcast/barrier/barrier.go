// Package barrier implements spec.md §4.6's BroadcastBarriers: an ordered
// set of BroadcastIds that must settle before any later-numbered broadcast
// is allowed to dispatch, used to keep a key-rotation transaction from
// racing broadcasts signed under the key it replaces.
//
// Grounded on the routing package's use of an ordered min-structure over
// path state (reused here as a plain ordered min-set rather than a full
// graph) - container/heap gives the same O(log n) min-extraction without
// pulling in any routing-specific graph machinery.
package barrier

import (
	"container/heap"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
)

// Set is the ordered BroadcastBarriers set. The zero value is not usable;
// construct with New.
type Set struct {
	h      idHeap
	member map[chains.BroadcastID]struct{}
}

// New constructs an empty barrier Set.
func New() *Set {
	return &Set{member: make(map[chains.BroadcastID]struct{})}
}

// Add inserts a barrier id if it is not already present, and id is at
// least earliestPending (spec.md §4.6: "Each barrier >= the earliest
// currently-pending BroadcastId is added"). Returns false if id was
// dropped for being below earliestPending.
func (s *Set) Add(id chains.BroadcastID, earliestPending chains.BroadcastID) bool {
	if id < earliestPending {
		return false
	}
	if _, ok := s.member[id]; ok {
		return true
	}
	s.member[id] = struct{}{}
	heap.Push(&s.h, id)
	return true
}

// Min returns the smallest barrier currently set, and whether any exist.
func (s *Set) Min() (chains.BroadcastID, bool) {
	if len(s.h) == 0 {
		return 0, false
	}
	return s.h[0], true
}

// Blocks reports whether candidate must be deferred: true exactly when a
// barrier exists and candidate is strictly greater than the smallest one
// (spec.md §4.6: "any attempt to start broadcast b > min(BroadcastBarriers)
// is deferred").
func (s *Set) Blocks(candidate chains.BroadcastID) bool {
	min, ok := s.Min()
	return ok && candidate > min
}

// Prune discards every barrier smaller than every remaining pending
// broadcast, i.e. every barrier < pendingMin (spec.md §4.6: "barriers no
// longer needed... are discarded").
func (s *Set) Prune(pendingMin chains.BroadcastID) {
	var kept idHeap
	for _, id := range s.h {
		if id < pendingMin {
			delete(s.member, id)
			continue
		}
		kept = append(kept, id)
	}
	s.h = kept
	heap.Init(&s.h)
}

// Len returns the number of barriers currently held.
func (s *Set) Len() int { return len(s.h) }

type idHeap []chains.BroadcastID

func (h idHeap) Len() int            { return len(h) }
func (h idHeap) Less(i, j int) bool  { return h[i] < h[j] }
func (h idHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *idHeap) Push(x interface{}) { *h = append(*h, x.(chains.BroadcastID)) }
func (h *idHeap) Pop() interface{} {
	old := *h
	n := len(old)
	v := old[n-1]
	*h = old[:n-1]
	return v
}
