package pipeline

import (
	"sort"

	"github.com/chainbridge-validators/threshold-core/internal/chains"
	"github.com/chainbridge-validators/threshold-core/internal/events"
)

// OnInitialize advances the pipeline to the given target-chain height and
// drains the Timeouts set and DelayedBroadcastRetryQueue for every block up
// to and including it (spec.md §4.5 on_initialize). Safe mode governs only
// whether a due entry is retried now or rescheduled (spec.md §5, §9); it
// never drops work.
func (p *Pipeline) OnInitialize(height uint64) {
	p.mu.Lock()
	p.currentHeight = height
	p.mu.Unlock()

	p.drainTimeouts(height)
	p.drainRetryQueue(height)
}

// drainTimeouts implements on_initialize step 2: every Timeouts entry due
// at or before height either triggers handle_broadcast_failure or, while
// RetryEnabled is false, is pushed out by ChainBlockMargin.
func (p *Pipeline) drainTimeouts(height uint64) {
	for {
		p.mu.Lock()
		idx := -1
		for i, t := range p.timeouts {
			if t.expiry <= height {
				idx = i
				break
			}
		}
		if idx < 0 {
			p.mu.Unlock()
			return
		}
		entry := p.timeouts[idx]
		p.timeouts = append(p.timeouts[:idx], p.timeouts[idx+1:]...)
		retryEnabled := p.safeMode == nil || p.safeMode.Flags().RetryEnabled
		p.mu.Unlock()

		if !retryEnabled {
			newExpiry := p.safeMode.RescheduleTimeout(height)
			p.mu.Lock()
			p.timeouts = append(p.timeouts, timeoutEntry{expiry: newExpiry, id: entry.id, nominee: entry.nominee})
			p.mu.Unlock()
			continue
		}

		p.sink.Emit(events.BroadcastTimeout{BroadcastID: entry.id, Nominee: entry.nominee})
		p.handleBroadcastFailure(entry.id, entry.nominee)
	}
}

// handleBroadcastFailure marks the timed-out nominee failed and, barring
// full-authority exhaustion, starts the next attempt immediately.
func (p *Pipeline) handleBroadcastFailure(id chains.BroadcastID, nominee chains.AccountID) {
	p.mu.Lock()
	r, ok := p.records[id]
	if !ok || !r.pending {
		p.mu.Unlock()
		return
	}
	r.failed[nominee] = struct{}{}
	allFailed := len(r.failed) == len(p.authoritySet)
	p.mu.Unlock()

	if allFailed {
		p.abortBroadcast(id)
		return
	}
	p.startNextBroadcastAttempt(id)
}

// drainRetryQueue implements on_initialize step 3: every
// DelayedBroadcastRetryQueue entry due at or before height either starts
// its next attempt or, while RetryEnabled is false, is pushed out by
// BlockMargin. A broadcast blocked by an unresolved rotation barrier is
// deferred one block at a time rather than dropped (spec.md §4.6).
func (p *Pipeline) drainRetryQueue(height uint64) {
	p.mu.Lock()
	var blocks []uint64
	for block := range p.delayedRetryQueue {
		if block <= height {
			blocks = append(blocks, block)
		}
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i] < blocks[j] })
	var due []chains.BroadcastID
	for _, block := range blocks {
		due = append(due, p.delayedRetryQueue[block]...)
		delete(p.delayedRetryQueue, block)
	}
	retryEnabled := p.safeMode == nil || p.safeMode.Flags().RetryEnabled
	p.mu.Unlock()

	if !retryEnabled {
		newBlock := p.safeMode.RescheduleDelayedRetry(height)
		p.mu.Lock()
		p.delayedRetryQueue[newBlock] = append(p.delayedRetryQueue[newBlock], due...)
		p.mu.Unlock()
		return
	}

	for _, id := range due {
		p.mu.Lock()
		blocked := p.barriers.Blocks(id)
		p.mu.Unlock()
		if blocked {
			p.mu.Lock()
			p.delayedRetryQueue[height+1] = append(p.delayedRetryQueue[height+1], id)
			p.mu.Unlock()
			continue
		}
		p.startNextBroadcastAttempt(id)
	}
}
