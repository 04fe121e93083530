// Package safemode holds the governance-mutable retry/witnessing gates and
// reschedule margins the pipeline's on_initialize drain consults every
// block (spec.md §5, §6.7).
//
// Grounded on breacharbiter.go's contingency-pause shape: a single
// daemon-wide switch that defers a subsystem's normal per-item processing
// without dropping any of it, rather than each item tracking its own
// paused/unpaused state.
package safemode

import "sync"

// Flags are the governance-mutable safe-mode switches (spec.md §6.7).
type Flags struct {
	RetryEnabled            bool
	EgressWitnessingEnabled bool
}

// Margins are the governance-mutable reschedule distances safe mode
// applies while retry is disabled (spec.md §6.7).
type Margins struct {
	// SafeModeBlockMargin reschedules DelayedBroadcastRetryQueue entries.
	BlockMargin uint64
	// SafeModeChainBlockMargin reschedules Timeouts entries (expressed
	// in target-chain blocks, like BroadcastTimeout itself).
	ChainBlockMargin uint64
}

// DefaultFlags matches the pallet's at-genesis defaults: both retry and
// egress witnessing enabled.
func DefaultFlags() Flags {
	return Flags{RetryEnabled: true, EgressWitnessingEnabled: true}
}

// Controller gates the pipeline's per-block drain behind governance-set
// flags and margins. Safe mode never changes correctness, only scheduling
// (spec.md §9 "safe mode changes scheduling, not correctness").
type Controller struct {
	mu      sync.RWMutex
	flags   Flags
	margins Margins
}

// New constructs a Controller with the given initial margins and
// DefaultFlags.
func New(margins Margins) *Controller {
	return &Controller{flags: DefaultFlags(), margins: margins}
}

// Flags returns the current safe-mode flags.
func (c *Controller) Flags() Flags {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.flags
}

// SetFlags applies a governance update to the safe-mode flags.
func (c *Controller) SetFlags(f Flags) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.flags = f
}

// Margins returns the current reschedule margins.
func (c *Controller) Margins() Margins {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.margins
}

// SetMargins applies a governance update to the reschedule margins.
func (c *Controller) SetMargins(m Margins) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.margins = m
}

// RescheduleTimeout pushes a timed-out entry's retry forward by the
// chain-block margin, used when RetryEnabled is false (spec.md §4.5
// on_initialize step 2).
func (c *Controller) RescheduleTimeout(currentHeight uint64) uint64 {
	return currentHeight + c.Margins().ChainBlockMargin
}

// RescheduleDelayedRetry pushes a DelayedBroadcastRetryQueue entry forward
// by the block margin, used when RetryEnabled is false.
func (c *Controller) RescheduleDelayedRetry(block uint64) uint64 {
	return block + c.Margins().BlockMargin
}
