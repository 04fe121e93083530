package chains

import (
	"fmt"
	"sync"
)

// Chain couples one target chain's crypto and transaction-building
// capabilities together, the same role chainControl plays bundling a
// chain's wallet/notifier/chainView/signer into one struct.
type Chain struct {
	ID      ChainID
	Crypto  ChainCrypto
	Builder TransactionBuilder
}

// Registry keeps track of every chain this validator core is currently
// servicing, plus which one governance has designated primary - grounded
// on chainRegistry's RWMutex-guarded map-of-chainCode shape.
type Registry struct {
	mu sync.RWMutex

	chains  map[ChainID]*Chain
	primary ChainID
	hasPrim bool
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{chains: make(map[ChainID]*Chain)}
}

// Register assigns a Chain to its ID, replacing any previous entry.
func (r *Registry) Register(c *Chain) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chains[c.ID] = c
}

// Lookup returns the Chain registered for id, if any.
func (r *Registry) Lookup(id ChainID) (*Chain, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.chains[id]
	return c, ok
}

// MustLookup is Lookup for callers that have already validated id comes
// from a registered broadcast; it panics rather than silently skip a
// chain-specific step with a nil Chain.
func (r *Registry) MustLookup(id ChainID) *Chain {
	c, ok := r.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("chains: no chain registered for %v", id))
	}
	return c
}

// SetPrimary designates id as the primary chain.
func (r *Registry) SetPrimary(id ChainID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.primary = id
	r.hasPrim = true
}

// Primary returns the primary chain id and whether one has been set.
func (r *Registry) Primary() (ChainID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.primary, r.hasPrim
}

// Active returns every registered chain id.
func (r *Registry) Active() []ChainID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]ChainID, 0, len(r.chains))
	for id := range r.chains {
		ids = append(ids, id)
	}
	return ids
}
