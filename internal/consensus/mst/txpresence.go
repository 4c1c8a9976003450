package mst

import lru "github.com/hashicorp/golang-lru/v2"

// TxStatus is the on-chain presence of a transaction, consulted before an
// inbound wire transaction is allowed into MstState (spec.md §6.1).
type TxStatus uint8

const (
	Missing TxStatus = iota
	Committed
	Rejected
)

// TxPresenceCache answers "have we already seen this tx finalized
// on-chain" so replayed committed/rejected transactions never re-enter
// MstState. It is bounded with an LRU cache rather than an unbounded map
// (grounded on the module's existing hashicorp/golang-lru dependency).
type TxPresenceCache struct {
	cache *lru.Cache[string, TxStatus]
}

// NewTxPresenceCache builds a cache holding up to size entries.
func NewTxPresenceCache(size int) *TxPresenceCache {
	c, err := lru.New[string, TxStatus](size)
	if err != nil {
		// Only returns an error for a non-positive size; fall back to a
		// minimal cache rather than panicking a gossip-critical path.
		c, _ = lru.New[string, TxStatus](1)
	}
	return &TxPresenceCache{cache: c}
}

// Status reports the known status of a tx hash, defaulting to Missing
// for hashes never recorded.
func (c *TxPresenceCache) Status(txHash string) TxStatus {
	if v, ok := c.cache.Get(txHash); ok {
		return v
	}
	return Missing
}

// MarkCommitted records that a transaction has been finalized on-chain.
func (c *TxPresenceCache) MarkCommitted(txHash string) { c.cache.Add(txHash, Committed) }

// MarkRejected records that a transaction was rejected during validation.
func (c *TxPresenceCache) MarkRejected(txHash string) { c.cache.Add(txHash, Rejected) }
