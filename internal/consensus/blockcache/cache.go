// Package blockcache implements the single-slot cell of spec.md §4.5:
// at most one locally-voted block, held exactly while that vote has not
// yet been resolved into a commit or round switch.
package blockcache

import (
	"sync/atomic"

	"synnergy-network/internal/consensus/model"
)

// Cache is a single atomic slot (spec.md §5 "Block cache: a single
// atomic slot").
type Cache struct {
	slot atomic.Pointer[model.Block]
}

// New returns an empty cache.
func New() *Cache { return &Cache{} }

// Set overwrites the cache with block.
func (c *Cache) Set(block *model.Block) { c.slot.Store(block) }

// Get returns the cached block, or nil if empty.
func (c *Cache) Get() *model.Block { return c.slot.Load() }

// Release empties the cache.
func (c *Cache) Release() { c.slot.Store(nil) }
