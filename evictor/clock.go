// Package evictor supplies pagecache.Evictor implementations. Clock is a
// CLOCK / second-chance replacement policy over arbitrary PageIDs: slots
// are assigned to PageIDs on demand from a growable free list instead of
// being preallocated per fixed-size buffer-pool frame.
package evictor

import (
	"sync"

	"github.com/tuannm99/pagecache/pagecache"
)

// Clock implements CLOCK (second-chance) replacement over PageIDs.
// Multiple page-lock stripes may notify it concurrently since I/O and
// policy notification run under per-page locks rather than a single
// global one, so Clock synchronizes itself with a single mutex.
type Clock struct {
	mu sync.Mutex

	slotOf  map[pagecache.PageID]int
	idAt    []pagecache.PageID
	ref     []bool
	present []bool

	free []int
	hand int
	size int // number of tracked (present) slots
}

// NewClock returns an empty Clock evictor.
func NewClock() *Clock {
	return &Clock{slotOf: make(map[pagecache.PageID]int)}
}

func (c *Clock) slotFor(id pagecache.PageID) int {
	if idx, ok := c.slotOf[id]; ok {
		return idx
	}
	var idx int
	if n := len(c.free); n > 0 {
		idx = c.free[n-1]
		c.free = c.free[:n-1]
		c.idAt[idx] = id
		c.present[idx] = false
		c.ref[idx] = false
	} else {
		idx = len(c.idAt)
		c.idAt = append(c.idAt, id)
		c.ref = append(c.ref, false)
		c.present = append(c.present, false)
	}
	c.slotOf[id] = idx
	return idx
}

// UpdateOnPut marks id as recently used and present.
func (c *Clock) UpdateOnPut(id pagecache.PageID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := c.slotFor(id)
	if !c.present[idx] {
		c.present[idx] = true
		c.size++
	}
	c.ref[idx] = true
}

// UpdateOnGet marks id as recently accessed (second-chance bit).
func (c *Clock) UpdateOnGet(id pagecache.PageID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx, ok := c.slotOf[id]
	if !ok || !c.present[idx] {
		return
	}
	c.ref[idx] = true
}

// UpdateOnDelete removes id from tracking, freeing its slot for reuse.
func (c *Clock) UpdateOnDelete(id pagecache.PageID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(id)
}

func (c *Clock) removeLocked(id pagecache.PageID) {
	idx, ok := c.slotOf[id]
	if !ok {
		return
	}
	if c.present[idx] {
		c.present[idx] = false
		c.size--
	}
	c.ref[idx] = false
	delete(c.slotOf, id)
	c.free = append(c.free, idx)
}

// Evict sweeps the slot ring for an unpinned-equivalent (present, not
// recently referenced) victim, giving referenced slots a second chance.
// Up to two full sweeps bound the search.
//
// Evict only peeks: it leaves the chosen slot present and tracked. The
// caller removes it from tracking with UpdateOnDelete once the delete is
// confirmed, so a caller that ends up not deleting the victim (lost a
// race to commit its own page first) doesn't leak a still-resident page
// out of the clock ring.
func (c *Clock) Evict() (pagecache.PageID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := len(c.idAt)
	if n == 0 || c.size == 0 {
		return pagecache.PageID{}, false
	}

	for range 2 * n {
		idx := c.hand
		c.hand = (c.hand + 1) % n

		if !c.present[idx] {
			continue
		}
		if !c.ref[idx] {
			return c.idAt[idx], true
		}
		c.ref[idx] = false
	}
	return pagecache.PageID{}, false
}

// Size reports the number of currently tracked pages. Diagnostic only.
func (c *Clock) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

var _ pagecache.Evictor = (*Clock)(nil)
