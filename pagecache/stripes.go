package pagecache

import (
	"encoding/binary"
	"hash/maphash"
	"sync"
)

// DefaultLockStripes is the suggested page-lock stripe count. Making it
// configurable per Manager (rather than a package-wide constant) lets
// tests exercise collision behavior with a tiny stripe count.
const DefaultLockStripes = 1024

// stripeSet is the fixed-size array of page-level read/write locks. The
// stripe for a page is hash(file_id, page_index) mod len(locks), spreading
// keys evenly across a fixed array regardless of file identity or offset.
type stripeSet struct {
	seed  maphash.Seed
	locks []sync.RWMutex
}

func newStripeSet(n int) *stripeSet {
	if n <= 0 {
		n = DefaultLockStripes
	}
	return &stripeSet{
		seed:  maphash.MakeSeed(),
		locks: make([]sync.RWMutex, n),
	}
}

func (s *stripeSet) len() int { return len(s.locks) }

// indexOf computes the stripe index for a page id.
func (s *stripeSet) indexOf(id PageID) int {
	var h maphash.Hash
	h.SetSeed(s.seed)
	_, _ = h.WriteString(id.FileID)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(id.PageIndex))
	_, _ = h.Write(buf[:])
	return int(h.Sum64() % uint64(len(s.locks)))
}

func (s *stripeSet) at(idx int) *sync.RWMutex { return &s.locks[idx] }

// lockPair returns the two distinct stripe indices for a and b in
// ascending order, or a single index twice if they collide. Callers must
// acquire in the returned order and release in reverse to avoid
// deadlocking against another goroutine locking the same pair.
func (s *stripeSet) lockPair(a, b PageID) (low, high int, same bool) {
	ia, ib := s.indexOf(a), s.indexOf(b)
	if ia == ib {
		return ia, ia, true
	}
	if ia < ib {
		return ia, ib, false
	}
	return ib, ia, false
}
