// Package metastore provides the in-memory MetaStore implementation used
// by pagecache.Manager: a flat lookup table from page identity to its
// recorded size.
package metastore

import "github.com/tuannm99/pagecache/pagecache"

// Map is a plain map-backed MetaStore. It performs no internal locking:
// pagecache.Manager guards every call with its metadata RWMutex, so
// concurrent access is the caller's responsibility.
type Map struct {
	entries map[pagecache.PageID]pagecache.PageInfo
}

// New returns an empty Map.
func New() *Map {
	return &Map{entries: make(map[pagecache.PageID]pagecache.PageInfo)}
}

func (m *Map) Has(id pagecache.PageID) bool {
	_, ok := m.entries[id]
	return ok
}

func (m *Map) Add(id pagecache.PageID, info pagecache.PageInfo) {
	m.entries[id] = info
}

func (m *Map) Info(id pagecache.PageID) (pagecache.PageInfo, bool) {
	info, ok := m.entries[id]
	return info, ok
}

func (m *Map) Remove(id pagecache.PageID) (pagecache.PageInfo, bool) {
	info, ok := m.entries[id]
	if !ok {
		return pagecache.PageInfo{}, false
	}
	delete(m.entries, id)
	return info, true
}

// Len reports the number of resident pages. Convenience for tests and
// diagnostics; not part of the pagecache.MetaStore contract.
func (m *Map) Len() int {
	return len(m.entries)
}
