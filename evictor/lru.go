package evictor

import (
	"container/list"
	"sync"

	"github.com/tuannm99/pagecache/pagecache"
)

// LRU is a classic least-recently-used Evictor built on container/list (a
// doubly-linked list plus a map[PageID]*list.Element for O(1) touch).
// LRU and Clock are interchangeable behind the same interface, so a host
// can swap replacement policy purely through construction.
type LRU struct {
	mu sync.Mutex

	list    *list.List
	entries map[pagecache.PageID]*list.Element
}

// NewLRU returns an empty LRU evictor.
func NewLRU() *LRU {
	return &LRU{
		list:    list.New(),
		entries: make(map[pagecache.PageID]*list.Element),
	}
}

func (l *LRU) touch(id pagecache.PageID) {
	if elem, ok := l.entries[id]; ok {
		l.list.MoveToFront(elem)
		return
	}
	elem := l.list.PushFront(id)
	l.entries[id] = elem
}

func (l *LRU) UpdateOnPut(id pagecache.PageID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.touch(id)
}

func (l *LRU) UpdateOnGet(id pagecache.PageID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.entries[id]; ok {
		l.touch(id)
	}
}

func (l *LRU) UpdateOnDelete(id pagecache.PageID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if elem, ok := l.entries[id]; ok {
		l.list.Remove(elem)
		delete(l.entries, id)
	}
}

// Evict returns the least-recently-used tracked page without untracking
// it. The caller removes it from tracking with UpdateOnDelete once the
// delete is confirmed, so a page that survives (the caller aborts without
// deleting it) stays evictable on a later call instead of silently
// dropping off the back of the list forever.
func (l *LRU) Evict() (pagecache.PageID, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	back := l.list.Back()
	if back == nil {
		return pagecache.PageID{}, false
	}
	return back.Value.(pagecache.PageID), true
}

// Size reports the number of currently tracked pages. Diagnostic only.
func (l *LRU) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.list.Len()
}

var _ pagecache.Evictor = (*LRU)(nil)
