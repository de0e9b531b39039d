package pagecache_test

import (
	"bytes"
	"context"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/pagecache/evictor"
	"github.com/tuannm99/pagecache/metastore"
	"github.com/tuannm99/pagecache/pagecache"
	"github.com/tuannm99/pagecache/pagestore"
)

const (
	testPageSizeMax = 1024
	testCacheSize   = 2048
)

func newTestManager(t *testing.T) *pagecache.Manager {
	t.Helper()

	dir := t.TempDir()
	store, err := pagestore.NewLocal(dir, 0)
	require.NoError(t, err)

	m, err := pagecache.New(
		context.Background(),
		pagecache.Config{PageSizeMax: testPageSizeMax, CacheSize: testCacheSize, LockStripes: 8},
		metastore.New(),
		store,
		evictor.NewClock(),
		nil,
		nil,
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func readAll(t *testing.T, r io.ReadCloser) []byte {
	t.Helper()
	defer r.Close()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return b
}

func TestManager_PutGet_Roundtrip(t *testing.T) {
	m := newTestManager(t)

	body := bytes.Repeat([]byte{0x41}, 512)
	ok := m.Put(pagecache.PageID{FileID: "f", PageIndex: 0}, body)
	require.True(t, ok)

	r, ok := m.Get(pagecache.PageID{FileID: "f", PageIndex: 0}, 0)
	require.True(t, ok)
	require.Equal(t, body, readAll(t, r))

	require.EqualValues(t, 512, m.Stats().SpaceUsed)
}

// Filling the cache forces eviction of one resident page to make room.
func TestManager_Put_EvictsWhenFull(t *testing.T) {
	m := newTestManager(t)

	full := bytes.Repeat([]byte{0x01}, 1024)
	require.True(t, m.Put(pagecache.PageID{FileID: "f", PageIndex: 0}, full))
	require.True(t, m.Put(pagecache.PageID{FileID: "f", PageIndex: 1}, full))

	// Cache is now exactly full (2048/2048); a third page needs eviction.
	third := bytes.Repeat([]byte{0x02}, 1024)
	ok := m.Put(pagecache.PageID{FileID: "f", PageIndex: 2}, third)
	require.True(t, ok)

	_, stillThere := m.Get(pagecache.PageID{FileID: "f", PageIndex: 0}, 0)
	_, alsoThere := m.Get(pagecache.PageID{FileID: "f", PageIndex: 1}, 0)
	// Exactly one of the two original pages was evicted to make room.
	require.NotEqual(t, stillThere, alsoThere)

	r, ok := m.Get(pagecache.PageID{FileID: "f", PageIndex: 2}, 0)
	require.True(t, ok)
	require.Equal(t, third, readAll(t, r))

	require.EqualValues(t, 2048, m.Stats().SpaceUsed)
}

// Concurrent puts of the same page id: exactly one wins.
func TestManager_Put_ConcurrentSamePage_OneWins(t *testing.T) {
	m := newTestManager(t)

	id := pagecache.PageID{FileID: "g", PageIndex: 0}
	body := bytes.Repeat([]byte{0x7}, 64)

	var wg sync.WaitGroup
	results := make([]bool, 2)
	for i := range 2 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Put(id, body)
		}(i)
	}
	wg.Wait()

	require.True(t, results[0] != results[1], "exactly one put should succeed, got %v", results)
	require.EqualValues(t, 64, m.Stats().SpaceUsed)
}

// Deleting an absent page fails softly.
func TestManager_Delete_Missing(t *testing.T) {
	m := newTestManager(t)
	ok := m.Delete(pagecache.PageID{FileID: "h", PageIndex: 9})
	require.False(t, ok)
}

// Idempotence: a second put of an already-resident page id fails and does
// not alter the stored body.
func TestManager_Put_AlreadyResident_Fails(t *testing.T) {
	m := newTestManager(t)
	id := pagecache.PageID{FileID: "f", PageIndex: 0}

	require.True(t, m.Put(id, []byte("first")))
	require.False(t, m.Put(id, []byte("second-body")))

	r, ok := m.Get(id, 0)
	require.True(t, ok)
	require.Equal(t, []byte("first"), readAll(t, r))
}

// Round-trip at arbitrary offsets.
func TestManager_Get_Offset(t *testing.T) {
	m := newTestManager(t)
	id := pagecache.PageID{FileID: "f", PageIndex: 0}
	body := []byte("0123456789")
	require.True(t, m.Put(id, body))

	for k := 0; k <= len(body); k++ {
		r, ok := m.Get(id, k)
		require.True(t, ok)
		require.Equal(t, body[k:], readAll(t, r))
	}
}

func TestManager_Delete_ThenGetAbsent(t *testing.T) {
	m := newTestManager(t)
	id := pagecache.PageID{FileID: "f", PageIndex: 0}
	require.True(t, m.Put(id, []byte("x")))
	require.True(t, m.Delete(id))

	_, ok := m.Get(id, 0)
	require.False(t, ok)
	require.EqualValues(t, 0, m.Stats().SpaceUsed)
}

// Reload: reconstructing a Manager over a populated PageStore re-indexes
// every surviving page.
func TestManager_Reload_ReindexesExistingPages(t *testing.T) {
	dir := t.TempDir()

	store1, err := pagestore.NewLocal(dir, 0)
	require.NoError(t, err)
	m1, err := pagecache.New(context.Background(),
		pagecache.Config{PageSizeMax: testPageSizeMax, CacheSize: testCacheSize, LockStripes: 4},
		metastore.New(), store1, evictor.NewClock(), nil, nil)
	require.NoError(t, err)

	id := pagecache.PageID{FileID: "f", PageIndex: 0}
	require.True(t, m1.Put(id, []byte("persisted")))
	require.NoError(t, m1.Close())

	store2, err := pagestore.NewLocal(dir, 0)
	require.NoError(t, err)
	m2, err := pagecache.New(context.Background(),
		pagecache.Config{PageSizeMax: testPageSizeMax, CacheSize: testCacheSize, LockStripes: 4},
		metastore.New(), store2, evictor.NewClock(), nil, nil)
	require.NoError(t, err)
	defer m2.Close()

	r, ok := m2.Get(id, 0)
	require.True(t, ok)
	require.Equal(t, []byte("persisted"), readAll(t, r))
}

func TestManager_Get_InvalidOffsetPanics(t *testing.T) {
	m := newTestManager(t)
	require.Panics(t, func() {
		m.Get(pagecache.PageID{FileID: "f", PageIndex: 0}, testPageSizeMax+1)
	})
}

func TestManager_Put_OversizeBodyPanics(t *testing.T) {
	m := newTestManager(t)
	require.Panics(t, func() {
		m.Put(pagecache.PageID{FileID: "f", PageIndex: 0}, make([]byte, testPageSizeMax+1))
	})
}

// No deadlock under a randomized concurrent workload across many page ids.
func TestManager_ConcurrentWorkload_NoDeadlock(t *testing.T) {
	m := newTestManager(t)

	const workers = 16
	const opsPerWorker = 200

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := range opsPerWorker {
				id := pagecache.PageID{FileID: "wf", PageIndex: int64((w*opsPerWorker + i) % 10)}
				switch i % 3 {
				case 0:
					m.Put(id, []byte{byte(i)})
				case 1:
					if r, ok := m.Get(id, 0); ok {
						_, _ = io.ReadAll(r)
						r.Close()
					}
				case 2:
					m.Delete(id)
				}
			}
		}(w)
	}
	wg.Wait()

	require.LessOrEqual(t, m.Stats().SpaceUsed, int64(testCacheSize))
}
