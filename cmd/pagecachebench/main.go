// Command pagecachebench is a manual driver for the page cache: a
// hand-rolled concurrent workload, no test framework, useful for
// eyeballing behavior during development.
package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"sync"

	"github.com/tuannm99/pagecache/evictor"
	"github.com/tuannm99/pagecache/metastore"
	"github.com/tuannm99/pagecache/pagecache"
	"github.com/tuannm99/pagecache/pagestore"
)

func main() {
	dir, err := os.MkdirTemp("", "pagecachebench-*")
	if err != nil {
		fmt.Println("mkdtemp:", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	store, err := pagestore.NewLocal(dir, 0.1)
	if err != nil {
		fmt.Println("new page store:", err)
		os.Exit(1)
	}

	cacheSize := pagecache.ComputeCacheSize(8<<20, store.OverheadRatio())
	m, err := pagecache.New(
		context.Background(),
		pagecache.Config{PageSizeMax: 64 << 10, CacheSize: cacheSize, LockStripes: pagecache.DefaultLockStripes},
		metastore.New(),
		store,
		evictor.NewClock(),
		nil,
		nil,
	)
	if err != nil {
		fmt.Println("new manager:", err)
		os.Exit(1)
	}
	defer m.Close()

	const workers = 8
	const opsPerWorker = 2000

	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rnd := rand.New(rand.NewSource(seed))
			body := make([]byte, 4096)
			for range opsPerWorker {
				id := pagecache.PageID{FileID: "bench", PageIndex: rnd.Int63n(4096)}
				switch rnd.Intn(3) {
				case 0:
					m.Put(id, body)
				case 1:
					if r, ok := m.Get(id, 0); ok {
						r.Close()
					}
				case 2:
					m.Delete(id)
				}
			}
		}(int64(w))
	}
	wg.Wait()

	stats := m.Stats()
	fmt.Printf("space_used=%d space_available=%d\n", stats.SpaceUsed, stats.SpaceAvailable)
}
