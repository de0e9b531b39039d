package pagecache

import "io"

// MetaStore indexes resident pages and their sizes. All operations are
// expected O(1). Thread-safety is provided externally by the Manager's
// metadata lock: implementations need not synchronize internally and must
// not hold internal locks across callbacks.
type MetaStore interface {
	Has(id PageID) bool
	Add(id PageID, info PageInfo)
	Info(id PageID) (PageInfo, bool)
	Remove(id PageID) (PageInfo, bool)
}

// PageStore is a durable key -> bytes backend with a byte counter and
// per-page I/O. Overwrites of an existing page id are disallowed.
type PageStore interface {
	Put(id PageID, body []byte) error
	Get(id PageID, offset int) (io.ReadCloser, error)
	Delete(id PageID, expectedSize int) error

	// Bytes reports the current total stored bytes. Must be monotone with
	// respect to completed Put/Delete calls.
	Bytes() int64

	// Pages enumerates every page currently stored. Invoked only at
	// construction.
	Pages() ([]PageInfo, error)

	// OverheadRatio is consulted once at construction to size the cache's
	// effective byte budget.
	OverheadRatio() float64

	Close() error
}

// Evictor is a replacement-policy oracle. Implementations may be lock-free
// internally; the Manager always re-validates a suggested victim under the
// metadata lock before acting on it.
type Evictor interface {
	UpdateOnGet(id PageID)
	UpdateOnPut(id PageID)
	UpdateOnDelete(id PageID)

	// Evict peeks at one candidate among currently tracked ids without
	// untracking it, or reports ok=false if none is available. The
	// candidate stays tracked until a subsequent UpdateOnDelete confirms
	// it was actually removed, so a caller that decides not to evict it
	// after all leaves the Evictor's bookkeeping unchanged.
	Evict() (PageID, bool)
}

// MetricsRecorder receives the side-channel counters and gauges the
// Manager emits. A nil Recorder is replaced with a no-op implementation so
// callers that don't care about metrics aren't forced to construct one.
type MetricsRecorder interface {
	BytesWritten(n int)
	BytesEvicted(n int)
	PagesEvicted(n int)
	PutError()
	GetError()
	DeleteError()
	SpaceAvailable(n int64)
	SpaceUsed(n int64)
}

type noopMetrics struct{}

func (noopMetrics) BytesWritten(int)     {}
func (noopMetrics) BytesEvicted(int)     {}
func (noopMetrics) PagesEvicted(int)     {}
func (noopMetrics) PutError()            {}
func (noopMetrics) GetError()            {}
func (noopMetrics) DeleteError()         {}
func (noopMetrics) SpaceAvailable(int64) {}
func (noopMetrics) SpaceUsed(int64)      {}
