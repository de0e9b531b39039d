package pagecache

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

const logPrefix = "pagecache: "

// Manager orchestrates locking, capacity accounting, eviction, and
// metadata/page-store consistency across concurrent Put/Get/Delete calls.
type Manager struct {
	stripes *stripeSet
	metaMu  sync.RWMutex

	meta    MetaStore
	store   PageStore
	evictor Evictor
	metrics MetricsRecorder
	log     *slog.Logger

	pageSizeMax int
	cacheSize   int64
}

// New constructs a Manager, reloading MetaStore and the Evictor from
// whatever the PageStore enumerates. ctx only bounds the reload walk; no
// operation inside Put/Get/Delete itself is cancellable.
func New(
	ctx context.Context,
	cfg Config,
	meta MetaStore,
	store PageStore,
	evictor Evictor,
	metrics MetricsRecorder,
	log *slog.Logger,
) (*Manager, error) {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if log == nil {
		log = slog.Default()
	}

	m := &Manager{
		stripes:     newStripeSet(cfg.LockStripes),
		meta:        meta,
		store:       store,
		evictor:     evictor,
		metrics:     metrics,
		log:         log,
		pageSizeMax: cfg.PageSizeMax,
		cacheSize:   cfg.CacheSize,
	}

	if err := m.reload(ctx); err != nil {
		closeErr := store.Close()
		if closeErr != nil {
			log.Error(logPrefix+"close during failed reload", "error", closeErr)
		}
		return nil, fmt.Errorf("pagecache: reload: %w", err)
	}

	used := m.store.Bytes()
	m.metrics.SpaceUsed(used)
	m.metrics.SpaceAvailable(m.cacheSize - used)

	return m, nil
}

func (m *Manager) reload(ctx context.Context) error {
	pages, err := m.store.Pages()
	if err != nil {
		return fmt.Errorf("enumerate page store: %w", err)
	}
	for _, info := range pages {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		m.meta.Add(info.PageID, info)
		m.evictor.UpdateOnPut(info.PageID)
	}
	return nil
}

// Put writes body under pageID. It returns false (without failing the
// process) on a soft race, a missing-victim race, or an underlying
// PageStore failure.
func (m *Manager) Put(pageID PageID, body []byte) bool {
	if len(body) > m.pageSizeMax {
		panic(fmt.Sprintf("pagecache: Put body length %d exceeds page_size_max %d", len(body), m.pageSizeMax))
	}

	idx := m.stripes.indexOf(pageID)
	lock := m.stripes.at(idx)

	// Phase A: single page lock, metadata-guided fast path.
	lock.Lock()
	m.metaMu.Lock()

	if m.meta.Has(pageID) {
		m.metaMu.Unlock()
		lock.Unlock()
		return false
	}

	enoughSpace := m.store.Bytes()+int64(len(body)) <= m.cacheSize
	if enoughSpace {
		m.meta.Add(pageID, PageInfo{PageID: pageID, PageSize: len(body)})
		m.metaMu.Unlock()

		ok := m.writeAndNotify(pageID, body)
		lock.Unlock()
		return ok
	}

	victim, haveVictim := m.evictor.Evict()
	m.metaMu.Unlock()
	lock.Unlock()

	if !haveVictim {
		return false
	}
	return m.putWithEviction(pageID, body, victim)
}

// putWithEviction is the two-page-lock path of Put: both pageID's and
// victim's stripes are acquired in ascending order, the victim is
// evicted, then the new body is written.
func (m *Manager) putWithEviction(pageID PageID, body []byte, victim PageID) bool {
	low, high, same := m.stripes.lockPair(pageID, victim)

	m.stripes.at(low).Lock()
	if !same {
		m.stripes.at(high).Lock()
	}
	defer func() {
		if !same {
			m.stripes.at(high).Unlock()
		}
		m.stripes.at(low).Unlock()
	}()

	m.metaMu.Lock()

	if m.meta.Has(pageID) {
		m.metaMu.Unlock()
		return false
	}
	if !m.meta.Has(victim) {
		// Another thread already evicted it; this implementation does not
		// pick a new victim and retry, it just fails this Put.
		m.metaMu.Unlock()
		return false
	}

	victimInfo, ok := m.meta.Remove(victim)
	if !ok {
		m.metaMu.Unlock()
		m.log.Error(logPrefix+"victim vanished between Has and Remove", "victim", victim.String())
		m.metrics.DeleteError()
		return false
	}

	enoughSpace := m.store.Bytes()-int64(victimInfo.PageSize)+int64(len(body)) <= m.cacheSize
	if enoughSpace {
		m.meta.Add(pageID, PageInfo{PageID: pageID, PageSize: len(body)})
	}
	m.metaMu.Unlock()

	if err := m.store.Delete(victim, victimInfo.PageSize); err != nil {
		m.log.Error(logPrefix+"evict delete failed", "victim", victim.String(), "error", err)
		m.metrics.DeleteError()
		// MetaStore removal already committed; the on-disk body becomes an
		// orphan until the next reload reclaims it.
		return false
	}
	m.evictor.UpdateOnDelete(victim)
	m.metrics.BytesEvicted(victimInfo.PageSize)
	m.metrics.PagesEvicted(1)
	m.updateSpaceGauges()

	if !enoughSpace {
		return false
	}
	return m.writeAndNotify(pageID, body)
}

// writeAndNotify performs the PageStore write and Evictor notification for
// a Put whose MetaStore entry has already been committed. Caller must hold
// the page write lock for pageID.
func (m *Manager) writeAndNotify(pageID PageID, body []byte) bool {
	if err := m.store.Put(pageID, body); err != nil {
		m.log.Error(logPrefix+"put failed", "page_id", pageID.String(), "error", err)
		m.metrics.PutError()
		return false
	}
	m.evictor.UpdateOnPut(pageID)
	m.metrics.BytesWritten(len(body))
	m.updateSpaceGauges()
	return true
}

// Get returns a readable stream starting at pageOffset within pageID's
// body, or ok=false if the page is not resident. pageOffset beyond
// page_size_max is a programmer error and panics rather than failing soft.
func (m *Manager) Get(pageID PageID, pageOffset int) (stream io.ReadCloser, ok bool) {
	if pageOffset < 0 || pageOffset > m.pageSizeMax {
		panic(fmt.Sprintf("pagecache: Get page_offset %d out of range [0,%d]", pageOffset, m.pageSizeMax))
	}

	idx := m.stripes.indexOf(pageID)
	lock := m.stripes.at(idx)

	lock.RLock()
	defer lock.RUnlock()

	m.metaMu.RLock()
	has := m.meta.Has(pageID)
	m.metaMu.RUnlock()

	if !has {
		return nil, false
	}

	r, err := m.store.Get(pageID, pageOffset)
	if err != nil {
		m.log.Error(logPrefix+"get failed", "page_id", pageID.String(), "error", err)
		m.metrics.GetError()
		return nil, false
	}
	m.evictor.UpdateOnGet(pageID)
	return r, true
}

// Delete removes pageID. It returns true iff the page was resident and
// both the metadata and page-store removals succeeded.
func (m *Manager) Delete(pageID PageID) bool {
	idx := m.stripes.indexOf(pageID)
	lock := m.stripes.at(idx)

	lock.Lock()
	defer lock.Unlock()

	m.metaMu.Lock()
	info, ok := m.meta.Remove(pageID)
	m.metaMu.Unlock()

	if !ok {
		m.log.Error(logPrefix+"delete of missing page", "page_id", pageID.String())
		m.metrics.DeleteError()
		return false
	}

	if err := m.store.Delete(pageID, info.PageSize); err != nil {
		m.log.Error(logPrefix+"delete failed", "page_id", pageID.String(), "error", err)
		m.metrics.DeleteError()
		return false
	}
	m.evictor.UpdateOnDelete(pageID)
	m.updateSpaceGauges()
	return true
}

// Close releases the underlying PageStore. Subsequent operations on m are
// undefined.
func (m *Manager) Close() error {
	return m.store.Close()
}

// Stats is a point-in-time snapshot of the cache's space gauges.
type Stats struct {
	SpaceAvailable int64
	SpaceUsed      int64
}

// Stats returns a cheap snapshot without touching the metrics registry.
func (m *Manager) Stats() Stats {
	used := m.store.Bytes()
	return Stats{
		SpaceAvailable: m.cacheSize - used,
		SpaceUsed:      used,
	}
}

func (m *Manager) updateSpaceGauges() {
	used := m.store.Bytes()
	m.metrics.SpaceUsed(used)
	m.metrics.SpaceAvailable(m.cacheSize - used)
}
