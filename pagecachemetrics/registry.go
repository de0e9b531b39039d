// Package pagecachemetrics wires pagecache.MetricsRecorder to Prometheus:
// bytes written, bytes evicted, put/get/delete errors, and space gauges,
// all via github.com/prometheus/client_golang/prometheus counters and
// gauges.
package pagecachemetrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/tuannm99/pagecache/pagecache"
)

// Registry implements pagecache.MetricsRecorder. It accepts a
// prometheus.Registerer at construction rather than reaching into the
// global default registry, so a host can run more than one cache with
// independently scoped metrics.
type Registry struct {
	bytesWritten   prometheus.Counter
	bytesEvicted   prometheus.Counter
	pagesEvicted   prometheus.Counter
	putErrors      prometheus.Counter
	getErrors      prometheus.Counter
	deleteErrors   prometheus.Counter
	spaceAvailable prometheus.Gauge
	spaceUsed      prometheus.Gauge
}

// New creates and registers the page cache's metric family under reg. If
// reg is nil, a fresh un-registered prometheus.Registry is used so callers
// that just want Collect()-able metrics without a global registry still
// get a working Registry.
func New(reg prometheus.Registerer) *Registry {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	r := &Registry{
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bytes_written_cache",
			Help: "Bytes successfully written to the page store.",
		}),
		bytesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bytes_evicted_cache",
			Help: "Bytes removed from the page store by eviction.",
		}),
		pagesEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pages_evicted_cache",
			Help: "Pages removed from the page store by eviction.",
		}),
		putErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "put_errors",
			Help: "Underlying page store failures on put.",
		}),
		getErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "get_errors",
			Help: "Underlying page store failures on get.",
		}),
		deleteErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "delete_errors",
			Help: "Underlying page store failures, or missing-on-remove races, on delete.",
		}),
		spaceAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "space_available",
			Help: "cache_size minus PageStore.Bytes().",
		}),
		spaceUsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "space_used",
			Help: "Current PageStore.Bytes().",
		}),
	}

	reg.MustRegister(
		r.bytesWritten, r.bytesEvicted, r.pagesEvicted,
		r.putErrors, r.getErrors, r.deleteErrors,
		r.spaceAvailable, r.spaceUsed,
	)
	return r
}

func (r *Registry) BytesWritten(n int)     { r.bytesWritten.Add(float64(n)) }
func (r *Registry) BytesEvicted(n int)     { r.bytesEvicted.Add(float64(n)) }
func (r *Registry) PagesEvicted(n int)     { r.pagesEvicted.Add(float64(n)) }
func (r *Registry) PutError()              { r.putErrors.Inc() }
func (r *Registry) GetError()              { r.getErrors.Inc() }
func (r *Registry) DeleteError()           { r.deleteErrors.Inc() }
func (r *Registry) SpaceAvailable(n int64) { r.spaceAvailable.Set(float64(n)) }
func (r *Registry) SpaceUsed(n int64)      { r.spaceUsed.Set(float64(n)) }

var _ pagecache.MetricsRecorder = (*Registry)(nil)
