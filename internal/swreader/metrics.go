package swreader

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus counters a Reader updates on every fetch.
// Adapted from the qrank-webserver's counter/gauge registration pattern
// (cmd/qrank-webserver/main.go).
type Metrics struct {
	fetchesTotal prometheus.Counter
	fetchBytes   prometheus.Counter
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
}

// NewMetrics creates and registers a Metrics set on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		fetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_reader",
			Name:      "fetches_total",
			Help:      "Number of ByteSource.Fetch calls issued.",
		}),
		fetchBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_reader",
			Name:      "fetch_bytes_total",
			Help:      "Total bytes requested across all fetches.",
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_reader",
			Name:      "tile_cache_hits_total",
			Help:      "Number of GetTile calls served from the in-memory tile cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_reader",
			Name:      "tile_cache_misses_total",
			Help:      "Number of GetTile calls that required a fetch.",
		}),
	}
	reg.MustRegister(m.fetchesTotal, m.fetchBytes, m.cacheHits, m.cacheMisses)
	return m
}

func noopMetrics() *Metrics {
	return &Metrics{
		fetchesTotal: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_fetches"}),
		fetchBytes:   prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_fetch_bytes"}),
		cacheHits:    prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_cache_hits"}),
		cacheMisses:  prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_cache_misses"}),
	}
}
