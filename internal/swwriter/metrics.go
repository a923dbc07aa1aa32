package swwriter

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the Prometheus counters a Writer updates as it streams an
// archive. Adapted from the qrank-webserver's GaugeFunc/Counter
// registration pattern (cmd/qrank-webserver/main.go), swapped for the
// counters relevant to a one-shot batch writer rather than a long-running
// server.
type Metrics struct {
	tilesWritten  prometheus.Counter
	bytesWritten  prometheus.Counter
	levelsWritten prometheus.Counter
}

// NewMetrics creates and registers a Metrics set on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		tilesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_writer",
			Name:      "tiles_written_total",
			Help:      "Number of non-empty tile payloads appended to the archive.",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_writer",
			Name:      "payload_bytes_written_total",
			Help:      "Total bytes of tile payload appended to the archive.",
		}),
		levelsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "swtiles_writer",
			Name:      "levels_written_total",
			Help:      "Number of levels fully written.",
		}),
	}
	reg.MustRegister(m.tilesWritten, m.bytesWritten, m.levelsWritten)
	return m
}

// noopMetrics backs a Writer that was not given WithMetrics.
func noopMetrics() *Metrics {
	return &Metrics{
		tilesWritten:  prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_tiles"}),
		bytesWritten:  prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_bytes"}),
		levelsWritten: prometheus.NewCounter(prometheus.CounterOpts{Name: "noop_levels"}),
	}
}
