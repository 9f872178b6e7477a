package observability

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	// registry is private so a one-shot run exports exactly its own series.
	registry = prometheus.NewRegistry()

	probeResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rigctl",
			Subsystem: "probe",
			Name:      "results_total",
			Help:      "Probe outcomes by tool and status.",
		},
		[]string{"tool", "status"},
	)
	installResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "rigctl",
			Subsystem: "install",
			Name:      "results_total",
			Help:      "Install outcomes by tool.",
		},
		[]string{"tool", "outcome"},
	)
	installDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "rigctl",
			Subsystem: "install",
			Name:      "duration_seconds",
			Help:      "Install recipe duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		},
		[]string{"tool"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		registry.MustRegister(probeResults, installResults, installDuration)
	})
}

func RecordProbe(tool, status string) {
	RegisterMetrics()
	probeResults.WithLabelValues(tool, status).Inc()
}

func RecordInstall(tool, outcome string, duration time.Duration) {
	RegisterMetrics()
	installResults.WithLabelValues(tool, outcome).Inc()
	installDuration.WithLabelValues(tool).Observe(duration.Seconds())
}

// ExportTextfile writes the run's metrics in the node_exporter textfile
// collector format.
func ExportTextfile(path string) error {
	RegisterMetrics()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return prometheus.WriteToTextfile(path, registry)
}
