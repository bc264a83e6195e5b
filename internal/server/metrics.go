package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds a self-contained Prometheus registry and the counters the
// handlers feed.
type Metrics struct {
	reg           *prometheus.Registry
	logins        *prometheus.CounterVec
	saves         *prometheus.CounterVec
	backupsMade   prometheus.Counter
	backupsPruned prometheus.Counter
}

// NewMetrics creates a Metrics instance with a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	logins := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s3backend",
		Subsystem: "auth",
		Name:      "logins_total",
		Help:      "Login attempts by result.",
	}, []string{"result"}) // result = "ok" | "denied"
	saves := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "s3backend",
		Subsystem: "save",
		Name:      "requests_total",
		Help:      "Save requests by result.",
	}, []string{"result"}) // result = "ok" | "error"
	backupsMade := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "s3backend",
		Subsystem: "save",
		Name:      "backups_created_total",
		Help:      "Backup objects created before JSON overwrites.",
	})
	backupsPruned := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "s3backend",
		Subsystem: "save",
		Name:      "backups_pruned_total",
		Help:      "Backup objects removed by the retention sweep.",
	})

	reg.MustRegister(logins, saves, backupsMade, backupsPruned)

	return &Metrics{
		reg:           reg,
		logins:        logins,
		saves:         saves,
		backupsMade:   backupsMade,
		backupsPruned: backupsPruned,
	}
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
