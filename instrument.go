package mempool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors shared by every pool created with
// WithMetrics. Series are labelled by pool name. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	reservations *prometheus.CounterVec
	failures     *prometheus.CounterVec
	releases     *prometheus.CounterVec
	fallbacks    *prometheus.CounterVec
	bytesInUse   *prometheus.GaugeVec
	liveEntries  *prometheus.GaugeVec
}

// NewMetrics creates the collectors and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		reservations: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mempool_reservations_total",
			Help: "Total number of successful pool reservations.",
		}, []string{"pool"}),
		failures: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mempool_reservation_failures_total",
			Help: "Total number of pool reservations that failed, by reason.",
		}, []string{"pool", "reason"}),
		releases: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mempool_releases_total",
			Help: "Total number of reservations released back to the pool.",
		}, []string{"pool"}),
		fallbacks: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "mempool_heap_fallbacks_total",
			Help: "Total number of allocations served by the heap instead of the pool.",
		}, []string{"pool"}),
		bytesInUse: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "mempool_bytes_in_use",
			Help: "Bytes currently reserved in the pool.",
		}, []string{"pool"}),
		liveEntries: promauto.With(reg).NewGaugeVec(prometheus.GaugeOpts{
			Name: "mempool_live_entries",
			Help: "Entry slots currently holding a reservation.",
		}, []string{"pool"}),
	}
}

func (m *Metrics) reserved(pool string) {
	if m == nil {
		return
	}
	m.reservations.WithLabelValues(pool).Inc()
}

func (m *Metrics) released(pool string) {
	if m == nil {
		return
	}
	m.releases.WithLabelValues(pool).Inc()
}

func (m *Metrics) failed(pool, reason string) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(pool, reason).Inc()
}

func (m *Metrics) fellBack(pool string) {
	if m == nil {
		return
	}
	m.fallbacks.WithLabelValues(pool).Inc()
}

func (m *Metrics) observe(pool string, bytesInUse, live int) {
	if m == nil {
		return
	}
	m.bytesInUse.WithLabelValues(pool).Set(float64(bytesInUse))
	m.liveEntries.WithLabelValues(pool).Set(float64(live))
}
