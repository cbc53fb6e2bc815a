package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the scheduling engine.
type SchedulingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	remindersTotal   *prometheus.CounterVec
	slotQuerySeconds *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careops",
			Subsystem: "scheduling",
			Name:      "bookings_total",
			Help:      "Total booking attempts by outcome",
		}, []string{"outcome"}),
		remindersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "careops",
			Subsystem: "scheduling",
			Name:      "reminders_total",
			Help:      "Total reminder trigger attempts by result",
		}, []string{"result"}),
		slotQuerySeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "careops",
			Subsystem: "scheduling",
			Name:      "slot_query_seconds",
			Help:      "Latency of availability queries",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.remindersTotal, m.slotQuerySeconds)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

func (m *SchedulingMetrics) ObserveReminder(result string) {
	if m == nil {
		return
	}
	m.remindersTotal.WithLabelValues(result).Inc()
}

func (m *SchedulingMetrics) ObserveSlotQuery(kind string, seconds float64) {
	if m == nil {
		return
	}
	m.slotQuerySeconds.WithLabelValues(kind).Observe(seconds)
}
