package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters for the booking flow.
type BookingMetrics struct {
	directoryAttempts *prometheus.CounterVec
	directoryNotices  *prometheus.CounterVec
	submissions       *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		directoryAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "directory",
			Name:      "attempts_total",
			Help:      "Doctor directory fetch attempts",
		}, []string{"attempt", "outcome"}),
		directoryNotices: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "directory",
			Name:      "notices_total",
			Help:      "Degraded directory notices shown to users",
		}, []string{"kind"}),
		submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "booking",
			Subsystem: "workflow",
			Name:      "submissions_total",
			Help:      "Appointment submissions by outcome",
		}, []string{"outcome"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.directoryAttempts, m.directoryNotices, m.submissions)
	return m
}

func (m *BookingMetrics) ObserveDirectoryAttempt(attempt, outcome string) {
	if m == nil {
		return
	}
	m.directoryAttempts.WithLabelValues(attempt, outcome).Inc()
}

func (m *BookingMetrics) ObserveNotice(kind string) {
	if m == nil {
		return
	}
	m.directoryNotices.WithLabelValues(kind).Inc()
}

func (m *BookingMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissions.WithLabelValues(outcome).Inc()
}
