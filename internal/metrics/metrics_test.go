package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestBookingMetricsCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveDirectoryAttempt("primary", "error")
	m.ObserveDirectoryAttempt("retry", "ok")
	m.ObserveNotice("degraded")
	m.ObserveSubmission("ok")
	m.ObserveSubmission("ok")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.directoryAttempts.WithLabelValues("primary", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.directoryNotices.WithLabelValues("degraded")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.submissions.WithLabelValues("ok")))
}

func TestBookingMetricsNilSafe(t *testing.T) {
	var m *BookingMetrics
	m.ObserveDirectoryAttempt("primary", "ok")
	m.ObserveNotice("local")
	m.ObserveSubmission("persistence_error")
}
