package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestNilMetricsAreNoop(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.ObserveHTTP("svc", "GET", "/x", "200", time.Millisecond)
		m.ObserveDBQuery("svc", "query", nil, time.Millisecond)
		m.AddSlotsGenerated("svc", "PERSONAL", 3)
		m.AddSlotsBlocked("svc", 2)
		m.IncBookingConflict("svc", "book")
		m.IncCache("svc", "hit")
	})
}

func TestCounters(t *testing.T) {
	m := NewWithRegisterer("svc", prometheus.NewRegistry())

	m.AddSlotsGenerated("svc", "PERSONAL", 4)
	m.AddSlotsGenerated("svc", "PERSONAL", 0)
	m.AddSlotsBlocked("svc", 2)
	m.IncBookingConflict("svc", "book")
	m.IncCache("svc", "miss")
	m.ObserveDBQuery("svc", "exec", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 4.0, testutil.ToFloat64(m.SlotsGenerated.WithLabelValues("svc", "PERSONAL")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.SlotsBlocked.WithLabelValues("svc")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingConflicts.WithLabelValues("svc", "book")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheRequests.WithLabelValues("svc", "miss")))
}
