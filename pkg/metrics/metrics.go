package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор prometheus метрик сервиса
// Все методы безопасны для nil-получателя: при выключенных метриках передается nil
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBIdle            *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	SlotsGenerated   *prometheus.CounterVec
	SlotsBlocked     *prometheus.CounterVec
	BookingConflicts *prometheus.CounterVec
	CacheRequests    *prometheus.CounterVec
}

// New создает метрики и регистрирует их в prometheus.DefaultRegisterer
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создает метрики в указанном реестре
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "route"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation", "status"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_open_connections",
			Help: "Number of established connections",
		}, []string{"service"}),
		DBInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_in_use_connections",
			Help: "Number of connections currently in use",
		}, []string{"service"}),
		DBIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_idle_connections",
			Help: "Number of idle connections",
		}, []string{"service"}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),
		SlotsGenerated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_slots_generated_total",
			Help: "Number of availability slots inserted by the generator",
		}, []string{"service", "session_type"}),
		SlotsBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_slots_blocked_total",
			Help: "Number of slots blocked after pattern removal",
		}, []string{"service"}),
		BookingConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_booking_conflicts_total",
			Help: "Number of rejected booked-status transitions",
		}, []string{"service", "operation"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "availability_cache_requests_total",
			Help: "Availability cache lookups by result",
		}, []string{"service", "result"}),
	}

	reg.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.DBQueryDuration,
		m.DBOpenConnections,
		m.DBInUse,
		m.DBIdle,
		m.DBWaitCount,
		m.SlotsGenerated,
		m.SlotsBlocked,
		m.BookingConflicts,
		m.CacheRequests,
	)

	return m
}

// ObserveHTTP фиксирует HTTP запрос
func (m *Metrics) ObserveHTTP(service, method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(service, method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(service, method, route).Observe(d.Seconds())
}

// ObserveDBQuery фиксирует длительность запроса к БД
func (m *Metrics) ObserveDBQuery(service, operation string, err error, d time.Duration) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.DBQueryDuration.WithLabelValues(service, operation, status).Observe(d.Seconds())
}

func (m *Metrics) AddSlotsGenerated(service, sessionType string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SlotsGenerated.WithLabelValues(service, sessionType).Add(float64(n))
}

func (m *Metrics) AddSlotsBlocked(service string, n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.SlotsBlocked.WithLabelValues(service).Add(float64(n))
}

func (m *Metrics) IncBookingConflict(service, operation string) {
	if m == nil {
		return
	}
	m.BookingConflicts.WithLabelValues(service, operation).Inc()
}

// IncCache result: hit|miss|error
func (m *Metrics) IncCache(service, result string) {
	if m == nil {
		return
	}
	m.CacheRequests.WithLabelValues(service, result).Inc()
}
