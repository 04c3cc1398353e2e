package handler

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/service"
)

// Metrics holds all Prometheus collectors for the attention engine.
var Metrics = struct {
	AttentionEventsTotal *prometheus.CounterVec
	RewardsGrantedTotal  prometheus.Counter
	AccrualUnitsEmitted  prometheus.Counter
	WatchSecondsCredited prometheus.Counter
	SessionsActive       prometheus.GaugeFunc
	RequestDuration      *prometheus.HistogramVec
	RequestsInFlight     prometheus.Gauge
	DBPoolActive         prometheus.GaugeFunc
	DBPoolIdle           prometheus.GaugeFunc
}{}

// InitMetrics registers all Prometheus metrics. Call once at startup.
func InitMetrics(pool *pgxpool.Pool, manager *service.SessionManager) {
	Metrics.AttentionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulsefeed_attention_events_total",
			Help: "Total attention events routed, by kind.",
		},
		[]string{"kind"},
	)

	Metrics.RewardsGrantedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsefeed_rewards_granted_total",
			Help: "Total reward units granted to local session balances.",
		},
	)

	Metrics.AccrualUnitsEmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsefeed_accrual_units_emitted_total",
			Help: "Total reward units emitted by the continuous earning engines.",
		},
	)

	Metrics.WatchSecondsCredited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pulsefeed_watch_seconds_credited_total",
			Help: "Total deduplicated watch seconds credited.",
		},
	)

	Metrics.RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulsefeed_api_request_duration_seconds",
			Help:    "HTTP request duration in seconds, by endpoint and method.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	Metrics.RequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulsefeed_requests_in_flight",
			Help: "Number of HTTP requests currently being served.",
		},
	)

	if manager != nil {
		Metrics.SessionsActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pulsefeed_sessions_active",
				Help: "Number of live attention sessions.",
			},
			func() float64 {
				return float64(manager.Count())
			},
		)
		prometheus.MustRegister(Metrics.SessionsActive)
	}

	// DB pool gauges — read live stats from pgxpool
	if pool != nil {
		Metrics.DBPoolActive = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pulsefeed_db_connection_pool_active",
				Help: "Number of active database connections.",
			},
			func() float64 {
				return float64(pool.Stat().AcquiredConns())
			},
		)

		Metrics.DBPoolIdle = prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: "pulsefeed_db_connection_pool_idle",
				Help: "Number of idle database connections.",
			},
			func() float64 {
				return float64(pool.Stat().IdleConns())
			},
		)

		prometheus.MustRegister(Metrics.DBPoolActive)
		prometheus.MustRegister(Metrics.DBPoolIdle)
	}

	prometheus.MustRegister(
		Metrics.AttentionEventsTotal,
		Metrics.RewardsGrantedTotal,
		Metrics.AccrualUnitsEmitted,
		Metrics.WatchSecondsCredited,
		Metrics.RequestDuration,
		Metrics.RequestsInFlight,
	)
}

// MetricsMiddleware records request duration and in-flight count for Prometheus.
func MetricsMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		// Don't instrument the /metrics endpoint itself
		if c.Path() == "/metrics" {
			return c.Next()
		}

		// Copy path and method into owned strings BEFORE c.Next() — Fiber
		// returns slices backed by the fasthttp buffer which can be reused
		// or overwritten by handlers (especially fasthttpadaptor).
		path := string([]byte(c.Path()))
		method := string([]byte(c.Method()))
		endpoint := sanitizeEndpoint(path)

		Metrics.RequestsInFlight.Inc()
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())

		Metrics.RequestDuration.WithLabelValues(endpoint, method, status).Observe(duration)
		Metrics.RequestsInFlight.Dec()

		return err
	}
}

// sanitizeEndpoint normalizes paths to avoid cardinality explosion.
func sanitizeEndpoint(path string) string {
	switch {
	case len(path) > 14 && path[:14] == "/api/sessions/":
		return "/api/sessions/:sessionId"
	case len(path) > 14 && path[:14] == "/api/progress/":
		return "/api/progress/:videoId"
	default:
		return path
	}
}

// MetricsHandler serves the Prometheus /metrics endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	httpHandler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
	return func(c fiber.Ctx) error {
		httpHandler(c.Context())
		return nil
	}
}
