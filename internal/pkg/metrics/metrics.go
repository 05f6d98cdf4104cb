package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridemycity",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridemycity",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Drawing and shape metrics
	ShapesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "shapes",
		Name:      "created_total",
		Help:      "Total rides and avoid zones created",
	}, []string{"kind"})

	ShapesDeleted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "shapes",
		Name:      "deleted_total",
		Help:      "Total rides and avoid zones deleted",
	}, []string{"kind"})

	ActiveWorkspaces = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ridemycity",
		Subsystem: "workspaces",
		Name:      "active",
		Help:      "Current number of open drawing workspaces",
	})

	// Boundary lookups by result: found, not_found, stale, error.
	BoundaryLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "geo",
		Name:      "boundary_lookups_total",
		Help:      "Boundary lookups applied to a workspace, by result",
	}, []string{"result"})

	GeocoderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "geo",
		Name:      "geocoder_requests_total",
		Help:      "Requests sent to the external geocoder",
	}, []string{"operation", "status"})

	GeocoderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "ridemycity",
		Subsystem: "geo",
		Name:      "geocoder_request_duration_seconds",
		Help:      "Latency of external geocoder requests",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	GeocoderBreakerOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ridemycity",
		Subsystem: "geo",
		Name:      "geocoder_breaker_open",
		Help:      "1 while the geocoder circuit breaker is open",
	})

	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ridemycity",
		Subsystem: "ws",
		Name:      "active_connections",
		Help:      "Current number of active WebSocket connections",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ridemycity",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})

	// Database pool metrics
	DBPoolConnsOpen = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ridemycity",
		Subsystem: "db",
		Name:      "pool_conns_open",
		Help:      "Total connections open in the database pool",
	})

	DBPoolConnsAcquired = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ridemycity",
		Subsystem: "db",
		Name:      "pool_conns_acquired",
		Help:      "Connections currently acquired from the database pool",
	})

	DBPoolConnsIdle = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ridemycity",
		Subsystem: "db",
		Name:      "pool_conns_idle",
		Help:      "Idle connections in the database pool",
	})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}

// PoolStat is the subset of *pgxpool.Stat the pool gauges read.
type PoolStat interface {
	AcquiredConns() int32
	IdleConns() int32
	TotalConns() int32
}

// UpdateDBPoolMetrics updates database pool gauges from a pgxpool stat.
func UpdateDBPoolMetrics(stat PoolStat) {
	DBPoolConnsAcquired.Set(float64(stat.AcquiredConns()))
	DBPoolConnsIdle.Set(float64(stat.IdleConns()))
	DBPoolConnsOpen.Set(float64(stat.TotalConns()))
}
