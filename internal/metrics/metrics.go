package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "route", "code"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "code"},
	)

	// Ledger
	ledgerOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_ledger_operations_total",
			Help: "Ledger operations by operation and result.",
		},
		[]string{"operation", "result"},
	)

	// Notifications
	notificationsPublished = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_published_total",
			Help: "Total number of notifications written to Kafka.",
		},
	)
	notificationsDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_dropped_total",
			Help: "Notifications dropped because the dispatch queue was full.",
		},
	)
	notificationsFailed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_failed_total",
			Help: "Notifications that could not be written to Kafka.",
		},
	)
	notificationsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "notifications_processed_total",
			Help: "Notifications consumed and handed to the email sender.",
		},
	)

	// Redis
	cacheHits = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_cache_hits_total",
			Help: "Total number of cache hits",
		},
	)
	cacheMisses = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_cache_misses_total",
			Help: "Total number of cache misses",
		},
	)
	redisErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis errors",
		},
		[]string{"operation"},
	)
	redisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

var registerOnce sync.Once

func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,

			ledgerOperations,

			notificationsPublished,
			notificationsDropped,
			notificationsFailed,
			notificationsProcessed,

			cacheHits,
			cacheMisses,
			redisErrors,
			redisDuration,
		)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// --- HTTP ---
func ObserveHTTPRequest(method, route string, code int, d time.Duration) {
	c := strconv.Itoa(code)
	httpRequests.WithLabelValues(method, route, c).Inc()
	httpDuration.WithLabelValues(method, route, c).Observe(d.Seconds())
}

// --- Ledger ---
func IncLedgerOperation(operation, result string) {
	ledgerOperations.WithLabelValues(operation, result).Inc()
}

// --- Notifications ---
func IncNotificationPublished() { notificationsPublished.Inc() }
func IncNotificationDropped()   { notificationsDropped.Inc() }
func IncNotificationFailed()    { notificationsFailed.Inc() }
func IncNotificationProcessed() { notificationsProcessed.Inc() }

// --- Redis ---
func IncCacheHit()              { cacheHits.Inc() }
func IncCacheMiss()             { cacheMisses.Inc() }
func IncRedisError(op string)   { redisErrors.WithLabelValues(op).Inc() }
func ObserveRedisDuration(op string, d time.Duration) {
	redisDuration.WithLabelValues(op).Observe(d.Seconds())
}
