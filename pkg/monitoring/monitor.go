package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5},
		},
		[]string{"method", "endpoint"},
	)

	GradesComputed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_grades_computed_total",
			Help: "Number of grades normalized, by eligibility for the student average",
		},
		[]string{"eligible"},
	)

	FeedFetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gradebook_feed_fetch_duration_seconds",
			Help:    "Duration of grade feed fetches",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"result"},
	)

	FeedCacheResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_feed_cache_total",
			Help: "Grade feed cache lookups",
		},
		[]string{"result"},
	)

	TimetableOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gradebook_timetable_operations_total",
			Help: "Timetable cache mutations",
		},
		[]string{"op"},
	)

	TimetablePersistFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "gradebook_timetable_persist_failures_total",
			Help: "Timetable snapshots that could not be written",
		},
	)
)

var initOnce sync.Once

func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			GradesComputed,
			FeedFetchDuration,
			FeedCacheResults,
			TimetableOperations,
			TimetablePersistFailures,
		)
	})
}

func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		duration := time.Since(start).Seconds()
		status := c.Writer.Status()

		RequestCounter.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			strconv.Itoa(status),
		).Inc()

		RequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
		).Observe(duration)
	}
}

func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
