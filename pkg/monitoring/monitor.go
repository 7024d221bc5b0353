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

	QuizResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "education_quiz_results_total",
			Help: "Recorded quiz results by level and outcome",
		},
		[]string{"level", "passed"},
	)

	ModuleCompletions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "education_module_completions_total",
			Help: "Modules transitioned to completed, by level",
		},
		[]string{"level"},
	)

	BadgeUnlocks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "education_badge_unlocks_total",
			Help: "Badges unlocked, by badge id",
		},
		[]string{"badge"},
	)

	PersistenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "education_persistence_errors_total",
			Help: "Progress writes or reads that failed and were skipped",
		},
		[]string{"op"},
	)

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "education_active_learner_sessions",
			Help: "Learner sessions held in memory",
		},
	)
)

var registerOnce sync.Once

func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			QuizResults,
			ModuleCompletions,
			BadgeUnlocks,
			PersistenceErrors,
			ActiveSessions,
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
