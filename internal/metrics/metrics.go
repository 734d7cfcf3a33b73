package metrics

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
			Name: "mandarin_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mandarin_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 15},
		},
		[]string{"method", "endpoint"},
	)

	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandarin_llm_requests_total",
			Help: "LLM requests by purpose and outcome",
		},
		[]string{"purpose", "outcome"},
	)

	LLMLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mandarin_llm_request_duration_seconds",
			Help:    "LLM request latency by purpose",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30},
		},
		[]string{"purpose"},
	)

	EvaluationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mandarin_evaluation_failures_total",
			Help: "Answer evaluations that fell back to the worst-case result",
		},
	)

	AnswersRecorded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandarin_answers_recorded_total",
			Help: "Session outcomes by skill and confidence",
		},
		[]string{"skill", "confidence"},
	)

	SessionsCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mandarin_sessions_completed_total",
			Help: "Assessment sessions that reached the finished state",
		},
	)

	StoreFallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mandarin_store_fallbacks_total",
			Help: "Primary store failures answered by the local store",
		},
		[]string{"op"},
	)
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call
// more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			RequestCounter,
			RequestDuration,
			LLMRequests,
			LLMLatency,
			EvaluationFailures,
			AnswersRecorded,
			SessionsCompleted,
			StoreFallbacks,
		)
	})
}

// ObserveLLM records one LLM call.
func ObserveLLM(purpose string, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	LLMRequests.WithLabelValues(purpose, outcome).Inc()
	LLMLatency.WithLabelValues(purpose).Observe(d.Seconds())
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
