package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/BaSui01/leoflow/leonardo"
)

// Collector records client metrics.
type Collector struct {
	apiCallsTotal   *prometheus.CounterVec
	apiCallDuration *prometheus.HistogramVec

	workflowsTotal   *prometheus.CounterVec
	workflowDuration *prometheus.HistogramVec
	imagesGenerated  prometheus.Counter

	logger *zap.Logger
}

var _ leonardo.MetricsRecorder = (*Collector)(nil)

// NewCollector creates a collector with all metrics registered under the
// given namespace.
func NewCollector(namespace string, logger *zap.Logger) *Collector {
	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.apiCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_calls_total",
			Help:      "Total number of Leonardo API calls",
		},
		[]string{"operation", "status"},
	)

	c.apiCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_call_duration_seconds",
			Help:      "Leonardo API call duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	c.workflowsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generation_workflows_total",
			Help:      "Total number of generation workflows",
		},
		[]string{"outcome"},
	)

	c.workflowDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_workflow_duration_seconds",
			Help:      "End-to-end generation workflow duration in seconds",
			Buckets:   []float64{1, 2, 5, 10, 20, 30, 60, 120},
		},
		[]string{"outcome"},
	)

	c.imagesGenerated = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_generated_total",
			Help:      "Total number of images produced by completed workflows",
		},
	)

	logger.Info("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// RecordCall records a single Leonardo API call.
func (c *Collector) RecordCall(op string, status int, duration time.Duration) {
	c.apiCallsTotal.WithLabelValues(op, statusCode(status)).Inc()
	c.apiCallDuration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordWorkflow records a completed submit-then-poll workflow.
func (c *Collector) RecordWorkflow(outcome string, duration time.Duration, images int) {
	c.workflowsTotal.WithLabelValues(outcome).Inc()
	c.workflowDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	if images > 0 {
		c.imagesGenerated.Add(float64(images))
	}
}

// statusCode groups HTTP status codes into classes.
func statusCode(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	case code >= 500:
		return "5xx"
	default:
		return "unknown"
	}
}
