package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "medihub"

// Metrics holds Prometheus metrics for the moderation service
type Metrics struct {
	RequestCounter    *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	ModerationActions *prometheus.CounterVec
	ReportsSubmitted  *prometheus.CounterVec
	SanctionsIssued   *prometheus.CounterVec
	SanctionsExpired  prometheus.Counter
	DetailCache       *prometheus.CounterVec
	JobsProcessed     *prometheus.CounterVec
}

// New registers the service metrics on reg. Pass prometheus.DefaultRegisterer
// in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ModerationActions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "moderation",
				Name:      "actions_total",
				Help:      "Moderator actions by outcome",
			},
			[]string{"action", "outcome"},
		),
		ReportsSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "moderation",
				Name:      "reports_submitted_total",
				Help:      "Reports submitted by target type",
			},
			[]string{"target_type"},
		),
		SanctionsIssued: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "moderation",
				Name:      "sanctions_issued_total",
				Help:      "Sanctions issued by type",
			},
			[]string{"sanction_type"},
		),
		SanctionsExpired: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "moderation",
				Name:      "sanctions_expired_total",
				Help:      "Suspensions moved to expired by the sweeper",
			},
		),
		DetailCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "report_detail_lookups_total",
				Help:      "Report detail cache lookups by result",
			},
			[]string{"result"}, // hit, miss, error, stale
		),
		JobsProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "jobqueue",
				Name:      "jobs_processed_total",
				Help:      "Background jobs by type and final status",
			},
			[]string{"type", "status"},
		),
	}
}

// The helpers below are nil-safe so components can run without metrics wired.

func (m *Metrics) ObserveAction(action, outcome string) {
	if m == nil {
		return
	}
	m.ModerationActions.WithLabelValues(action, outcome).Inc()
}

func (m *Metrics) ObserveReport(targetType string) {
	if m == nil {
		return
	}
	m.ReportsSubmitted.WithLabelValues(targetType).Inc()
}

func (m *Metrics) ObserveSanction(sanctionType string) {
	if m == nil {
		return
	}
	m.SanctionsIssued.WithLabelValues(sanctionType).Inc()
}

func (m *Metrics) ObserveExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.SanctionsExpired.Add(float64(n))
}

func (m *Metrics) ObserveCache(result string) {
	if m == nil {
		return
	}
	m.DetailCache.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveJob(jobType, status string) {
	if m == nil {
		return
	}
	m.JobsProcessed.WithLabelValues(jobType, status).Inc()
}

// Middleware records request count and latency per matched route.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		route := c.Route().Path
		if route == "" {
			route = "unmatched"
		}
		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		m.RequestDuration.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		return err
	}
}
