package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "printerp"

// Collector owns a private registry so tests and multiple servers in one
// process never collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	httpRequests  *prometheus.CounterVec
	httpDuration  *prometheus.HistogramVec
	rateLimited   prometheus.Counter
	calculations  *prometheus.CounterVec
	bulkDuration  prometheus.Histogram
	bulkEmployees prometheus.Gauge
	jobRuns       *prometheus.CounterVec
}

func New() *Collector {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	c := &Collector{registry: registry}

	c.httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	c.httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "route"},
	)
	c.rateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_rate_limited_total",
		Help:      "Requests rejected by the rate limiter",
	})
	c.calculations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "commission",
			Name:      "calculations_total",
			Help:      "Commission calculations by structure type and outcome",
		},
		[]string{"structure_type", "outcome"},
	)
	c.bulkDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "commission",
		Name:      "bulk_duration_seconds",
		Help:      "Wall time of bulk commission runs",
		Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
	})
	c.bulkEmployees = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "commission",
		Name:      "bulk_last_employees",
		Help:      "Employees covered by the most recent bulk run",
	})
	c.jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_runs_total",
			Help:      "Background job runs by job type and status",
		},
		[]string{"job_type", "status"},
	)

	registry.MustRegister(
		c.httpRequests,
		c.httpDuration,
		c.rateLimited,
		c.calculations,
		c.bulkDuration,
		c.bulkEmployees,
		c.jobRuns,
	)
	return c
}

func (c *Collector) Record(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	if status == http.StatusTooManyRequests {
		c.rateLimited.Inc()
	}
}

func (c *Collector) Calculation(structureType, outcome string) {
	if structureType == "" {
		structureType = "none"
	}
	c.calculations.WithLabelValues(structureType, outcome).Inc()
}

func (c *Collector) Bulk(employees int, duration time.Duration) {
	c.bulkEmployees.Set(float64(employees))
	c.bulkDuration.Observe(duration.Seconds())
}

func (c *Collector) JobRun(jobType, status string) {
	c.jobRuns.WithLabelValues(jobType, status).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
