package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "credit_calculator"

type Collector struct {
	registry *prometheus.Registry

	evaluationsTotal   *prometheus.CounterVec
	mutationsTotal     *prometheus.CounterVec
	workloadsEvaluated prometheus.Histogram
	lastMonthlyCredits prometheus.Gauge
	sessionsCreated    prometheus.Counter
	requestDuration    *prometheus.HistogramVec
}

func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,

		evaluationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Credit evaluations by result",
		}, []string{"result"}),

		mutationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "workload_mutations_total",
			Help:      "Workload list mutations by operation and result",
		}, []string{"operation", "result"}),

		workloadsEvaluated: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "workloads_per_evaluation",
			Help:      "Number of workloads in an evaluated list",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
		}),

		lastMonthlyCredits: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_monthly_credits",
			Help:      "Total monthly credits of the most recent successful evaluation",
		}),

		sessionsCreated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Sessions initialized with a default workload list",
		}),

		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (c *Collector) RecordEvaluation(workloads int, monthly float64, err error) {
	if err != nil {
		c.evaluationsTotal.WithLabelValues("error").Inc()
		return
	}
	c.evaluationsTotal.WithLabelValues("ok").Inc()
	c.workloadsEvaluated.Observe(float64(workloads))
	c.lastMonthlyCredits.Set(monthly)
}

func (c *Collector) RecordMutation(operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.mutationsTotal.WithLabelValues(operation, result).Inc()
}

func (c *Collector) RecordSessionCreated() {
	c.sessionsCreated.Inc()
}

func (c *Collector) RecordRequest(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	c.requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}
