// Package metrics exposes Prometheus instrumentation for the checkout service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "acme"

type CheckoutMetrics struct {
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	Transitions  *prometheus.CounterVec
	Submissions  *prometheus.CounterVec
	CouponChecks *prometheus.CounterVec
	Quotes       prometheus.Counter

	gatherer prometheus.Gatherer
}

// NewCheckoutMetrics registers the collectors on reg. A nil reg uses a fresh registry.
func NewCheckoutMetrics(reg *prometheus.Registry) *CheckoutMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &CheckoutMetrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"handler", "status"}),
		LatencyMS: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "http_request_duration_ms",
			Help:      "HTTP request latency in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"handler"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "section_transitions_total",
			Help:      "Wizard section transitions by section and outcome.",
		}, []string{"section", "outcome"}),
		Submissions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "submissions_total",
			Help:      "Checkout submissions by outcome.",
		}, []string{"outcome"}),
		CouponChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "coupon_validations_total",
			Help:      "Coupon validations by result.",
		}, []string{"result"}),
		Quotes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "quotes_total",
			Help:      "Stateless quotes computed.",
		}),
		gatherer: reg,
	}

	reg.MustRegister(m.Requests, m.LatencyMS, m.Transitions, m.Submissions, m.CouponChecks, m.Quotes)
	return m
}

// SectionTransition counts a wizard transition. Safe on a nil receiver.
func (m *CheckoutMetrics) SectionTransition(section, outcome string) {
	if m == nil {
		return
	}
	m.Transitions.WithLabelValues(section, outcome).Inc()
}

func (m *CheckoutMetrics) Submission(outcome string) {
	if m == nil {
		return
	}
	m.Submissions.WithLabelValues(outcome).Inc()
}

func (m *CheckoutMetrics) CouponValidation(result string) {
	if m == nil {
		return
	}
	m.CouponChecks.WithLabelValues(result).Inc()
}

func (m *CheckoutMetrics) Quote() {
	if m == nil {
		return
	}
	m.Quotes.Inc()
}

// Middleware records request counts and latency per route.
func (m *CheckoutMetrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.Requests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.LatencyMS.WithLabelValues(route).Observe(float64(time.Since(start).Microseconds()) / 1000)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *CheckoutMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
