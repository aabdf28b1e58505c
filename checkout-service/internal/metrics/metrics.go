package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics is nil-safe: a nil *Metrics records nothing.
type Metrics struct {
	Placements     *prometheus.CounterVec
	Redirects      *prometheus.CounterVec
	PaymentLatency *prometheus.HistogramVec
}

func New(reg prometheus.Registerer) *Metrics {
	placements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "placements_total",
		Help:      "Place-order attempts that reached the payment step, by settlement outcome.",
	}, []string{"outcome"})
	redirects := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "redirects_total",
		Help:      "Wizard redirects, by target step and reason.",
	}, []string{"step", "reason"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storefront",
		Subsystem: "checkout",
		Name:      "payment_call_duration_ms",
		Help:      "Payment gateway call latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"operation", "result"})

	reg.MustRegister(placements, redirects, latency)
	return &Metrics{Placements: placements, Redirects: redirects, PaymentLatency: latency}
}

func (m *Metrics) ObservePlacement(outcome string) {
	if m == nil {
		return
	}
	m.Placements.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveRedirect(step, reason string) {
	if m == nil {
		return
	}
	m.Redirects.WithLabelValues(step, reason).Inc()
}

func (m *Metrics) ObservePayment(operation string, started time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.PaymentLatency.WithLabelValues(operation, result).Observe(float64(time.Since(started).Milliseconds()))
}

func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
