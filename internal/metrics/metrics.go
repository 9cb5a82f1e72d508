// Package metrics collects and exposes Prometheus metrics for the
// authentication gates.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the interface the middleware and handlers record through.
type Recorder interface {
	RecordEdgeDecision(admitted bool)
	RecordPageGate(outcome string)
	RecordSignIn(method string, success bool)
	RecordSignOut()
}

// Page gate outcomes.
const (
	OutcomeAdmit = "admit"
	OutcomeDeny  = "deny"
	OutcomeError = "error"
)

// Collector implements Recorder on Prometheus counters.
type Collector struct {
	edgeDecisions *prometheus.CounterVec
	pageGate      *prometheus.CounterVec
	signIns       *prometheus.CounterVec
	signOuts      prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		edgeDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_edge_gate_decisions_total",
			Help: "Edge gate decisions on protected paths by result",
		}, []string{"result"}),
		pageGate: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_page_gate_checks_total",
			Help: "Authoritative session checks by outcome",
		}, []string{"outcome"}),
		signIns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "authgate_sign_ins_total",
			Help: "Sign-in attempts by method and result",
		}, []string{"method", "result"}),
		signOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_sign_outs_total",
			Help: "Completed sign-out requests",
		}),
	}

	reg.MustRegister(c.edgeDecisions, c.pageGate, c.signIns, c.signOuts)
	return c
}

func (c *Collector) RecordEdgeDecision(admitted bool) {
	result := "deny"
	if admitted {
		result = "admit"
	}
	c.edgeDecisions.WithLabelValues(result).Inc()
}

func (c *Collector) RecordPageGate(outcome string) {
	c.pageGate.WithLabelValues(outcome).Inc()
}

func (c *Collector) RecordSignIn(method string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.signIns.WithLabelValues(method, result).Inc()
}

func (c *Collector) RecordSignOut() {
	c.signOuts.Inc()
}

// Handler returns the scrape endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
