// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the vault's collectors. A nil *Metrics records nothing.
type Metrics struct {
	CredentialOps *prometheus.CounterVec
	FlourishRuns  *prometheus.CounterVec
	HTTPRequests  *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CredentialOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantumvault_credential_operations_total",
				Help: "Credential operations by operation and result",
			},
			[]string{"op", "result"},
		),
		FlourishRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantumvault_quantum_flourish_runs_total",
				Help: "Decorative quantum circuit runs by backend and result",
			},
			[]string{"backend", "result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantumvault_http_requests_total",
				Help: "HTTP requests by method and status code",
			},
			[]string{"method", "code"},
		),
	}
	reg.MustRegister(m.CredentialOps, m.FlourishRuns, m.HTTPRequests)
	return m
}

// CredentialOp counts one credential operation.
func (m *Metrics) CredentialOp(op, result string) {
	if m == nil {
		return
	}
	m.CredentialOps.WithLabelValues(op, result).Inc()
}

// FlourishRun counts one quantum flourish run.
func (m *Metrics) FlourishRun(backend, result string) {
	if m == nil {
		return
	}
	m.FlourishRuns.WithLabelValues(backend, result).Inc()
}

// HTTPRequest counts one served request.
func (m *Metrics) HTTPRequest(method, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(method, code).Inc()
}
