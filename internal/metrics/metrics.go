// Package metrics exposes session and guard counters to prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	transitions   *prometheus.CounterVec
	logins        *prometheus.CounterVec
	verdicts      *prometheus.CounterVec
	authenticated prometheus.Gauge
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefly",
			Subsystem: "session",
			Name:      "transitions_total",
			Help:      "Session state transitions by target state.",
		}, []string{"state"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefly",
			Subsystem: "session",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "firefly",
			Subsystem: "guard",
			Name:      "verdicts_total",
			Help:      "Access guard verdicts by kind.",
		}, []string{"verdict"}),
		authenticated: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "firefly",
			Subsystem: "session",
			Name:      "authenticated",
			Help:      "1 while a session is authenticated.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.transitions, m.logins, m.verdicts, m.authenticated)
	}
	return m
}

func (m *Metrics) ObserveTransition(state string) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(state).Inc()
}

func (m *Metrics) ObserveLogin(result string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveVerdict(verdict string) {
	if m == nil {
		return
	}
	m.verdicts.WithLabelValues(verdict).Inc()
}

func (m *Metrics) SetAuthenticated(on bool) {
	if m == nil {
		return
	}
	if on {
		m.authenticated.Set(1)
	} else {
		m.authenticated.Set(0)
	}
}
