package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveTransition("authenticated")
	m.ObserveTransition("authenticated")
	m.ObserveLogin("success")
	m.ObserveVerdict("redirect_login")
	m.SetAuthenticated(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transitions.WithLabelValues("authenticated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.logins.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.verdicts.WithLabelValues("redirect_login")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.authenticated))

	m.SetAuthenticated(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.authenticated))
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveTransition("anonymous")
		m.ObserveLogin("failure")
		m.ObserveVerdict("allow")
		m.SetAuthenticated(true)
	})
}
