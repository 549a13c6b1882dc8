// Package observe decorates checkers with Prometheus metrics and slog
// logging. The core engine never logs or counts on its own; wrap the checkers
// you care about at the edge of your application.
package observe

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reoring/trafo"
)

// Outcome label values.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
)

// Collector counts and times checker runs.
type Collector struct {
	checks   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewCollector creates the trafo_checks_total and
// trafo_check_duration_seconds metrics and registers them with reg. A nil
// reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "trafo_checks_total",
				Help: "Total number of checker runs by outcome",
			},
			[]string{"checker", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "trafo_check_duration_seconds",
				Help:    "Duration of checker runs",
				Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
			},
			[]string{"checker"},
		),
	}
	if reg != nil {
		reg.MustRegister(c.checks, c.duration)
	}
	return c
}

// Wrap returns a checker that records every run of inner under name.
func (c *Collector) Wrap(name string, inner trafo.Checker) trafo.Checker {
	return &measured{col: c, name: name, inner: inner}
}

type measured struct {
	col   *Collector
	name  string
	inner trafo.Checker
}

func (m *measured) Validate(ctx context.Context, v any) (any, *trafo.Error) {
	start := time.Now()
	out, derr := m.inner.Validate(ctx, v)
	m.col.duration.WithLabelValues(m.name).Observe(time.Since(start).Seconds())
	outcome := OutcomeOK
	if derr != nil {
		outcome = OutcomeInvalid
	}
	m.col.checks.WithLabelValues(m.name, outcome).Inc()
	return out, derr
}
