// Package prompush implements a Prometheus Pushgateway backend for the
// metrics package.
//
// Samples are kept in a private registry and pushed to a Pushgateway on
// Flush; nothing is exposed for scraping. Short-lived processes such as
// cmd/figures push once before exiting.
package prompush

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"pgtable/internal/metrics"
)

// DefaultJob is the Pushgateway job used when none is given.
const DefaultJob = "pgtable"

var (
	opLabels  = []string{"table", "op", "status"}
	rowLabels = []string{"table", "op"}
)

// Backend is a Prometheus Pushgateway metrics backend.
type Backend struct {
	gatewayURL string
	jobName    string
	grouping   map[string]string
	buckets    []float64
	reg        *prometheus.Registry

	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	rows     *prometheus.CounterVec
}

// Option customizes a Backend.
type Option func(*Backend)

// WithGrouping adds a grouping label to the push URL, e.g. instance=host1, so
// concurrent processes of one job do not overwrite each other.
func WithGrouping(name, value string) Option {
	return func(b *Backend) { b.grouping[name] = value }
}

// WithBuckets overrides the duration histogram buckets (seconds).
func WithBuckets(buckets ...float64) Option {
	return func(b *Backend) { b.buckets = buckets }
}

// NewBackend constructs a Pushgateway backend for jobName (DefaultJob when
// empty) pushing to gatewayURL.
func NewBackend(jobName, gatewayURL string, opts ...Option) (*Backend, error) {
	if gatewayURL == "" {
		return nil, errors.New("prompush: gateway URL is required")
	}
	if jobName == "" {
		jobName = DefaultJob
	}

	b := &Backend{
		gatewayURL: gatewayURL,
		jobName:    jobName,
		grouping:   map[string]string{},
		buckets:    prometheus.DefBuckets,
		reg:        prometheus.NewRegistry(),
	}
	for _, o := range opts {
		o(b)
	}

	b.ops = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.OpTotal,
		Help: "Table operations run, by table, operation and status.",
	}, opLabels)
	b.duration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metrics.OpDuration,
		Help:    "Duration of table operations in seconds.",
		Buckets: b.buckets,
	}, opLabels)
	b.rows = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metrics.RowsTotal,
		Help: "Rows inserted or selected, by table and operation.",
	}, rowLabels)

	for _, c := range []prometheus.Collector{b.ops, b.duration, b.rows} {
		if err := b.reg.Register(c); err != nil {
			return nil, fmt.Errorf("prompush: register collector: %w", err)
		}
	}
	return b, nil
}

func values(lbls metrics.Labels, names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = lbls[n]
	}
	return out
}

// IncCounter adds delta to the op or row counter. Other names are ignored.
func (b *Backend) IncCounter(name string, delta float64, labels metrics.Labels) {
	switch {
	case name == metrics.OpTotal && b.ops != nil:
		b.ops.WithLabelValues(values(labels, opLabels)...).Add(delta)
	case name == metrics.RowsTotal && b.rows != nil:
		b.rows.WithLabelValues(values(labels, rowLabels)...).Add(delta)
	}
}

// ObserveHistogram records an operation duration. Other names are ignored.
func (b *Backend) ObserveHistogram(name string, value float64, labels metrics.Labels) {
	if name == metrics.OpDuration && b.duration != nil {
		b.duration.WithLabelValues(values(labels, opLabels)...).Observe(value)
	}
}

// Flush replaces the job's group on the Pushgateway with the current
// registry.
func (b *Backend) Flush() error {
	if b.reg == nil {
		return nil
	}
	p := push.New(b.gatewayURL, b.jobName).Gatherer(b.reg)
	for k, v := range b.grouping {
		p = p.Grouping(k, v)
	}
	if err := p.Push(); err != nil {
		return fmt.Errorf("prompush: push to %s: %w", b.gatewayURL, err)
	}
	return nil
}
