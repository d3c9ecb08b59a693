// Package metrics records operational metrics for table operations through a
// pluggable backend.
//
// The default backend is a no-op, so callers may record unconditionally.
// Concrete systems (Prometheus Pushgateway, DogStatsD) live in subpackages and
// are installed with SetBackend at program start. Recording is safe from
// concurrent goroutines, including while SetBackend runs.
//
// Metric names:
//
//   - pgtable_op_total{table,op,status}: operations run, by outcome.
//   - pgtable_op_duration_seconds{table,op,status}: operation latency.
//   - pgtable_rows_total{table,op}: rows written or read.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metric names shared with the backends.
const (
	OpTotal    = "pgtable_op_total"
	OpDuration = "pgtable_op_duration_seconds"
	RowsTotal  = "pgtable_rows_total"
)

// Status label values.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Backend receives every recorded sample. Implementations must be safe for
// concurrent use.
type Backend interface {
	IncCounter(name string, delta float64, labels Labels)
	ObserveHistogram(name string, value float64, labels Labels)
	// Flush pushes buffered samples, for backends that batch (Pushgateway,
	// DogStatsD).
	Flush() error
}

type nopBackend struct{}

func (nopBackend) IncCounter(string, float64, Labels)       {}
func (nopBackend) ObserveHistogram(string, float64, Labels) {}
func (nopBackend) Flush() error                             { return nil }

// holder lets atomic.Pointer carry any Backend implementation.
type holder struct{ b Backend }

var current atomic.Pointer[holder]

func init() { current.Store(&holder{nopBackend{}}) }

// SetBackend installs b and returns the previous backend. Passing nil keeps
// the existing backend.
func SetBackend(b Backend) (prev Backend) {
	prev = current.Load().b
	if b != nil {
		current.Store(&holder{b})
	}
	return prev
}

func active() Backend { return current.Load().b }

// Flush delegates to the current backend.
func Flush() error {
	return active().Flush()
}

// Status maps an operation error to its status label.
func Status(err error) string {
	if err != nil {
		return StatusFailure
	}
	return StatusSuccess
}

// RecordOp counts one operation (create_table, insert_row, select_all, ...)
// against table and observes its duration.
func RecordOp(table, op string, err error, d time.Duration) {
	lbls := Labels{"table": table, "op": op, "status": Status(err)}
	b := active()
	b.IncCounter(OpTotal, 1, lbls)
	b.ObserveHistogram(OpDuration, d.Seconds(), lbls)
}

// RecordRows adds n rows moved by op. Non-positive n is ignored.
func RecordRows(table, op string, n int64) {
	if n <= 0 {
		return
	}
	active().IncCounter(RowsTotal, float64(n), Labels{"table": table, "op": op})
}
