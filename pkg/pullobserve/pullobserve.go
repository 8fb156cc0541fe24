// Package pullobserve instruments pull iterators with prometheus metrics and structured logging.
package pullobserve

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logging"

	"go.llib.dev/lazyiter/pkg/pullkit"
)

// Metrics holds the counters Instrument updates.
type Metrics struct {
	// Results counts the results produced by an iterator, labelled with the iterator name and the result status.
	Results *prometheus.CounterVec
	// Closed counts the closed iterators, labelled with the iterator name.
	Closed *prometheus.CounterVec
}

// NewMetrics creates the iterator metrics and registers them on reg.
// A nil reg leaves the metrics unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Results: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazyiter",
			Name:      "results_total",
			Help:      "Number of iterator results by status.",
		}, []string{"iterator", "status"}),
		Closed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lazyiter",
			Name:      "closed_total",
			Help:      "Number of closed iterators.",
		}, []string{"iterator"}),
	}
	if reg == nil {
		return m, nil
	}
	if err := errorkit.Merge(reg.Register(m.Results), reg.Register(m.Closed)); err != nil {
		return nil, err
	}
	return m, nil
}

// Observer holds the sinks an instrumented iterator reports to.
// Both fields are optional.
type Observer struct {
	Metrics *Metrics
	Logger  *logging.Logger
}

// Instrument wraps it into an iterator that yields the same results
// and reports every fresh result and the close of the iterator to the Observer.
//
// The returned iterator owns it, and it keeps the finite flag of it.
// Peeking does not produce a new result, so a result is counted once no matter how often it is peeked.
func Instrument[T any](ctx context.Context, o Observer, name string, it *pullkit.Iterator[T]) *pullkit.Iterator[T] {
	obs := &observed[T]{Context: ctx, Observer: o, Name: name, Inner: it}
	if it.IsFinite() {
		return pullkit.NewFinite(nextObserved[T], obs, releaseObserved[T])
	}
	return pullkit.New(nextObserved[T], obs, releaseObserved[T])
}

type observed[T any] struct {
	Context  context.Context
	Observer Observer
	Name     string
	Inner    *pullkit.Iterator[T]
	Count    int
}

func nextObserved[T any](o *observed[T]) (T, bool, error) {
	res := o.Inner.Advance()
	o.count(res.Status)
	switch res.Status {
	case pullkit.StatusReady:
		o.Count++
		return res.Value, true, nil
	case pullkit.StatusExhausted:
		o.debug("iterator exhausted", logging.Field("count", o.Count))
		return res.Value, false, nil
	default:
		err := o.Inner.Err()
		o.warn("iterator failed", logging.ErrField(err), logging.Field("count", o.Count))
		return res.Value, false, err
	}
}

func releaseObserved[T any](o *observed[T]) error {
	if m := o.Observer.Metrics; m != nil {
		m.Closed.WithLabelValues(o.Name).Inc()
	}
	err := o.Inner.Close()
	if err != nil {
		o.warn("iterator close failed", logging.ErrField(err))
		return err
	}
	o.debug("iterator closed", logging.Field("count", o.Count))
	return nil
}

func (o *observed[T]) count(status pullkit.Status) {
	if m := o.Observer.Metrics; m != nil {
		m.Results.WithLabelValues(o.Name, status.String()).Inc()
	}
}

func (o *observed[T]) debug(msg string, ds ...logging.Detail) {
	if l := o.Observer.Logger; l != nil {
		l.Debug(o.Context, msg, append(ds, logging.Field("iterator", o.Name))...)
	}
}

func (o *observed[T]) warn(msg string, ds ...logging.Detail) {
	if l := o.Observer.Logger; l != nil {
		l.Warn(o.Context, msg, append(ds, logging.Field("iterator", o.Name))...)
	}
}
