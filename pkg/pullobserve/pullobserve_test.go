package pullobserve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.llib.dev/frameless/pkg/logging"
	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/lazyiter/pkg/pullkit"
	"go.llib.dev/lazyiter/pkg/pullkit/pullkitcontract"
	"go.llib.dev/lazyiter/pkg/pullobserve"
)

func TestNewMetrics(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	m, err := pullobserve.NewMetrics(reg)
	assert.NoError(t, err)
	assert.NotNil(t, m)

	m.Results.WithLabelValues("x", "ready").Inc()
	m.Closed.WithLabelValues("x").Inc()
	n, err := testutil.GatherAndCount(reg, "lazyiter_results_total", "lazyiter_closed_total")
	assert.NoError(t, err)
	assert.Equal(t, 2, n)

	_, err = pullobserve.NewMetrics(reg)
	assert.Error(t, err, "metrics can't be registered twice on the same registry")

	m, err = pullobserve.NewMetrics(nil)
	assert.NoError(t, err)
	assert.NotNil(t, m)
}

func TestInstrument(t *testing.T) {
	s := testcase.NewSpec(t)

	metrics := testcase.Let(s, func(t *testcase.T) *pullobserve.Metrics {
		m, err := pullobserve.NewMetrics(prometheus.NewRegistry())
		assert.Must(t).NoError(err)
		return m
	})
	logger, logs := testcase.Let2(s, func(t *testcase.T) (*logging.Logger, logging.StubOutput) {
		return logging.Stub(t)
	})
	name := testcase.Let(s, func(t *testcase.T) string {
		return t.Random.StringNC(8, "abcdefghijklmnopqrstuvwxyz")
	})
	inner := testcase.Let(s, func(t *testcase.T) *pullkit.Iterator[int] {
		return pullkit.Slice([]int{1, 2, 3})
	})
	subject := testcase.Let(s, func(t *testcase.T) *pullkit.Iterator[int] {
		o := pullobserve.Observer{Metrics: metrics.Get(t), Logger: logger.Get(t)}
		return pullobserve.Instrument(context.Background(), o, name.Get(t), inner.Get(t))
	})

	results := func(t *testcase.T, status pullkit.Status) float64 {
		return testutil.ToFloat64(metrics.Get(t).Results.WithLabelValues(name.Get(t), status.String()))
	}

	s.Then("the values of the wrapped iterator are yielded", func(t *testcase.T) {
		vs, err := pullkit.Collect(subject.Get(t))
		assert.Must(t).NoError(err)
		assert.Must(t).Equal([]int{1, 2, 3}, vs)
	})

	s.Then("every result is counted by status", func(t *testcase.T) {
		_, err := pullkit.Collect(subject.Get(t))
		assert.Must(t).NoError(err)
		assert.Must(t).Equal(float64(3), results(t, pullkit.StatusReady))
		assert.Must(t).Equal(float64(1), results(t, pullkit.StatusExhausted))
		assert.Must(t).Equal(float64(0), results(t, pullkit.StatusError))
	})

	s.Then("peeking does not count the same result twice", func(t *testcase.T) {
		it := subject.Get(t)
		it.Peek()
		it.Peek()
		it.Advance()
		assert.Must(t).Equal(float64(1), results(t, pullkit.StatusReady))
	})

	s.Then("closing is counted once", func(t *testcase.T) {
		it := subject.Get(t)
		assert.Must(t).NoError(it.Close())
		assert.Must(t).NoError(it.Close())
		assert.Must(t).Equal(float64(1), testutil.ToFloat64(metrics.Get(t).Closed.WithLabelValues(name.Get(t))))
		assert.Must(t).True(inner.Get(t).IsExhausted())
	})

	s.Then("exhaustion is logged", func(t *testcase.T) {
		_, err := pullkit.Collect(subject.Get(t))
		assert.Must(t).NoError(err)
		assert.Must(t).Contains(logs.Get(t).String(), "iterator exhausted")
		assert.Must(t).Contains(logs.Get(t).String(), name.Get(t))
	})

	s.Then("the finite flag is kept", func(t *testcase.T) {
		assert.Must(t).True(subject.Get(t).IsFinite())
	})

	s.When("the wrapped iterator is infinite", func(s *testcase.Spec) {
		inner.Let(s, func(t *testcase.T) *pullkit.Iterator[int] {
			return pullkit.New(func(n *int) (int, bool, error) {
				*n++
				return *n, true, nil
			}, new(int), nil)
		})

		s.Then("the instrumented iterator is infinite too", func(t *testcase.T) {
			assert.Must(t).False(subject.Get(t).IsFinite())
		})
	})

	s.When("the wrapped iterator fails", func(s *testcase.Spec) {
		expErr := testcase.Let(s, func(t *testcase.T) error {
			return errors.New(t.Random.StringNC(12, "abcdefghijklmnopqrstuvwxyz"))
		})
		inner.Let(s, func(t *testcase.T) *pullkit.Iterator[int] {
			return pullkit.New(func(*int) (int, bool, error) {
				return 0, false, expErr.Get(t)
			}, new(int), nil)
		})

		s.Then("the error is passed through, counted and logged", func(t *testcase.T) {
			it := subject.Get(t)
			assert.Must(t).Equal(pullkit.StatusError, it.Advance().Status)
			assert.Must(t).ErrorIs(expErr.Get(t), it.Err())
			assert.Must(t).Equal(float64(1), results(t, pullkit.StatusError))
			assert.Must(t).Contains(logs.Get(t).String(), "iterator failed")
			assert.Must(t).Contains(logs.Get(t).String(), expErr.Get(t).Error())
		})
	})

	s.When("closing the wrapped iterator fails", func(s *testcase.Spec) {
		expErr := testcase.Let(s, func(t *testcase.T) error {
			return t.Random.Error()
		})
		inner.Let(s, func(t *testcase.T) *pullkit.Iterator[int] {
			return pullkit.NewFinite(func(*int) (int, bool, error) {
				return 0, false, nil
			}, new(int), func(*int) error { return expErr.Get(t) })
		})

		s.Then("the close error is returned and logged", func(t *testcase.T) {
			assert.Must(t).ErrorIs(expErr.Get(t), subject.Get(t).Close())
			assert.Must(t).Contains(logs.Get(t).String(), "iterator close failed")
		})
	})

	s.When("the observer has no sinks", func(s *testcase.Spec) {
		subject.Let(s, func(t *testcase.T) *pullkit.Iterator[int] {
			return pullobserve.Instrument(context.Background(), pullobserve.Observer{}, name.Get(t), inner.Get(t))
		})

		s.Then("the iterator still works", func(t *testcase.T) {
			vs, err := pullkit.Collect(subject.Get(t))
			assert.Must(t).NoError(err)
			assert.Must(t).Equal([]int{1, 2, 3}, vs)
		})
	})
}

func TestInstrument_contract(t *testing.T) {
	pullkitcontract.Iterator[int](func(tb testing.TB) *pullkit.Iterator[int] {
		m, err := pullobserve.NewMetrics(nil)
		assert.NoError(tb, err)
		return pullobserve.Instrument(context.Background(), pullobserve.Observer{Metrics: m}, "contract", pullkit.Slice([]int{1, 2, 3}))
	}).Test(t)
}
