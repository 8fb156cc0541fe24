package pullkitcontract

import (
	"testing"

	"go.llib.dev/testcase"
	"go.llib.dev/testcase/assert"

	"go.llib.dev/lazyiter/pkg/pullkit"
)

// Iterator is the behaviour every *pullkit.Iterator shows, regardless of the generator behind it.
// The constructor must return a fresh iterator with at least one element on each call.
type Iterator[T any] func(tb testing.TB) *pullkit.Iterator[T]

func (c Iterator[T]) Spec(s *testcase.Spec) {
	s.Describe("it behaves like a pull iterator", func(s *testcase.Spec) {
		subject := testcase.Let(s, func(t *testcase.T) *pullkit.Iterator[T] {
			it := c(t)
			t.Cleanup(func() { _ = it.Close() })
			return it
		})

		s.Then("it starts ready", func(t *testcase.T) {
			assert.Must(t).True(subject.Get(t).IsReady())
			assert.Must(t).Equal(pullkit.StatusReady, subject.Get(t).Status())
		})

		s.Then("values can be collected from the iterator", func(t *testcase.T) {
			vs, err := pullkit.Collect(subject.Get(t))
			assert.Must(t).NoError(err)
			assert.Must(t).NotEmpty(vs)
		})

		s.Then("peek is repeatable until the next advance", func(t *testcase.T) {
			it := subject.Get(t)
			exp := it.Peek()
			for i, n := 0, t.Random.IntB(2, 5); i < n; i++ {
				assert.Must(t).Equal(exp, it.Peek())
			}
			assert.Must(t).Equal(exp, it.Advance())
		})

		s.Then("skipping zero elements changes nothing", func(t *testcase.T) {
			it := subject.Get(t)
			exp := it.Peek()
			assert.Must(t).Equal(pullkit.StatusReady, it.Skip(0))
			assert.Must(t).Equal(exp, it.Advance())
		})

		s.Then("after the iteration ended, the terminal result is sticky", func(t *testcase.T) {
			it := subject.Get(t)
			for it.Advance().OK() {
			}
			status := it.Status()
			assert.Must(t).True(status == pullkit.StatusExhausted || status == pullkit.StatusError)
			for i, n := 0, t.Random.IntB(2, 5); i < n; i++ {
				assert.Must(t).Equal(status, it.Advance().Status)
				assert.Must(t).Equal(status, it.Peek().Status)
				assert.Must(t).Equal(status, it.Status())
			}
		})

		s.Then("closing the iterator is possible, even multiple times, without an issue", func(t *testcase.T) {
			it := subject.Get(t)
			for i, n := 0, t.Random.IntB(3, 7); i < n; i++ {
				assert.Must(t).NoError(it.Close())
			}
		})

		s.When("iterator is closed", func(s *testcase.Spec) {
			s.Before(func(t *testcase.T) {
				assert.Must(t).NoError(subject.Get(t).Close())
			})

			s.Then("no more value is iterated", func(t *testcase.T) {
				vs, err := pullkit.Collect(subject.Get(t))
				assert.Must(t).NoError(err)
				assert.Must(t).Empty(vs)
				assert.Must(t).True(subject.Get(t).IsExhausted())
			})
		})
	})
}

func (c Iterator[T]) Test(t *testing.T) {
	c.Spec(testcase.NewSpec(t))
}

func (c Iterator[T]) Benchmark(b *testing.B) {
	c.Spec(testcase.NewSpec(b))
}
