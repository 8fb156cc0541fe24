// Package pullkit provides a pull based lazy iterator with lookahead.
//
// # Summary
//
// An Iterator yields a sequence of values one at a time, on demand,
// from a generator function and the private context the generator works on.
// Nothing is produced until the consumer asks for it,
// and the sequence is never materialised as a whole.
//
// The consumer can look at the upcoming element with Peek without consuming it,
// and move forward with Advance.
// The generator is called at most once per element,
// no matter how many times the element was peeked,
// which matters when the generator has side effects like reading from a stream.
//
// Filter, Map and Chain build new iterators out of existing ones.
// A combinator takes ownership of the iterators it wraps:
// closing the combinator closes everything it owns, exactly once.
//
// # Statuses
//
// An Iterator is Ready until it observes the end of its sequence (Exhausted)
// or a fault (Error). Both terminal statuses are sticky:
// once observed, the generator is never called again.
//
// Peek caches an exhausted result without changing the status,
// so the end of the sequence can be previewed without committing to it.
// A generator fault on the other hand moves the iterator into Error right away.
//
// # Value lifetime
//
// When T is a pointer, slice or map type, the value in a Result may alias storage owned by the generator.
// Such a value is only valid until the next advancing call on the same iterator.
// Copy it if you need to keep it.
//
// # Resources
//
// https://en.wikipedia.org/wiki/Iterator_pattern
// https://en.wikipedia.org/wiki/Lazy_evaluation
package pullkit

import (
	"go.llib.dev/frameless/pkg/errorkit"
)

// ErrNoGenerator is the error of an iterator constructed with a nil NextFunc.
const ErrNoGenerator errorkit.Error = "pullkit: iterator has no generator function"

// Status is the last observed state of an Iterator.
type Status int

const (
	StatusReady Status = iota
	StatusError
	StatusExhausted
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusError:
		return "error"
	case StatusExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// Result is the outcome of a Peek or an Advance.
// Value is only meaningful when Status is StatusReady,
// otherwise it holds the zero value of T.
type Result[T any] struct {
	Status Status
	Value  T
}

// OK reports whether the result carries a value.
func (r Result[T]) OK() bool { return r.Status == StatusReady }

// NextFunc is the generator of an Iterator.
// It returns the next value with ok set to true,
// ok false and a nil error when the sequence has ended,
// or a non-nil error when it failed to produce a value.
type NextFunc[T, C any] func(ctx C) (v T, ok bool, err error)

// ReleaseFunc frees the resources held by a generator context.
// It is called exactly once, when the owning Iterator is closed.
type ReleaseFunc[C any] func(ctx C) error

// Iterator is a single owner, pull driven sequence.
// It is not safe for concurrent use.
type Iterator[T any] struct {
	status Status
	finite bool

	result Result[T]
	cached bool
	err    error

	src    source[T]
	closed bool
}

type source[T any] interface {
	next() (T, bool, error)
	release() error
	context() any
}

// New creates an Iterator around a generator and its context.
// The release function is optional, and when given,
// it will be called with the context when the Iterator is closed.
func New[T, C any](next NextFunc[T, C], ctx C, release ReleaseFunc[C]) *Iterator[T] {
	return newIterator[T](&funcSource[T, C]{
		Next:    next,
		Ctx:     ctx,
		Release: release,
	}, false)
}

// NewFinite is New for generators that are known to end.
// Finiteness is a declared property, the iterator does not verify it.
func NewFinite[T, C any](next NextFunc[T, C], ctx C, release ReleaseFunc[C]) *Iterator[T] {
	return newIterator[T](&funcSource[T, C]{
		Next:    next,
		Ctx:     ctx,
		Release: release,
	}, true)
}

func newIterator[T any](src source[T], finite bool) *Iterator[T] {
	return &Iterator[T]{
		status: StatusReady,
		finite: finite,
		src:    src,
	}
}

// Peek returns the upcoming result without consuming it.
// Repeated calls without an Advance in between return the same result
// and call the generator at most once.
func (it *Iterator[T]) Peek() Result[T] {
	if it.status != StatusReady || it.cached {
		return it.result
	}
	v, ok, err := it.src.next()
	switch {
	case err != nil:
		it.status = StatusError
		it.err = err
		it.result = Result[T]{Status: StatusError}
	case !ok:
		// the status changes only when the exhaustion is consumed
		it.result = Result[T]{Status: StatusExhausted}
		it.cached = true
	default:
		it.result = Result[T]{Status: StatusReady, Value: v}
		it.cached = true
	}
	return it.result
}

// Advance consumes and returns the next result.
// After the iterator is exhausted or failed,
// Advance keeps returning the same terminal result without calling the generator.
func (it *Iterator[T]) Advance() Result[T] {
	it.Peek()
	it.status = it.result.Status
	it.cached = false
	return it.result
}

// Skip advances the iterator n times, or until it stops being ready.
// It returns the status of the iterator afterwards.
func (it *Iterator[T]) Skip(n int) Status {
	for ; 0 < n; n-- {
		if !it.Advance().OK() {
			break
		}
	}
	return it.status
}

// Nth consumes n elements and returns the one after them.
// Nth(0) is the same as Advance.
func (it *Iterator[T]) Nth(n int) Result[T] {
	it.Skip(n)
	return it.Advance()
}

// Status returns the last observed status. Peeking an exhausted result doesn't change it.
func (it *Iterator[T]) Status() Status { return it.status }

// IsReady reports whether Status is StatusReady.
func (it *Iterator[T]) IsReady() bool { return it.status == StatusReady }

// IsError reports whether Status is StatusError.
func (it *Iterator[T]) IsError() bool { return it.status == StatusError }

// IsExhausted reports whether Status is StatusExhausted.
func (it *Iterator[T]) IsExhausted() bool { return it.status == StatusExhausted }

// IsFinite reports whether the iterator was declared finite at construction.
func (it *Iterator[T]) IsFinite() bool { return it.finite }

// Err returns the cause of the failure when the iterator is in StatusError.
func (it *Iterator[T]) Err() error {
	if it.status != StatusError {
		return nil
	}
	return it.err
}

// Close releases the generator context and every iterator owned by this one.
// Close is safe to call on a nil Iterator and more than once;
// only the first call releases anything.
//
// Closing a ready iterator ends its sequence:
// further calls report StatusExhausted without touching the released generator.
func (it *Iterator[T]) Close() error {
	if it == nil || it.closed {
		return nil
	}
	it.closed = true
	if it.status == StatusReady {
		it.status = StatusExhausted
		it.result = Result[T]{Status: StatusExhausted}
		it.cached = false
	}
	return it.src.release()
}

// Context returns the context the iterator was constructed with.
// For Filter and Map, this is the context given to the combinator.
// The second result is false when it is nil or its context is not a C.
func Context[C, T any](it *Iterator[T]) (C, bool) {
	if it == nil || it.src == nil {
		var zero C
		return zero, false
	}
	ctx, ok := it.src.context().(C)
	return ctx, ok
}

type funcSource[T, C any] struct {
	Next    NextFunc[T, C]
	Ctx     C
	Release ReleaseFunc[C]
}

func (s *funcSource[T, C]) next() (T, bool, error) {
	if s.Next == nil {
		var zero T
		return zero, false, ErrNoGenerator
	}
	return s.Next(s.Ctx)
}

func (s *funcSource[T, C]) release() error {
	if s.Release == nil {
		return nil
	}
	return s.Release(s.Ctx)
}

func (s *funcSource[T, C]) context() any { return s.Ctx }
