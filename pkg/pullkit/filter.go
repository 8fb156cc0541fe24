package pullkit

import "go.llib.dev/frameless/pkg/errorkit"

// PredicateFunc tells whether a value should be kept by Filter.
// A non-nil error is a fault, not a mismatch.
type PredicateFunc[T, C any] func(v T, ctx C) (bool, error)

// Filter returns an iterator that yields only the values of inner that match.
//
// Filter takes ownership of inner, the caller must not use it afterwards.
// On close, release is called with ctx first, then inner is closed.
// A nil inner is treated as an empty finite iterator.
//
// Exhaustion and errors of inner are passed through as they are.
// When match fails, the filter iterator moves to StatusError with that error,
// even if inner still has values.
func Filter[T, C any](inner *Iterator[T], match PredicateFunc[T, C], ctx C, release ReleaseFunc[C]) *Iterator[T] {
	if inner == nil {
		inner = Slice[T](nil)
	}
	return newIterator[T](&filterSource[T, C]{
		Inner:   inner,
		Match:   match,
		Ctx:     ctx,
		Release: release,
	}, inner.IsFinite())
}

type filterSource[T, C any] struct {
	Inner   *Iterator[T]
	Match   PredicateFunc[T, C]
	Ctx     C
	Release ReleaseFunc[C]
}

func (s *filterSource[T, C]) next() (T, bool, error) {
	var zero T
	for {
		res := s.Inner.Advance()
		switch res.Status {
		case StatusReady:
			ok, err := s.Match(res.Value, s.Ctx)
			if err != nil {
				return zero, false, err
			}
			if ok {
				return res.Value, true, nil
			}
		case StatusExhausted:
			return zero, false, nil
		default:
			return zero, false, s.Inner.Err()
		}
	}
}

func (s *filterSource[T, C]) release() error {
	var errs []error
	if s.Release != nil {
		errs = append(errs, s.Release(s.Ctx))
	}
	errs = append(errs, s.Inner.Close())
	return errorkit.Merge(errs...)
}

func (s *filterSource[T, C]) context() any { return s.Ctx }
