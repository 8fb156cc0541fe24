package pullkit

import "go.llib.dev/frameless/pkg/errorkit"

// TransformFunc maps a value of inner into the value yielded by Map.
type TransformFunc[From, To, C any] func(v From, ctx C) (To, error)

// Map allows you to do additional transformation on the values.
// This is useful in cases, where you have to alter the input value,
// or change the type all together.
// Like when you read lines from an input stream,
// and then you map the line content to a certain data structure.
//
// Map takes ownership of inner, the caller must not use it afterwards.
// On close, release is called with ctx first, then inner is closed.
// A nil inner is treated as an empty finite iterator.
//
// Every advance of the map iterator advances inner exactly once.
// Exhaustion and errors of inner are passed through without calling transform.
func Map[From, To, C any](inner *Iterator[From], transform TransformFunc[From, To, C], ctx C, release ReleaseFunc[C]) *Iterator[To] {
	if inner == nil {
		inner = Slice[From](nil)
	}
	return newIterator[To](&mapSource[From, To, C]{
		Inner:     inner,
		Transform: transform,
		Ctx:       ctx,
		Release:   release,
	}, inner.IsFinite())
}

type mapSource[From, To, C any] struct {
	Inner     *Iterator[From]
	Transform TransformFunc[From, To, C]
	Ctx       C
	Release   ReleaseFunc[C]
}

func (s *mapSource[From, To, C]) next() (To, bool, error) {
	var zero To
	res := s.Inner.Advance()
	switch res.Status {
	case StatusReady:
		v, err := s.Transform(res.Value, s.Ctx)
		if err != nil {
			return zero, false, err
		}
		return v, true, nil
	case StatusExhausted:
		return zero, false, nil
	default:
		return zero, false, s.Inner.Err()
	}
}

func (s *mapSource[From, To, C]) release() error {
	var errs []error
	if s.Release != nil {
		errs = append(errs, s.Release(s.Ctx))
	}
	errs = append(errs, s.Inner.Close())
	return errorkit.Merge(errs...)
}

func (s *mapSource[From, To, C]) context() any { return s.Ctx }
