package pullkit

import "go.llib.dev/frameless/pkg/errorkit"

// Chain concatenates two iterators: it yields every value of first, then every value of second.
//
// Chain takes ownership of both iterators.
// The first iterator is closed as soon as it is exhausted,
// the second one when it is exhausted or when the chain is closed.
// A nil iterator is treated as an empty one.
//
// An error of the active iterator is reported by the chain,
// and the failing iterator stays active.
// The chain is finite only if both of its parts are finite.
func Chain[T any](first, second *Iterator[T]) *Iterator[T] {
	finite := (first == nil || first.IsFinite()) && (second == nil || second.IsFinite())
	if first == nil {
		first, second = second, nil
	}
	return newIterator[T](&chainSource[T]{
		First:  first,
		Second: second,
	}, finite)
}

type chainSource[T any] struct {
	First  *Iterator[T]
	Second *Iterator[T]

	// closeErr holds the close errors of the iterators that were exhausted and dropped.
	closeErr error
}

func (s *chainSource[T]) next() (T, bool, error) {
	var zero T
	// each round either returns or promotes Second, so it ends after at most two rounds.
	for s.First != nil {
		res := s.First.Advance()
		switch res.Status {
		case StatusReady:
			return res.Value, true, nil
		case StatusExhausted:
			s.closeErr = errorkit.Merge(s.closeErr, s.First.Close())
			s.First, s.Second = s.Second, nil
		default:
			return zero, false, s.First.Err()
		}
	}
	return zero, false, nil
}

func (s *chainSource[T]) release() error {
	// Close is a no-op on empty slots.
	return errorkit.Merge(s.closeErr, s.First.Close(), s.Second.Close())
}

func (s *chainSource[T]) context() any { return nil }
