package pullkit

import "iter"

// Slice creates a finite iterator over the elements of a slice.
func Slice[T any](vs []T) *Iterator[T] {
	return NewFinite(nextSliceElem[T], &sliceCursor[T]{Values: vs}, nil)
}

type sliceCursor[T any] struct {
	Values []T
	Index  int
}

func nextSliceElem[T any](c *sliceCursor[T]) (T, bool, error) {
	if len(c.Values) <= c.Index {
		var zero T
		return zero, false, nil
	}
	v := c.Values[c.Index]
	c.Index++
	return v, true, nil
}

// FromSeq pulls the values of a range-over-func sequence through an Iterator.
// A non-nil error yielded by the sequence moves the iterator into StatusError.
// Closing the iterator stops the sequence.
func FromSeq[T any](seq iter.Seq2[T, error]) *Iterator[T] {
	next, stop := iter.Pull2(seq)
	return New(func(pull *seqPull[T]) (T, bool, error) {
		v, err, ok := pull.Next()
		if !ok {
			var zero T
			return zero, false, nil
		}
		return v, err == nil, err
	}, &seqPull[T]{Next: next, Stop: stop}, func(pull *seqPull[T]) error {
		pull.Stop()
		return nil
	})
}

type seqPull[T any] struct {
	Next func() (T, error, bool)
	Stop func()
}
