package pullkit

import (
	"iter"

	"go.llib.dev/frameless/pkg/errorkit"
)

// Break can be returned from a ForEach callback to stop the iteration early without an error.
const Break errorkit.Error = `pullkit:break`

// Collect drains the iterator into a slice and closes it.
// For references yielded by the generator, only the references are collected.
func Collect[T any](it *Iterator[T]) (vs []T, rErr error) {
	defer errorkit.Finish(&rErr, it.Close)
	vs = make([]T, 0)
	for res := it.Advance(); res.OK(); res = it.Advance() {
		vs = append(vs, res.Value)
	}
	return vs, it.Err()
}

// Count will iterate over and count the total iterations number
//
// Good when all you want is count all the elements in an iterator but don't want to do anything else.
func Count[T any](it *Iterator[T]) (total int, rErr error) {
	defer errorkit.Finish(&rErr, it.Close)
	for it.Advance().OK() {
		total++
	}
	return total, it.Err()
}

// ForEach calls fn with every value until the iterator ends or fn returns an error.
// Returning Break from fn stops the iteration without an error.
// The iterator is closed when ForEach returns.
func ForEach[T any](it *Iterator[T], fn func(T) error) (rErr error) {
	defer errorkit.Finish(&rErr, it.Close)
	for res := it.Advance(); res.OK(); res = it.Advance() {
		err := fn(res.Value)
		if err == Break {
			return nil
		}
		if err != nil {
			return err
		}
	}
	return it.Err()
}

// ToSeq turns the iterator into a range-over-func sequence.
// The iterator is closed when the range loop finishes, including breaking out of it early.
// An iterator failure or a close error is yielded as the last element, with the zero value.
// After an early break nothing can be yielded anymore, so the close error is dropped;
// call Close on the iterator before breaking when that error matters.
func ToSeq[T any](it *Iterator[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for res := it.Advance(); res.OK(); res = it.Advance() {
			if !yield(res.Value, nil) {
				_ = it.Close()
				return
			}
		}
		if err := errorkit.Merge(it.Err(), it.Close()); err != nil {
			var zero T
			yield(zero, err)
		}
	}
}
