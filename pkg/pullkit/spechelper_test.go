package pullkit_test

import (
	"go.llib.dev/lazyiter/pkg/pullkit"
)

// Counter is a generator context that counts from its starting Value up to Limit.
// The generator yields a pointer to Value itself, so every yielded reference aliases the context.
type Counter struct {
	Value int
	Limit int

	Calls    int
	Releases int
}

func NextCount(c *Counter) (*int, bool, error) {
	c.Calls++
	if c.Limit <= c.Value {
		return nil, false, nil
	}
	c.Value++
	return &c.Value, true, nil
}

func ReleaseCounter(c *Counter) error {
	c.Releases++
	return nil
}

func NewCounter(c *Counter) *pullkit.Iterator[*int] {
	return pullkit.NewFinite(NextCount, c, ReleaseCounter)
}

// NewIntCounter is like NewCounter but yields copies, for tests that keep the values around.
func NewIntCounter(c *Counter) *pullkit.Iterator[int] {
	return pullkit.NewFinite(func(c *Counter) (int, bool, error) {
		v, ok, err := NextCount(c)
		if !ok {
			return 0, ok, err
		}
		return *v, true, nil
	}, c, ReleaseCounter)
}

// Failing is a generator context that fails after yielding N values.
type Failing struct {
	N     int
	Err   error
	Calls int
}

func NextFailing(f *Failing) (int, bool, error) {
	f.Calls++
	if f.N < f.Calls {
		return 0, false, f.Err
	}
	return f.Calls, true, nil
}

func deref(res pullkit.Result[*int]) int {
	if res.Value == nil {
		return 0
	}
	return *res.Value
}
