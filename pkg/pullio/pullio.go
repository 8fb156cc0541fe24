// Package pullio provides pull iterators over io.Reader content.
package pullio

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/iokit"

	"go.llib.dev/lazyiter/pkg/pullkit"
)

// ErrLineTooLong is returned when a line exceeds the configured MaxLineSize.
const ErrLineTooLong errorkit.Error = "pullio: line too long"

// DefaultMaxLineSize is the longest line Lines accepts unless MaxLineSize says otherwise.
const DefaultMaxLineSize = iokit.Megabyte

// Line is a single line of text without its line ending.
// Number is one based.
type Line struct {
	Number int
	Text   string
}

// Option configures Lines.
type Option interface {
	configure(*options)
}

type options struct {
	MaxLineSize int
}

type funcOption func(*options)

func (fn funcOption) configure(o *options) { fn(o) }

// MaxLineSize limits the size of a single line in bytes, excluding the line ending.
// A line of exactly size bytes is accepted; reaching a longer line moves the iterator into StatusError with ErrLineTooLong.
func MaxLineSize(size int) Option {
	return funcOption(func(o *options) {
		if 0 < size {
			o.MaxLineSize = size
		}
	})
}

// Lines creates a finite iterator over the lines of r.
// When r is an io.Closer, closing the iterator closes r.
func Lines(r io.Reader, opts ...Option) *pullkit.Iterator[Line] {
	o := options{MaxLineSize: DefaultMaxLineSize}
	for _, opt := range opts {
		opt.configure(&o)
	}
	scanner := bufio.NewScanner(r)
	// the scanner's limit covers the token and its "\r\n" ending
	scanner.Buffer(make([]byte, 0, min(o.MaxLineSize+2, 64*iokit.Kibibyte)), o.MaxLineSize+2)
	return pullkit.NewFinite(nextLine, &lineReader{Reader: r, Scanner: scanner, MaxLineSize: o.MaxLineSize}, releaseLines)
}

type lineReader struct {
	Reader      io.Reader
	Scanner     *bufio.Scanner
	MaxLineSize int
	Number      int
}

func nextLine(lr *lineReader) (Line, bool, error) {
	if !lr.Scanner.Scan() {
		err := lr.Scanner.Err()
		if errors.Is(err, bufio.ErrTooLong) {
			err = fmt.Errorf("%w: line %d: %w", ErrLineTooLong, lr.Number+1, err)
		}
		return Line{}, false, err
	}
	if text := lr.Scanner.Bytes(); lr.MaxLineSize < len(text) {
		return Line{}, false, fmt.Errorf("%w: line %d: %w", ErrLineTooLong, lr.Number+1, bufio.ErrTooLong)
	}
	lr.Number++
	return Line{Number: lr.Number, Text: lr.Scanner.Text()}, true, nil
}

func releaseLines(lr *lineReader) error {
	if closer, ok := lr.Reader.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
