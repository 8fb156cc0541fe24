// Package pullgrep searches lines of files and directories for a regular expression,
// streaming every line through a lazy pull iterator pipeline.
package pullgrep

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.llib.dev/frameless/pkg/errorkit"
	"go.llib.dev/frameless/pkg/logging"

	"go.llib.dev/lazyiter/pkg/pullio"
	"go.llib.dev/lazyiter/pkg/pullkit"
	"go.llib.dev/lazyiter/pkg/pullobserve"
)

const ErrInvalidPattern errorkit.Error = "pullgrep: invalid pattern"

// Options control what a Search matches and how matches are printed.
type Options struct {
	Pattern string
	// Invert selects the non-matching lines.
	Invert       bool
	WithFilename bool
	LineNumber   bool
	// Skip drops the first Skip matches.
	Skip int
	// MaxCount stops after MaxCount printed matches, zero means no limit.
	MaxCount int
	// Nth prints only the Nth match, counting from one after the skipped matches.
	Nth          int
	MaxLineBytes int
}

// Search matches lines of its inputs against a pattern.
// Stdin is searched when no input is given.
type Search struct {
	Options Options
	// Stdin is searched when there are no inputs.
	Stdin    io.Reader
	Observer pullobserve.Observer
}

type matcher struct {
	Regexp *regexp.Regexp
	Invert bool
}

func matchLine(l FileLine, m matcher) (bool, error) {
	return m.Regexp.MatchString(l.Text) != m.Invert, nil
}

type formatter struct {
	WithFilename bool
	LineNumber   bool
}

func formatLine(l FileLine, f formatter) (string, error) {
	var b strings.Builder
	if f.WithFilename {
		b.WriteString(l.Name)
		b.WriteByte(':')
	}
	if f.LineNumber {
		b.WriteString(strconv.Itoa(l.Number))
		b.WriteByte(':')
	}
	b.WriteString(l.Text)
	return b.String(), nil
}

// Matches builds the pipeline that yields the formatted matching lines of the inputs.
// Nothing is read until the returned iterator is advanced.
func (s Search) Matches(ctx context.Context, inputs []Input) (*pullkit.Iterator[string], error) {
	re, err := regexp.Compile(s.Options.Pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}

	var opts []pullio.Option
	if 0 < s.Options.MaxLineBytes {
		opts = append(opts, pullio.MaxLineSize(s.Options.MaxLineBytes))
	}

	var lines *pullkit.Iterator[FileLine]
	if len(inputs) == 0 && s.Stdin != nil {
		lines = readerLines("(standard input)", s.Stdin, opts...)
	}
	for _, in := range inputs {
		lines = pullkit.Chain(lines, inputLines(ctx, in, opts...))
	}
	if lines == nil {
		lines = pullkit.Slice[FileLine](nil)
	}
	lines = pullobserve.Instrument(ctx, s.Observer, "lines", lines)

	matches := pullkit.Filter(lines, matchLine, matcher{Regexp: re, Invert: s.Options.Invert}, nil)
	matches = pullobserve.Instrument(ctx, s.Observer, "matches", matches)

	return pullkit.Map(matches, formatLine, formatter{
		WithFilename: s.Options.WithFilename,
		LineNumber:   s.Options.LineNumber,
	}, nil), nil
}

// Run writes the selected matches to w, one per line, and returns how many it wrote.
func (s Search) Run(ctx context.Context, inputs []Input, w io.Writer) (n int, rErr error) {
	it, err := s.Matches(ctx, inputs)
	if err != nil {
		return 0, err
	}
	defer errorkit.Finish(&rErr, it.Close)

	if l := s.Observer.Logger; l != nil {
		l.Debug(ctx, "search started",
			logging.Field("pattern", s.Options.Pattern),
			logging.Field("inputs", len(inputs)))
	}

	it.Skip(s.Options.Skip)

	if 0 < s.Options.Nth {
		res := it.Nth(s.Options.Nth - 1)
		if !res.OK() {
			return 0, it.Err()
		}
		if _, err := fmt.Fprintln(w, res.Value); err != nil {
			return 0, err
		}
		return 1, nil
	}

	for res := it.Advance(); res.OK(); res = it.Advance() {
		if _, err := fmt.Fprintln(w, res.Value); err != nil {
			return n, err
		}
		n++
		if 0 < s.Options.MaxCount && s.Options.MaxCount <= n {
			break
		}
	}
	return n, it.Err()
}
