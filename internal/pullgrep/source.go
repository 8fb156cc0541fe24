package pullgrep

import (
	"context"
	"io"
	"io/fs"
	"strings"

	"go.llib.dev/frameless/pkg/errorkit"

	"go.llib.dev/lazyiter/pkg/pullfs"
	"go.llib.dev/lazyiter/pkg/pullio"
	"go.llib.dev/lazyiter/pkg/pullkit"
)

// Input is a file or directory to search.
// Name is how the input is shown in the output.
// Path is its slash separated location in FS.
type Input struct {
	FS   fs.FS
	Name string
	Path string
}

// nameOf maps the path of a walked entry under the input to its displayed name.
func (in Input) nameOf(p string) string {
	if p == in.Path {
		return in.Name
	}
	rel := p
	if in.Path != "." {
		rel = strings.TrimPrefix(p, in.Path+"/")
	}
	return strings.TrimSuffix(in.Name, "/") + "/" + rel
}

// FileLine is a line of a searched file.
type FileLine struct {
	Name string
	pullio.Line
}

// treeLines yields the lines of every regular file under an input, file by file.
// A file is opened only when the previous one is exhausted.
type treeLines struct {
	Context context.Context
	Input   Input
	Options []pullio.Option

	Walk    *pullkit.Iterator[pullfs.Entry]
	Name    string
	Current *pullkit.Iterator[pullio.Line]
}

func inputLines(ctx context.Context, in Input, opts ...pullio.Option) *pullkit.Iterator[FileLine] {
	return pullkit.NewFinite(nextTreeLine, &treeLines{
		Context: ctx,
		Input:   in,
		Options: opts,
		Walk:    pullfs.Walk(in.FS, in.Path),
	}, releaseTreeLines)
}

func nextTreeLine(tl *treeLines) (FileLine, bool, error) {
	for {
		if tl.Current != nil {
			switch res := tl.Current.Advance(); res.Status {
			case pullkit.StatusReady:
				return FileLine{Name: tl.Name, Line: res.Value}, true, nil
			case pullkit.StatusExhausted:
				err := tl.Current.Close()
				tl.Current = nil
				if err != nil {
					return FileLine{}, false, err
				}
			default:
				return FileLine{}, false, tl.Current.Err()
			}
		}

		if err := tl.Context.Err(); err != nil {
			return FileLine{}, false, err
		}
		res := tl.Walk.Advance()
		if res.Status == pullkit.StatusExhausted {
			return FileLine{}, false, nil
		}
		if res.Status == pullkit.StatusError {
			return FileLine{}, false, tl.Walk.Err()
		}
		if !res.Value.IsRegular() {
			continue
		}
		f, err := tl.Input.FS.Open(res.Value.Path)
		if err != nil {
			return FileLine{}, false, err
		}
		tl.Name = tl.Input.nameOf(res.Value.Path)
		tl.Current = pullio.Lines(f, tl.Options...)
	}
}

func releaseTreeLines(tl *treeLines) error {
	return errorkit.Merge(tl.Current.Close(), tl.Walk.Close())
}

// readerLines leaves r open, even if it is an io.Closer.
func readerLines(name string, r io.Reader, opts ...pullio.Option) *pullkit.Iterator[FileLine] {
	return pullkit.Map(pullio.Lines(struct{ io.Reader }{r}, opts...), func(l pullio.Line, input string) (FileLine, error) {
		return FileLine{Name: input, Line: l}, nil
	}, name, nil)
}
