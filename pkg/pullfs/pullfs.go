// Package pullfs walks file systems lazily through pull iterators.
package pullfs

import (
	"io/fs"
	"path"

	"go.llib.dev/lazyiter/pkg/pullkit"
)

// Entry is a file system entry found during a Walk.
// Path is the slash separated path of the entry, rooted at the walk root.
type Entry struct {
	Path     string
	DirEntry fs.DirEntry
}

func (e Entry) IsDir() bool { return e.DirEntry.IsDir() }

// IsRegular reports whether the entry is a regular file.
func (e Entry) IsRegular() bool { return e.DirEntry.Type().IsRegular() }

// Walk iterates over the file tree rooted at root in depth-first, lexical order,
// the same order as fs.WalkDir, starting with root itself.
//
// A directory is read only when the walk reaches it.
// Failing to stat the root or to read a directory moves the iterator into StatusError.
func Walk(fsys fs.FS, root string) *pullkit.Iterator[Entry] {
	return pullkit.NewFinite(nextEntry, &walker{FS: fsys, Root: root}, nil)
}

type walker struct {
	FS   fs.FS
	Root string

	started bool
	pending []Entry
}

func nextEntry(w *walker) (Entry, bool, error) {
	if !w.started {
		w.started = true
		info, err := fs.Stat(w.FS, w.Root)
		if err != nil {
			return Entry{}, false, err
		}
		w.pending = append(w.pending, Entry{Path: w.Root, DirEntry: fs.FileInfoToDirEntry(info)})
	}
	if len(w.pending) == 0 {
		return Entry{}, false, nil
	}
	last := len(w.pending) - 1
	e := w.pending[last]
	w.pending = w.pending[:last]
	if e.IsDir() {
		des, err := fs.ReadDir(w.FS, e.Path)
		if err != nil {
			return Entry{}, false, err
		}
		// pushed in reverse so the lexically first child is popped first
		for i := len(des) - 1; 0 <= i; i-- {
			w.pending = append(w.pending, Entry{Path: path.Join(e.Path, des[i].Name()), DirEntry: des[i]})
		}
	}
	return e, true, nil
}
