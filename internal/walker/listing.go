package walker

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/filoma/filoma/internal/profile"
)

// dirTask is one unit of traversal work: a directory awaiting listing.
type dirTask struct {
	path  string
	depth int
}

// listFunc lists a directory. Backends use osList in production; tests inject
// fakes to simulate latency, timeouts and transient failures.
type listFunc func(path string) ([]fs.DirEntry, error)

func osList(path string) ([]fs.DirEntry, error) {
	return os.ReadDir(path)
}

// visitedSet tracks filesystem identities (device+inode) already descended
// into, scoped to one scan invocation. It breaks symlink cycles and prevents
// double-counting hardlinked directories when following links. Safe for
// concurrent use by parallel workers.
type visitedSet struct {
	mu   sync.Mutex
	seen map[fileIdentity]struct{}
}

func newVisitedSet() *visitedSet {
	return &visitedSet{seen: make(map[fileIdentity]struct{})}
}

// mark records the identity of path and reports whether it was already
// visited. An identity lookup failure is treated as unvisited: missing
// identity support (non-unix platforms) must not block traversal.
func (v *visitedSet) mark(path string) bool {
	id, ok := identityOf(path)
	if !ok {
		return false
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, dup := v.seen[id]; dup {
		return true
	}
	v.seen[id] = struct{}{}
	return false
}

// classifyError maps a listing or stat error to its scan error kind.
func classifyError(err error) profile.ErrorKind {
	switch {
	case errors.Is(err, fs.ErrPermission):
		return profile.KindPermission
	case errors.Is(err, errListTimeout):
		return profile.KindTimeout
	default:
		return profile.KindIO
	}
}

// fileEntry builds the profile record for a non-directory child.
// In fast-path mode no Info call is made: the record carries only the path,
// depth and name-derived extension.
func fileEntry(parent string, depth int, d fs.DirEntry, fastPath bool) profile.Entry {
	e := profile.Entry{
		Path:  filepath.Join(parent, d.Name()),
		Depth: depth,
		Ext:   profile.Ext(d.Name()),
	}
	if fastPath {
		return e
	}
	if info, err := d.Info(); err == nil {
		e.Size = info.Size()
		e.ModTime = info.ModTime()
	}
	return e
}

// resolveChildDir decides how to treat a directory-like child: a plain
// directory descends normally; a symlink descends only when the config allows
// it and the target is a directory. It returns whether the child should be
// traversed as a directory.
func resolveChildDir(path string, d fs.DirEntry, cfg Config) bool {
	if d.IsDir() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 || !cfg.FollowSymlinks {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
