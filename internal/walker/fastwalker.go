package walker

import (
	"context"
	"io/fs"
	"path/filepath"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/profile"
)

// FastwalkWalker is a concurrent discovery backend built on the fastwalk
// library. fastwalk owns the traversal strategy (including symlink-cycle
// handling in follow mode); this walker reduces its entry stream into the
// profile schema. The callback runs on multiple goroutines, so reduction is
// guarded by a mutex rather than the per-worker accumulators of the parallel
// backend - child counts are only known once the whole stream is seen, so
// directory records are finalized after the walk.
type FastwalkWalker struct{}

// NewFastwalkWalker creates the fastwalk-based backend.
func NewFastwalkWalker() *FastwalkWalker {
	return &FastwalkWalker{}
}

// Name returns the backend name.
func (w *FastwalkWalker) Name() string { return NameFastwalk }

// Walk traverses root with fastwalk and folds the entry stream into an
// accumulator. Emptiness is derived from observed parent/child relationships:
// a successfully listed directory that parents no observed entry is empty.
func (w *FastwalkWalker) Walk(ctx context.Context, root string, cfg Config) (*profile.Accumulator, error) {
	acc := profile.NewAccumulator(cfg.FastPathOnly)
	prog := newProgressTracker(cfg)
	cleanRoot := filepath.Clean(root)

	var mu sync.Mutex
	dirDepth := map[string]int{}
	childCount := map[string]int{}
	unlisted := map[string]bool{}

	conf := fastwalk.Config{
		Follow:     cfg.FollowSymlinks,
		NumWorkers: cfg.Workers(),
	}

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return fs.SkipAll
		}

		if err != nil {
			// Listing failure for a directory already observed as an entry:
			// record the error and withdraw it from emptiness eligibility.
			mu.Lock()
			unlisted[path] = true
			acc.AddError(profile.ScanError{
				Path:    path,
				Kind:    classifyError(err),
				Message: err.Error(),
			})
			mu.Unlock()
			return nil
		}

		if path == cleanRoot {
			mu.Lock()
			dirDepth[path] = 0
			mu.Unlock()
			prog.observe(0, 1)
			return nil
		}

		depth, derr := relDepth(cleanRoot, path)
		if derr != nil {
			return nil
		}
		isDir := resolveChildDir(path, d, cfg)

		mu.Lock()
		childCount[filepath.Dir(path)]++
		if isDir {
			dirDepth[path] = depth
			if !canDescend(cfg, depth) {
				unlisted[path] = true
				mu.Unlock()
				prog.observe(0, 1)
				return fastwalk.SkipDir
			}
			mu.Unlock()
			prog.observe(0, 1)
			return nil
		}
		acc.AddFile(fileEntry(filepath.Dir(path), depth, d, cfg.FastPathOnly))
		mu.Unlock()
		prog.observe(1, 0)
		return nil
	}

	walkErr := fastwalk.Walk(&conf, cleanRoot, walkFn)

	// Finalize directory records now that all children have been observed.
	for path, depth := range dirDepth {
		if unlisted[path] {
			acc.AddDirUnlisted(depth)
		} else {
			acc.AddDir(depth, childCount[path])
		}
	}

	if err := ctx.Err(); err != nil {
		return acc, ErrScanCancelled
	}
	if walkErr != nil {
		logger.Debug("fastwalk finished with error", "error", walkErr)
	}
	return acc, nil
}
