package walker

import (
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/filoma/filoma/internal/profile"
)

// progressTracker maintains live counts for the optional progress callback.
// Counters are atomic so parallel workers can bump them without locking; the
// callback itself decides how often to actually render anything.
type progressTracker struct {
	cfg     Config
	start   time.Time
	files   atomic.Int64
	folders atomic.Int64
}

func newProgressTracker(cfg Config) *progressTracker {
	return &progressTracker{cfg: cfg, start: time.Now()}
}

// observe records per-directory deltas and fires the progress callback.
func (p *progressTracker) observe(files, folders int64) {
	if p.cfg.OnProgress == nil {
		return
	}
	f := p.files.Add(files)
	d := p.folders.Add(folders)
	p.cfg.OnProgress(Progress{
		Files:   f,
		Folders: d,
		Elapsed: time.Since(p.start),
	})
}

// processDir lists one directory and reduces its children into acc.
// Child directories eligible for descent are handed to enqueue; everything
// else is classified and recorded immediately. Listing failures are recorded
// as per-path errors and the subtree is skipped, never aborting the scan.
func processDir(t dirTask, list listFunc, cfg Config, acc *profile.Accumulator, visited *visitedSet, enqueue func(dirTask), prog *progressTracker) {
	entries, err := list(t.path)
	if err != nil {
		acc.AddDirUnlisted(t.depth)
		acc.AddError(profile.ScanError{
			Path:    t.path,
			Kind:    classifyError(err),
			Message: err.Error(),
		})
		prog.observe(0, 1)
		return
	}

	acc.AddDir(t.depth, len(entries))

	childDepth := t.depth + 1
	var files int64
	for _, d := range entries {
		childPath := filepath.Join(t.path, d.Name())

		if !resolveChildDir(childPath, d, cfg) {
			acc.AddFile(fileEntry(t.path, childDepth, d, acc.FastPath()))
			files++
			continue
		}

		if cfg.FollowSymlinks && visited.mark(childPath) {
			acc.AddDirUnlisted(childDepth)
			acc.AddError(profile.ScanError{
				Path:    childPath,
				Kind:    profile.KindSymlinkCycle,
				Message: "already visited, skipping to break cycle",
			})
			continue
		}

		if !canDescend(cfg, childDepth) {
			acc.AddDirUnlisted(childDepth)
			continue
		}

		enqueue(dirTask{path: childPath, depth: childDepth})
	}

	prog.observe(files, 1)
}
