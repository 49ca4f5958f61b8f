package walker

import (
	"context"
	"sync"

	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/profile"
)

// ParallelWalker traverses with a bounded pool of workers consuming a shared
// queue of directories. Each worker classifies children into its own local
// accumulator, so per-entry work involves no shared counters; the only
// synchronization on the hot path is queue push/pop. Local accumulators are
// merged once, at termination, via the associative merge - O(workers) merges
// for the whole scan.
//
// Depth is carried with each task rather than derived from traversal order,
// so the out-of-order merge never affects the depth histogram.
type ParallelWalker struct {
	list listFunc
}

// NewParallelWalker creates the CPU-parallel backend.
func NewParallelWalker() *ParallelWalker {
	return &ParallelWalker{list: osList}
}

// Name returns the backend name.
func (w *ParallelWalker) Name() string { return NameParallel }

// Walk seeds the queue with root, runs cfg.Workers() workers to exhaustion
// and merges their local accumulators. Directory-listing errors are recorded
// in the owning worker's local error list and never stop other workers. On
// cancellation the queue is closed, workers drain out, and the partial merge
// is returned with ErrScanCancelled.
func (w *ParallelWalker) Walk(ctx context.Context, root string, cfg Config) (*profile.Accumulator, error) {
	workers := cfg.Workers()
	queue := newDirQueue()
	visited := newVisitedSet()
	prog := newProgressTracker(cfg)

	if cfg.FollowSymlinks {
		visited.mark(root)
	}

	queue.push(dirTask{path: root, depth: 0})

	// Wake blocked workers if the caller aborts.
	stop := context.AfterFunc(ctx, queue.close)
	defer stop()

	locals := make([]*profile.Accumulator, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		local := profile.NewAccumulator(cfg.FastPathOnly)
		locals[i] = local

		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				t, ok := queue.pop()
				if !ok {
					return
				}
				processDir(t, w.list, cfg, local, visited, queue.push, prog)
				queue.done()
			}
		}()
	}
	wg.Wait()

	merged := profile.NewAccumulator(cfg.FastPathOnly)
	for _, local := range locals {
		merged.Merge(local)
	}

	if err := ctx.Err(); err != nil {
		logger.Debug("parallel walk cancelled", "workers", workers)
		return merged, ErrScanCancelled
	}

	logger.Debug("parallel walk complete",
		"workers", workers, "files", merged.Files, "folders", merged.Folders)
	return merged, nil
}
