package walker

import (
	"context"
	"errors"
	"io/fs"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/profile"
)

// errListTimeout marks a directory listing that exceeded its per-operation
// deadline. Timeouts are transient: they are retried with backoff before
// being recorded as a permanent error for the path.
var errListTimeout = errors.New("directory listing timed out")

// NetworkAwareWalker is tuned for high-latency mounts. A single scheduler
// goroutine owns the pending queue and the aggregate; directory listings run
// as short-lived operations admitted through a weighted semaphore, so at most
// Inflight() operations are outstanding at once. The point is to maximize the
// number of in-flight requests, not thread-level parallelism: network
// filesystems tolerate many outstanding calls far better than CPU-style
// fan-out.
//
// Each operation carries a deadline; on timeout it is retried with doubling
// backoff (capped) up to the configured retry budget, after which the path is
// recorded as a permanent error. The admission slot is released the moment an
// operation completes, immediately admitting the next queued directory.
type NetworkAwareWalker struct {
	list listFunc
}

// NewNetworkAwareWalker creates the network-aware backend.
func NewNetworkAwareWalker() *NetworkAwareWalker {
	return &NetworkAwareWalker{list: osList}
}

// Name returns the backend name.
func (w *NetworkAwareWalker) Name() string { return NameNetwork }

// opResult is what one completed listing operation hands back to the
// scheduler: a per-batch partial aggregate plus the child directories
// discovered.
type opResult struct {
	partial  *profile.Accumulator
	children []dirTask
}

// Walk runs the cooperative scheduler loop. Aggregation uses the same
// accumulator-merge discipline as the parallel backend, scoped per listing
// batch rather than per worker: the scheduler is the only goroutine that
// touches the final aggregate, so the admission gate is the sole piece of
// shared mutable state.
func (w *NetworkAwareWalker) Walk(ctx context.Context, root string, cfg Config) (*profile.Accumulator, error) {
	gate := semaphore.NewWeighted(int64(cfg.Inflight()))
	visited := newVisitedSet()
	prog := newProgressTracker(cfg)
	acc := profile.NewAccumulator(cfg.FastPathOnly)

	if cfg.FollowSymlinks {
		visited.mark(root)
	}

	results := make(chan opResult)
	pending := []dirTask{{path: root, depth: 0}}
	outstanding := 0
	cancelled := false
	ctxDone := ctx.Done()

	for {
		// Admit queued directories while the gate has free slots. TryAcquire
		// keeps the scheduler from blocking away from the results channel.
		if !cancelled {
			for len(pending) > 0 && gate.TryAcquire(1) {
				t := pending[len(pending)-1]
				pending = pending[:len(pending)-1]
				outstanding++
				go w.listOp(ctx, t, cfg, gate, visited, prog, results)
			}
		}

		if outstanding == 0 && (cancelled || len(pending) == 0) {
			break
		}

		select {
		case r := <-results:
			outstanding--
			acc.Merge(r.partial)
			if !cancelled {
				pending = append(pending, r.children...)
			}
		case <-ctxDone:
			// Stop admitting new work; in-flight operations drain out and
			// their partial aggregates are still merged.
			cancelled = true
			ctxDone = nil
			logger.Debug("network walk cancelled",
				"outstanding", outstanding, "pending", len(pending))
		}
	}

	if cancelled {
		return acc, ErrScanCancelled
	}

	logger.Debug("network walk complete",
		"inflight_cap", cfg.Inflight(), "files", acc.Files, "folders", acc.Folders)
	return acc, nil
}

// listOp performs one admitted directory listing, releases its gate slot as
// soon as the I/O completes, and reduces the listing into a fresh per-batch
// accumulator for the scheduler to merge.
func (w *NetworkAwareWalker) listOp(ctx context.Context, t dirTask, cfg Config, gate *semaphore.Weighted, visited *visitedSet, prog *progressTracker, results chan<- opResult) {
	entries, err := w.listWithRetry(ctx, t.path, cfg)
	gate.Release(1)

	partial := profile.NewAccumulator(cfg.FastPathOnly)
	var children []dirTask

	if err != nil && ctx.Err() != nil {
		// Aborted mid-operation: no record, the scan is incomplete anyway.
		results <- opResult{partial: partial}
		return
	}

	fetched := func(string) ([]fs.DirEntry, error) { return entries, err }
	enqueue := func(c dirTask) { children = append(children, c) }
	processDir(t, fetched, cfg, partial, visited, enqueue, prog)

	results <- opResult{partial: partial, children: children}
}

// listWithRetry lists a directory under the per-operation deadline, retrying
// transient failures with doubling backoff up to the configured budget.
// Exhausted retries surface the last error, which the caller records as a
// permanent per-path error.
func (w *NetworkAwareWalker) listWithRetry(ctx context.Context, path string, cfg Config) ([]fs.DirEntry, error) {
	delay := retryBaseDelay
	retries := cfg.Retries()

	for attempt := 0; ; attempt++ {
		entries, err := w.listOnce(ctx, path, cfg.Timeout())
		if err == nil || !errors.Is(err, errListTimeout) || attempt >= retries {
			return entries, err
		}

		logger.Debug("transient listing failure, backing off",
			"path", path, "attempt", attempt+1, "delay", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}

		delay *= 2
		if delay > retryMaxDelay {
			delay = retryMaxDelay
		}
	}
}

// listOnce performs a single listing attempt with a deadline. The underlying
// call cannot be interrupted, so on timeout its goroutine is abandoned to
// finish into a buffered channel while the walk moves on.
func (w *NetworkAwareWalker) listOnce(ctx context.Context, path string, timeout time.Duration) ([]fs.DirEntry, error) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type listResult struct {
		entries []fs.DirEntry
		err     error
	}
	ch := make(chan listResult, 1)
	go func() {
		entries, err := w.list(path)
		ch <- listResult{entries: entries, err: err}
	}()

	select {
	case r := <-ch:
		return r.entries, r.err
	case <-opCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errListTimeout
	}
}
