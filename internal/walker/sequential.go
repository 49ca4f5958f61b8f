package walker

import (
	"context"

	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/profile"
)

// SequentialWalker is the single-threaded depth-first baseline. It uses an
// explicit stack instead of recursion, so arbitrarily deep trees carry no
// stack-overflow risk. It is the correctness oracle the other backends are
// tested against.
type SequentialWalker struct {
	list listFunc
}

// NewSequentialWalker creates the sequential baseline backend.
func NewSequentialWalker() *SequentialWalker {
	return &SequentialWalker{list: osList}
}

// Name returns the backend name.
func (w *SequentialWalker) Name() string { return NameSequential }

// Walk traverses root depth-first and aggregates directly into a single
// accumulator. On context cancellation the partial aggregate collected so far
// is returned together with ErrScanCancelled.
func (w *SequentialWalker) Walk(ctx context.Context, root string, cfg Config) (*profile.Accumulator, error) {
	acc := profile.NewAccumulator(cfg.FastPathOnly)
	visited := newVisitedSet()
	prog := newProgressTracker(cfg)

	if cfg.FollowSymlinks {
		visited.mark(root)
	}

	stack := []dirTask{{path: root, depth: 0}}
	push := func(t dirTask) { stack = append(stack, t) }

	for len(stack) > 0 {
		select {
		case <-ctx.Done():
			logger.Debug("sequential walk cancelled", "pending", len(stack))
			return acc, ErrScanCancelled
		default:
		}

		t := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		processDir(t, w.list, cfg, acc, visited, push, prog)
	}

	return acc, nil
}
