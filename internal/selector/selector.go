// Package selector orchestrates a scan: it probes backend capabilities once,
// picks a backend by priority, executes it, and falls back to the next
// candidate when a backend fails to start. It is the single entry point
// consumers call; they depend only on the profile.ScanResult schema.
package selector

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/filoma/filoma/internal/capability"
	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/profile"
	"github.com/filoma/filoma/internal/walker"
)

// ErrAllBackendsFailed means every candidate backend failed to start.
var ErrAllBackendsFailed = errors.New("no backend available")

// State tracks a selection attempt through its lifecycle. Exposed so tests
// can assert on the transition sequence.
type State int

const (
	StateUnselected State = iota
	StateProbing
	StateAvailable
	StateUnavailable
	StateSelected
	StateRunning
	StateCompleted
	StateFailed
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUnselected:
		return "unselected"
	case StateProbing:
		return "probing"
	case StateAvailable:
		return "available"
	case StateUnavailable:
		return "unavailable"
	case StateSelected:
		return "selected"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attempt records the outcome of one backend candidate during selection.
type Attempt struct {
	Backend string
	State   State
	Err     error
}

// Selector runs scans against an explicit capability set and walker registry.
// The zero registry uses the real backends; tests inject fakes.
type Selector struct {
	caps    capability.Set
	walkers map[string]walker.Walker

	// attempts holds the per-candidate outcomes of the last Scan call.
	attempts []Attempt
}

// New creates a Selector bound to a capability set, using the production
// walker for every backend name.
func New(caps capability.Set) *Selector {
	return NewWithWalkers(caps,
		walker.NewParallelWalker(),
		walker.NewNetworkAwareWalker(),
		walker.NewFdWalker(),
		walker.NewFastwalkWalker(),
		walker.NewSequentialWalker(),
	)
}

// NewWithWalkers creates a Selector with an explicit walker registry.
func NewWithWalkers(caps capability.Set, walkers ...walker.Walker) *Selector {
	registry := make(map[string]walker.Walker, len(walkers))
	for _, w := range walkers {
		registry[w.Name()] = w
	}
	return &Selector{caps: caps, walkers: registry}
}

// Attempts returns the per-candidate outcomes of the last Scan call.
func (s *Selector) Attempts() []Attempt {
	return append([]Attempt(nil), s.attempts...)
}

// Probe is the package-level entry point: it validates the root, probes
// capabilities once and runs the scan with automatic backend selection and
// fallback.
func Probe(ctx context.Context, root string, cfg walker.Config) (*profile.ScanResult, error) {
	s := New(capability.Detect(ctx))
	return s.Scan(ctx, root, cfg)
}

// Scan validates the root and executes the first candidate backend that
// succeeds, falling back through the priority order. Per-entry errors inside
// a running backend never trigger fallback; only startup-level failures do.
// On cancellation the partial aggregate is returned, tagged incomplete.
func (s *Selector) Scan(ctx context.Context, root string, cfg walker.Config) (*profile.ScanResult, error) {
	absRoot, err := validateRoot(root)
	if err != nil {
		return nil, err
	}

	scanID := uuid.NewString()
	s.attempts = s.attempts[:0]

	logger.Debug("resolving candidates", "scan_id", scanID, "state", StateProbing.String())
	candidates, err := s.candidates(cfg)
	if err != nil {
		return nil, err
	}

	logger.Debug("scan starting",
		"scan_id", scanID, "root", absRoot, "candidates", len(candidates))

	var failures []error
	for _, name := range candidates {
		w, ok := s.walkers[name]
		if !ok {
			s.attempts = append(s.attempts, Attempt{Backend: name, State: StateUnavailable})
			continue
		}

		logger.Debug("backend selected",
			"scan_id", scanID, "backend", name, "state", StateSelected.String())

		start := time.Now()
		logger.Info("running backend",
			"scan_id", scanID, "backend", name, "state", StateRunning.String())

		acc, walkErr := w.Walk(ctx, absRoot, cfg)
		elapsed := time.Since(start)

		switch {
		case walkErr == nil:
			s.attempts = append(s.attempts, Attempt{Backend: name, State: StateCompleted})
			logger.Info("scan complete",
				"scan_id", scanID, "backend", name, "elapsed", elapsed,
				"files", acc.Files, "folders", acc.Folders, "errors", len(acc.Errors))
			return profile.NewScanResult(scanID, absRoot, name, elapsed, false, acc), nil

		case errors.Is(walkErr, walker.ErrScanCancelled):
			// Caller-requested abort: return what was merged so far rather
			// than discarding it. No fallback.
			if acc == nil {
				acc = profile.NewAccumulator(cfg.FastPathOnly)
			}
			s.attempts = append(s.attempts, Attempt{Backend: name, State: StateFailed, Err: walkErr})
			logger.Warn("scan cancelled, returning partial result",
				"scan_id", scanID, "backend", name, "elapsed", elapsed)
			return profile.NewScanResult(scanID, absRoot, name, elapsed, true, acc), walker.ErrScanCancelled

		default:
			s.attempts = append(s.attempts, Attempt{Backend: name, State: StateFailed, Err: walkErr})
			failures = append(failures, fmt.Errorf("%s: %w", name, walkErr))
			logger.Warn("backend failed, falling back",
				"scan_id", scanID, "backend", name, "error", walkErr)
		}
	}

	return nil, fmt.Errorf("%w: %w", ErrAllBackendsFailed, errors.Join(failures...))
}

// candidates resolves the ordered backend candidate list from the explicit
// preference or the probed priority order, marking unavailable candidates as
// skipped attempts.
func (s *Selector) candidates(cfg walker.Config) ([]string, error) {
	var requested []string
	if len(cfg.Backends) > 0 {
		requested = cfg.Backends
	} else {
		for _, c := range s.caps.All() {
			requested = append(requested, c.Name)
		}
	}

	var names []string
	for _, name := range requested {
		if name == "auto" {
			for _, c := range s.caps.All() {
				if c.Available {
					names = append(names, c.Name)
				}
			}
			continue
		}
		if !s.caps.IsAvailable(name) {
			s.attempts = append(s.attempts, Attempt{Backend: name, State: StateUnavailable})
			logger.Debug("backend unavailable, skipping",
				"backend", name, "state", StateUnavailable.String())
			continue
		}
		logger.Debug("backend available", "backend", name, "state", StateAvailable.String())
		names = append(names, name)
	}

	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no candidate is available", ErrAllBackendsFailed)
	}
	return names, nil
}

// validateRoot resolves and checks the scan root. A missing or non-directory
// root is fatal: no backend executes and there is no fallback.
func validateRoot(root string) (string, error) {
	absRoot, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", walker.ErrRootNotFound, root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", walker.ErrRootNotFound, root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %q is not a directory", walker.ErrRootNotFound, root)
	}
	return absRoot, nil
}
