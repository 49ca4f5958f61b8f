// Package walker provides the traversal backends that feed a scan: a
// sequential depth-first baseline, a CPU-parallel worker pool, a
// latency-tolerant network-aware scheduler, an adapter around the external fd
// discovery tool, and a concurrent discovery backend built on fastwalk.
// All backends produce the same profile schema; they differ only in how the
// subtree is visited.
package walker

import (
	"context"
	"errors"
	"runtime"
	"time"

	"github.com/filoma/filoma/internal/profile"
)

// Backend names, also the values accepted by the backend preference config.
const (
	NameSequential = "sequential"
	NameParallel   = "parallel"
	NameNetwork    = "network"
	NameExternal   = "fd"
	NameFastwalk   = "fastwalk"
)

// Sentinel errors for scan-level failures. Per-path failures are recorded as
// profile.ScanError values on the result instead.
var (
	// ErrRootNotFound means the scan root does not exist or is not a
	// directory. Fatal: no backend runs and there is no fallback.
	ErrRootNotFound = errors.New("scan root not found or not a directory")

	// ErrBackendUnavailable means a backend could not start (missing tool,
	// unsupported configuration). The selector falls back to the next
	// candidate.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrScanCancelled is reported alongside a partial result when the
	// caller aborts a scan.
	ErrScanCancelled = errors.New("scan cancelled")
)

// Default tuning values.
const (
	// DefaultNetworkTimeout is the per-operation deadline in network mode.
	DefaultNetworkTimeout = 30 * time.Second

	// DefaultNetworkRetries is the retry budget per transient failure.
	DefaultNetworkRetries = 3

	// DefaultNetworkInflight is the default cap on outstanding operations in
	// network mode. Network filesystems tolerate many outstanding requests
	// better than high CPU parallelism, so this is intentionally generous.
	DefaultNetworkInflight = 64

	// retryBaseDelay is the initial backoff delay for transient failures,
	// doubled per attempt up to retryMaxDelay.
	retryBaseDelay = 50 * time.Millisecond
	retryMaxDelay  = 2 * time.Second
)

// Progress is a periodic snapshot delivered to an optional progress callback.
// Progress reporting has no effect on scan results.
type Progress struct {
	Files   int64
	Folders int64
	Elapsed time.Duration
}

// Config controls a single scan. It is constructed once per call and
// immutable thereafter.
type Config struct {
	// MaxDepth caps traversal depth relative to the root (root is depth 0).
	// Zero or negative means unlimited. Directories at the cap are recorded
	// but not descended into.
	MaxDepth int

	// FollowSymlinks descends into symlinked directories, guarded by a
	// per-scan visited set keyed on device+inode to break cycles. When
	// false (the default), symlinks are recorded as plain file entries.
	FollowSymlinks bool

	// FastPathOnly skips per-entry metadata calls: the scan returns correct
	// counts, depth data and empty-folder data but no sizes or timestamps.
	FastPathOnly bool

	// Concurrency caps workers (parallel backend) or in-flight operations
	// (network backend). Zero means auto-detect.
	Concurrency int

	// NetworkTimeout is the per-operation deadline in network mode.
	// Zero means DefaultNetworkTimeout.
	NetworkTimeout time.Duration

	// NetworkRetries is the retry budget per transient failure in network
	// mode. Negative means DefaultNetworkRetries.
	NetworkRetries int

	// Backends is the ordered backend preference. Empty means automatic
	// priority order.
	Backends []string

	// OnProgress, when non-nil, receives periodic count snapshots. Walkers
	// invoke it on every directory completion; rate limiting is the
	// callback's concern.
	OnProgress func(Progress)
}

// Workers resolves the effective worker count for the parallel backend.
func (c Config) Workers() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return runtime.NumCPU()
}

// Inflight resolves the effective in-flight operation cap for network mode.
func (c Config) Inflight() int {
	if c.Concurrency > 0 {
		return c.Concurrency
	}
	return DefaultNetworkInflight
}

// Timeout resolves the effective per-operation deadline for network mode.
func (c Config) Timeout() time.Duration {
	if c.NetworkTimeout > 0 {
		return c.NetworkTimeout
	}
	return DefaultNetworkTimeout
}

// Retries resolves the effective retry budget for network mode.
func (c Config) Retries() int {
	if c.NetworkRetries >= 0 {
		return c.NetworkRetries
	}
	return DefaultNetworkRetries
}

// Walker is one concrete traversal strategy. Walk traverses root and returns
// the aggregated accumulator. A returned error means the backend failed to
// run at all (the selector falls back); per-path errors are recorded on the
// accumulator and still count as success. When the context is cancelled,
// Walk returns the partial accumulator merged so far together with
// ErrScanCancelled.
type Walker interface {
	Name() string
	Walk(ctx context.Context, root string, cfg Config) (*profile.Accumulator, error)
}

// canDescend reports whether a directory at the given depth may be listed
// under the depth cap. Children of a directory at depth d land at d+1, so a
// directory at the cap itself is recorded but never listed.
func canDescend(cfg Config, depth int) bool {
	return cfg.MaxDepth <= 0 || depth < cfg.MaxDepth
}
