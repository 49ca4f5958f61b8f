// Package capability detects which scan backends are usable on the current
// host. Detection runs once per scan invocation and produces an explicit
// capability set that is threaded through the selector - there is no ambient
// process-global cache, so tests can inject arbitrary sets.
package capability

import (
	"context"
	"os/exec"
	"runtime"
	"sort"
	"time"

	"github.com/klauspost/cpuid/v2"

	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/walker"
)

// fdProbeTimeout bounds the short-lived probe of the external tool. A hung
// probe marks the tool unavailable; it is never fatal.
const fdProbeTimeout = 2 * time.Second

// Capability describes one backend on this host. Lower priority is preferred.
type Capability struct {
	Name      string
	Available bool
	Priority  int
	Detail    string
}

// Set is an immutable snapshot of backend capabilities, ordered by priority.
type Set struct {
	caps []Capability
}

// Detect probes the host once and returns the resulting capability set.
//
// Default priority: parallel > network > fd > fastwalk > sequential. The
// network backend is always available but sits behind parallel because its
// tuning only pays off on high-latency mounts; callers targeting such mounts
// promote it via an explicit backend preference.
func Detect(ctx context.Context) Set {
	cores := logicalCores()

	caps := []Capability{
		{
			Name:      walker.NameParallel,
			Available: cores > 1,
			Priority:  0,
			Detail:    coresDetail(cores),
		},
		{
			Name:      walker.NameNetwork,
			Available: true,
			Priority:  1,
			Detail:    "bounded in-flight async traversal",
		},
		probeFd(ctx),
		{
			Name:      walker.NameFastwalk,
			Available: true,
			Priority:  3,
			Detail:    "fastwalk library traversal",
		},
		{
			Name:      walker.NameSequential,
			Available: true,
			Priority:  4,
			Detail:    "single-threaded baseline",
		},
	}

	sort.SliceStable(caps, func(i, j int) bool { return caps[i].Priority < caps[j].Priority })
	return Set{caps: caps}
}

// NewSet builds a capability set from explicit capabilities. Used by tests to
// inject arbitrary availability without touching the host.
func NewSet(caps ...Capability) Set {
	ordered := append([]Capability(nil), caps...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Priority < ordered[j].Priority })
	return Set{caps: ordered}
}

// All returns the capabilities in priority order.
func (s Set) All() []Capability {
	return append([]Capability(nil), s.caps...)
}

// Lookup returns the capability for a backend name.
func (s Set) Lookup(name string) (Capability, bool) {
	for _, c := range s.caps {
		if c.Name == name {
			return c, true
		}
	}
	return Capability{}, false
}

// IsAvailable reports whether the named backend is usable.
func (s Set) IsAvailable(name string) bool {
	c, ok := s.Lookup(name)
	return ok && c.Available
}

// IsParallelBackendAvailable probes the host and reports whether the
// CPU-parallel backend can run. Diagnostics helper, not used for correctness.
func IsParallelBackendAvailable() bool {
	return logicalCores() > 1
}

// IsExternalToolAvailable probes the host and reports whether the external fd
// tool is usable. Diagnostics helper, not used for correctness.
func IsExternalToolAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), fdProbeTimeout)
	defer cancel()
	return probeFd(ctx).Available
}

// probeFd checks that the fd binary is discoverable and responsive. Any
// probe failure just marks the backend unavailable.
func probeFd(ctx context.Context) Capability {
	c := Capability{Name: walker.NameExternal, Priority: 2}

	bin, ok := walker.LookupFdBinary()
	if !ok {
		c.Detail = "fd binary not on PATH"
		return c
	}

	probeCtx, cancel := context.WithTimeout(ctx, fdProbeTimeout)
	defer cancel()
	if err := exec.CommandContext(probeCtx, bin, "--version").Run(); err != nil {
		logger.Debug("fd probe failed", "binary", bin, "error", err)
		c.Detail = "fd binary unresponsive"
		return c
	}

	c.Available = true
	c.Detail = bin
	return c
}

// logicalCores reports the host's logical core count, preferring the CPUID
// leaf over the runtime's view and falling back when CPUID is unsupported
// (some VMs, non-x86).
func logicalCores() int {
	if n := cpuid.CPU.LogicalCores; n > 0 {
		return n
	}
	return runtime.NumCPU()
}

func coresDetail(cores int) string {
	if cores > 1 {
		return cpuid.CPU.BrandName
	}
	return "single-core host"
}
