// Package profile defines the unified statistical profile produced by a scan
// and the accumulator that reduces per-entry records into it. The reduction is
// associative and commutative so that backends which aggregate in parallel and
// merge out of order produce the same profile as a sequential pass.
package profile

import (
	"path/filepath"
	"strings"
	"time"
)

// Entry describes a single filesystem entry observed during traversal.
// Entries are transient: they exist only on the path from a walker into an
// Accumulator and are never persisted.
type Entry struct {
	Path    string    // Absolute path of the entry
	IsDir   bool      // True for directories
	Size    int64     // Size in bytes (0 for directories and in fast-path mode)
	Depth   int       // Depth relative to the scan root (root itself is 0)
	Ext     string    // Lowercase extension without the dot, empty if none
	ModTime time.Time // Modification time (zero in fast-path mode)
}

// ErrorKind classifies a per-path scan error.
type ErrorKind int

const (
	// KindPermission indicates a directory listing or stat was denied.
	KindPermission ErrorKind = iota
	// KindTimeout indicates an operation exceeded its deadline and exhausted
	// its retry budget (network mode).
	KindTimeout
	// KindSymlinkCycle indicates a symlink pointing back into an already
	// visited directory; the link is skipped, never followed.
	KindSymlinkCycle
	// KindIO covers other per-path I/O failures.
	KindIO
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindPermission:
		return "permission-denied"
	case KindTimeout:
		return "timeout"
	case KindSymlinkCycle:
		return "symlink-cycle"
	case KindIO:
		return "io"
	default:
		return "unknown"
	}
}

// ScanError records an error that occurred for a specific path during a scan.
// Per-path errors never abort the scan; they accumulate on the result.
type ScanError struct {
	Path    string    // Path the error occurred on
	Kind    ErrorKind // Error classification
	Message string    // Underlying error text
}

// Ext extracts the lowercase extension of a file name without the leading dot.
// Names with no dot, or dotfiles like ".gitignore", yield an empty extension.
func Ext(name string) string {
	ext := filepath.Ext(name)
	if ext == "" {
		return ""
	}
	base := filepath.Base(name)
	if base == ext {
		// Dotfile: the whole name is the "extension".
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
