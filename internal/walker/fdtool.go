package walker

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/filoma/filoma/internal/logger"
	"github.com/filoma/filoma/internal/profile"
)

// fdBinaryNames are the executable names probed for the external discovery
// tool, in order. Debian packages fd as fdfind.
var fdBinaryNames = []string{"fd", "fdfind"}

// FdWalker wraps the external fd utility for path enumeration. fd performs
// its own traversal and reports only paths and file/directory classification,
// so this backend has inherent fast-path semantics; in profiling mode sizes
// and timestamps are filled in with follow-up lstat calls on the enumerated
// files.
//
// fd exposes no per-path error channel, so directories it could not read are
// simply absent children-wise; such directories are indistinguishable from
// empty ones here. A failed invocation (missing binary, non-zero exit, killed
// process) fails the whole attempt and the selector falls back - retry
// belongs to the caller, not this adapter.
type FdWalker struct {
	bin string
}

// NewFdWalker creates the external-tool backend. The binary is resolved
// lazily on first walk if bin is empty.
func NewFdWalker() *FdWalker {
	return &FdWalker{}
}

// NewFdWalkerWithBinary creates the external-tool backend bound to a specific
// executable, bypassing PATH resolution. Used by tests and by callers that
// already probed the binary.
func NewFdWalkerWithBinary(bin string) *FdWalker {
	return &FdWalker{bin: bin}
}

// Name returns the backend name.
func (w *FdWalker) Name() string { return NameExternal }

// LookupFdBinary resolves the fd executable on PATH, trying each known name.
func LookupFdBinary() (string, bool) {
	for _, name := range fdBinaryNames {
		if path, err := exec.LookPath(name); err == nil {
			return path, true
		}
	}
	return "", false
}

// Walk enumerates the subtree with two fd invocations (directories, then
// files and symlinks) and reduces the path lists into a profile. Emptiness is
// derived from the enumeration itself: a directory that parents no other
// enumerated path has zero direct children.
func (w *FdWalker) Walk(ctx context.Context, root string, cfg Config) (*profile.Accumulator, error) {
	bin := w.bin
	if bin == "" {
		resolved, ok := LookupFdBinary()
		if !ok {
			return nil, fmt.Errorf("%w: fd binary not on PATH", ErrBackendUnavailable)
		}
		bin = resolved
	}

	dirs, err := w.enumerate(ctx, bin, root, cfg, "--type", "d")
	if err != nil {
		if errors.Is(err, ErrScanCancelled) {
			// Nothing was reduced yet; the contract still requires an
			// accumulator alongside the cancellation.
			return profile.NewAccumulator(cfg.FastPathOnly), err
		}
		return nil, err
	}
	files, err := w.enumerate(ctx, bin, root, cfg, "--type", "f", "--type", "l")
	if err != nil {
		if errors.Is(err, ErrScanCancelled) {
			return profile.NewAccumulator(cfg.FastPathOnly), err
		}
		return nil, err
	}

	logger.Debug("fd enumeration complete",
		"binary", bin, "dirs", len(dirs), "files", len(files))

	return w.reduce(ctx, root, cfg, dirs, files)
}

// enumerate runs one fd invocation and returns the enumerated paths.
func (w *FdWalker) enumerate(ctx context.Context, bin, root string, cfg Config, typeArgs ...string) ([]string, error) {
	args := append([]string{}, typeArgs...)
	// Hidden and ignored files must be included so results match the other
	// backends, which apply no ignore rules.
	args = append(args, "--hidden", "--no-ignore", "--absolute-path")
	if cfg.MaxDepth > 0 {
		args = append(args, "--max-depth", strconv.Itoa(cfg.MaxDepth))
	}
	if cfg.FollowSymlinks {
		args = append(args, "--follow")
	}
	args = append(args, ".", root)

	cmd := exec.CommandContext(ctx, bin, args...)
	// If the killed tool leaves the stdout pipe held open by a child, Wait
	// must not block past cancellation.
	cmd.WaitDelay = time.Second
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: starting %s: %v", ErrBackendUnavailable, bin, err)
	}

	var paths []string
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSuffix(scanner.Text(), string(filepath.Separator))
		if line != "" {
			paths = append(paths, line)
		}
	}
	scanErr := scanner.Err()

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ErrScanCancelled
		}
		return nil, fmt.Errorf("%w: %s exited: %v", ErrBackendUnavailable, bin, err)
	}
	if scanErr != nil {
		return nil, fmt.Errorf("%w: reading %s output: %v", ErrBackendUnavailable, bin, scanErr)
	}
	return paths, nil
}

// reduce folds the enumerated paths into an accumulator, computing depths
// from path nesting and child counts from parent relationships.
func (w *FdWalker) reduce(ctx context.Context, root string, cfg Config, dirs, files []string) (*profile.Accumulator, error) {
	acc := profile.NewAccumulator(cfg.FastPathOnly)
	prog := newProgressTracker(cfg)

	childCounts := make(map[string]int, len(dirs)+1)
	for _, p := range dirs {
		childCounts[filepath.Dir(p)]++
	}
	for _, p := range files {
		childCounts[filepath.Dir(p)]++
	}

	cleanRoot := filepath.Clean(root)
	acc.AddDir(0, childCounts[cleanRoot])
	prog.observe(0, 1)

	for _, p := range dirs {
		depth, err := relDepth(cleanRoot, p)
		if err != nil {
			continue
		}
		if !canDescend(cfg, depth) {
			// At the depth cap fd never enumerated the children, so
			// emptiness is unknown.
			acc.AddDirUnlisted(depth)
		} else {
			acc.AddDir(depth, childCounts[p])
		}
		prog.observe(0, 1)
	}

	for _, p := range files {
		if err := ctx.Err(); err != nil {
			return acc, ErrScanCancelled
		}
		depth, err := relDepth(cleanRoot, p)
		if err != nil {
			continue
		}
		e := profile.Entry{
			Path:  p,
			Depth: depth,
			Ext:   profile.Ext(filepath.Base(p)),
		}
		if !cfg.FastPathOnly {
			if info, err := os.Lstat(p); err == nil {
				e.Size = info.Size()
				e.ModTime = info.ModTime()
			}
		}
		acc.AddFile(e)
		prog.observe(1, 0)
	}

	return acc, nil
}

// relDepth computes the depth of path relative to root: direct children of
// the root are depth 1.
func relDepth(root, path string) (int, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return 0, fmt.Errorf("path %q outside root %q", path, root)
	}
	return strings.Count(rel, string(filepath.Separator)) + 1, nil
}
