package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TreeSpec describes a directory tree for fixtures. Keys are slash-separated
// paths relative to the root. A key with a trailing slash is a directory
// (created explicitly, so it may stay empty); any other key is a file whose
// value is its size in bytes. Parent directories are created implicitly.
type TreeSpec map[string]int64

// BuildTree materializes spec under a fresh t.TempDir and returns the root.
func BuildTree(t *testing.T, spec TreeSpec) string {
	t.Helper()

	root := t.TempDir()
	if err := MakeTree(root, spec); err != nil {
		t.Fatalf("failed to build fixture tree: %v", err)
	}
	return root
}

// MakeTree materializes spec under root.
func MakeTree(root string, spec TreeSpec) error {
	for rel, size := range spec {
		path := filepath.Join(root, filepath.FromSlash(strings.TrimSuffix(rel, "/")))

		if strings.HasSuffix(rel, "/") {
			if err := os.MkdirAll(path, 0755); err != nil {
				return fmt.Errorf("mkdir %s: %w", rel, err)
			}
			continue
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("mkdir parent of %s: %w", rel, err)
		}
		if err := os.WriteFile(path, make([]byte, size), 0644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
	}
	return nil
}

// CountSpec returns the expected file count, folder count and total size for
// a spec, matching the profiler's counting convention (the root itself is not
// a folder). Useful for asserting scan results against generated trees.
func CountSpec(spec TreeSpec) (files, folders, size int64) {
	dirs := make(map[string]struct{})

	addParents := func(rel string) {
		for p := filepath.Dir(rel); p != "." && p != "/"; p = filepath.Dir(p) {
			dirs[p] = struct{}{}
		}
	}

	for rel, sz := range spec {
		if strings.HasSuffix(rel, "/") {
			dirs[strings.TrimSuffix(rel, "/")] = struct{}{}
			addParents(strings.TrimSuffix(rel, "/"))
			continue
		}
		files++
		size += sz
		addParents(rel)
	}
	return files, int64(len(dirs)), size
}
