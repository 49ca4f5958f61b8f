package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/filoma/filoma/internal/profile"
	"github.com/filoma/filoma/internal/testutil"
)

func TestSequentialBasicProfile(t *testing.T) {
	root := testutil.BuildTree(t, testutil.TreeSpec{
		"a.txt": 100,
		"b.log": 200,
		"d/":    0,
	})

	acc, err := NewSequentialWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if acc.Files != 2 {
		t.Errorf("Files = %d, want 2", acc.Files)
	}
	if acc.Folders != 1 {
		t.Errorf("Folders = %d, want 1 (root excluded)", acc.Folders)
	}
	if acc.EmptyFolders != 1 {
		t.Errorf("EmptyFolders = %d, want 1", acc.EmptyFolders)
	}
	if acc.SizeBytes != 300 {
		t.Errorf("SizeBytes = %d, want 300", acc.SizeBytes)
	}
	if acc.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", acc.MaxDepth)
	}
	if acc.Depths[0] != 1 || acc.Depths[1] != 3 {
		t.Errorf("Depths = %v, want {0:1, 1:3}", acc.Depths)
	}
	if acc.Extensions["txt"] != 1 || acc.Extensions["log"] != 1 {
		t.Errorf("Extensions = %v, want {txt:1, log:1}", acc.Extensions)
	}
	if len(acc.Errors) != 0 {
		t.Errorf("unexpected errors: %v", acc.Errors)
	}
}

func TestSequentialFastPath(t *testing.T) {
	spec := testutil.TreeSpec{
		"a.txt":     100,
		"sub/b.txt": 50,
		"empty/":    0,
	}
	root := testutil.BuildTree(t, spec)

	full, err := NewSequentialWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("full walk failed: %v", err)
	}
	fast, err := NewSequentialWalker().Walk(context.Background(), root, Config{FastPathOnly: true})
	if err != nil {
		t.Fatalf("fast-path walk failed: %v", err)
	}

	if fast.SizeBytes != 0 {
		t.Errorf("fast-path SizeBytes = %d, want 0", fast.SizeBytes)
	}
	// Everything except size data must be identical.
	fast.SizeBytes = full.SizeBytes
	if err := diffProfiles(fast, full); err != nil {
		t.Errorf("fast-path profile diverged from full profile: %v", err)
	}
}

func TestSequentialMaxDepth(t *testing.T) {
	root := testutil.BuildTree(t, testutil.TreeSpec{
		"d1/d2/deep.txt": 10,
		"top.txt":        5,
	})

	acc, err := NewSequentialWalker().Walk(context.Background(), root, Config{MaxDepth: 1})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	// d1 sits at the cap: recorded but never listed, so nothing below it is
	// seen and its emptiness stays unknown.
	if acc.Files != 1 {
		t.Errorf("Files = %d, want 1", acc.Files)
	}
	if acc.Folders != 1 {
		t.Errorf("Folders = %d, want 1", acc.Folders)
	}
	if acc.EmptyFolders != 0 {
		t.Errorf("EmptyFolders = %d, want 0 (capped dir is not empty-eligible)", acc.EmptyFolders)
	}
	if acc.MaxDepth != 1 {
		t.Errorf("MaxDepth = %d, want 1", acc.MaxDepth)
	}
	if acc.Depths[0] != 1 || acc.Depths[1] != 2 {
		t.Errorf("Depths = %v, want {0:1, 1:2}", acc.Depths)
	}
}

func TestSequentialSymlinkAsFileByDefault(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink fixtures require unix")
	}
	root := testutil.BuildTree(t, testutil.TreeSpec{"a/f.txt": 1})
	if err := os.Symlink(root, filepath.Join(root, "a", "loop")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	acc, err := NewSequentialWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	// Without FollowSymlinks the link is a plain file entry.
	if acc.Files != 2 {
		t.Errorf("Files = %d, want 2 (symlink counted as file)", acc.Files)
	}
	if acc.Folders != 1 {
		t.Errorf("Folders = %d, want 1", acc.Folders)
	}
	if len(acc.Errors) != 0 {
		t.Errorf("unexpected errors: %v", acc.Errors)
	}
}

func TestSequentialSymlinkCycleBroken(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink fixtures require unix")
	}
	root := testutil.BuildTree(t, testutil.TreeSpec{"a/f.txt": 1})
	if err := os.Symlink(root, filepath.Join(root, "a", "loop")); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	acc, err := NewSequentialWalker().Walk(context.Background(), root, Config{FollowSymlinks: true})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if acc.Files != 1 {
		t.Errorf("Files = %d, want 1", acc.Files)
	}
	// a plus the cycle-skipped link both count as folders.
	if acc.Folders != 2 {
		t.Errorf("Folders = %d, want 2", acc.Folders)
	}
	if len(acc.Errors) != 1 {
		t.Fatalf("got %d errors, want exactly 1 cycle error: %v", len(acc.Errors), acc.Errors)
	}
	if acc.Errors[0].Kind != profile.KindSymlinkCycle {
		t.Errorf("error kind = %v, want %v", acc.Errors[0].Kind, profile.KindSymlinkCycle)
	}
}

func TestSequentialPermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission fixture requires a non-root unix user")
	}
	root := testutil.BuildTree(t, testutil.TreeSpec{
		"locked/": 0,
		"ok.txt":  1,
	})
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	acc, err := NewSequentialWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if acc.Files != 1 {
		t.Errorf("Files = %d, want 1", acc.Files)
	}
	if acc.Folders != 1 {
		t.Errorf("Folders = %d, want 1 (unreadable dir still counted)", acc.Folders)
	}
	if acc.EmptyFolders != 0 {
		t.Errorf("EmptyFolders = %d, want 0 (unreadable dir is not empty-eligible)", acc.EmptyFolders)
	}
	if len(acc.Errors) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(acc.Errors), acc.Errors)
	}
	if acc.Errors[0].Kind != profile.KindPermission {
		t.Errorf("error kind = %v, want %v", acc.Errors[0].Kind, profile.KindPermission)
	}
}

func TestSequentialCancellation(t *testing.T) {
	root := testutil.BuildTree(t, testutil.TreeSpec{"a/b/c/f.txt": 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	acc, err := NewSequentialWalker().Walk(ctx, root, Config{})
	if !errors.Is(err, ErrScanCancelled) {
		t.Fatalf("err = %v, want ErrScanCancelled", err)
	}
	if acc == nil {
		t.Fatal("cancelled walk must still return the partial accumulator")
	}
}
