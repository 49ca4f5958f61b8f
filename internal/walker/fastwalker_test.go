package walker

import (
	"context"
	"testing"

	"github.com/filoma/filoma/internal/testutil"
)

func TestFastwalkBasicProfile(t *testing.T) {
	root := testutil.BuildTree(t, testutil.TreeSpec{
		"a.txt": 100,
		"b.log": 200,
		"d/":    0,
	})

	acc, err := NewFastwalkWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("Walk failed: %v", err)
	}

	if acc.Files != 2 || acc.Folders != 1 || acc.EmptyFolders != 1 {
		t.Errorf("got files=%d folders=%d empty=%d, want 2/1/1",
			acc.Files, acc.Folders, acc.EmptyFolders)
	}
	if acc.SizeBytes != 300 {
		t.Errorf("SizeBytes = %d, want 300", acc.SizeBytes)
	}
	if acc.Depths[0] != 1 || acc.Depths[1] != 3 {
		t.Errorf("Depths = %v, want {0:1, 1:3}", acc.Depths)
	}
}

func TestFastwalkMatchesSequential(t *testing.T) {
	root := testutil.BuildTree(t, testutil.TreeSpec{
		"a/1.txt":       10,
		"a/b/2.log":     20,
		"a/b/c/3.txt":   30,
		"empty/":        0,
		"x/y/":          0,
		"top.json":      5,
		"a/noext":       1,
	})

	want, err := NewSequentialWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("sequential walk failed: %v", err)
	}
	got, err := NewFastwalkWalker().Walk(context.Background(), root, Config{})
	if err != nil {
		t.Fatalf("fastwalk walk failed: %v", err)
	}
	if err := diffProfiles(got, want); err != nil {
		t.Error(err)
	}
}

func TestFastwalkMaxDepth(t *testing.T) {
	root := testutil.BuildTree(t, testutil.TreeSpec{
		"d1/d2/deep.txt": 10,
		"top.txt":        5,
	})
	cfg := Config{MaxDepth: 1}

	want, err := NewSequentialWalker().Walk(context.Background(), root, cfg)
	if err != nil {
		t.Fatalf("sequential walk failed: %v", err)
	}
	got, err := NewFastwalkWalker().Walk(context.Background(), root, cfg)
	if err != nil {
		t.Fatalf("fastwalk walk failed: %v", err)
	}
	if err := diffProfiles(got, want); err != nil {
		t.Error(err)
	}
	if got.EmptyFolders != 0 {
		t.Errorf("EmptyFolders = %d, want 0 (capped dir is not empty-eligible)", got.EmptyFolders)
	}
}
