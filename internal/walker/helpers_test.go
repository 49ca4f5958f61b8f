package walker

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/filoma/filoma/internal/profile"
)

// diffProfiles compares two accumulators field by field, ignoring error
// ordering. Returns nil when the profiles are equivalent.
func diffProfiles(got, want *profile.Accumulator) error {
	if got.Files != want.Files {
		return fmt.Errorf("Files = %d, want %d", got.Files, want.Files)
	}
	if got.Folders != want.Folders {
		return fmt.Errorf("Folders = %d, want %d", got.Folders, want.Folders)
	}
	if got.SizeBytes != want.SizeBytes {
		return fmt.Errorf("SizeBytes = %d, want %d", got.SizeBytes, want.SizeBytes)
	}
	if got.MaxDepth != want.MaxDepth {
		return fmt.Errorf("MaxDepth = %d, want %d", got.MaxDepth, want.MaxDepth)
	}
	if got.EmptyFolders != want.EmptyFolders {
		return fmt.Errorf("EmptyFolders = %d, want %d", got.EmptyFolders, want.EmptyFolders)
	}
	if len(got.Extensions) != len(want.Extensions) {
		return fmt.Errorf("Extensions = %v, want %v", got.Extensions, want.Extensions)
	}
	for ext, n := range want.Extensions {
		if got.Extensions[ext] != n {
			return fmt.Errorf("Extensions[%q] = %d, want %d", ext, got.Extensions[ext], n)
		}
	}
	if len(got.Depths) != len(want.Depths) {
		return fmt.Errorf("Depths = %v, want %v", got.Depths, want.Depths)
	}
	for depth, n := range want.Depths {
		if got.Depths[depth] != n {
			return fmt.Errorf("Depths[%d] = %d, want %d", depth, got.Depths[depth], n)
		}
	}
	if len(got.Errors) != len(want.Errors) {
		return fmt.Errorf("got %d errors, want %d", len(got.Errors), len(want.Errors))
	}
	return nil
}

// fakeEntry is an in-memory fs.DirEntry for tests that inject a listFunc.
type fakeEntry struct {
	name string
	dir  bool
	size int64
}

func (e fakeEntry) Name() string { return e.name }

func (e fakeEntry) IsDir() bool { return e.dir }

func (e fakeEntry) Type() fs.FileMode {
	if e.dir {
		return fs.ModeDir
	}
	return 0
}

func (e fakeEntry) Info() (fs.FileInfo, error) {
	return fakeInfo{entry: e}, nil
}

type fakeInfo struct {
	entry fakeEntry
}

func (i fakeInfo) Name() string       { return i.entry.name }
func (i fakeInfo) Size() int64        { return i.entry.size }
func (i fakeInfo) Mode() fs.FileMode  { return i.entry.Type() }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.entry.dir }
func (i fakeInfo) Sys() any           { return nil }

// fakeFS maps directory paths to their listings, backing injected listFuncs.
type fakeFS map[string][]fs.DirEntry

func (f fakeFS) list(path string) ([]fs.DirEntry, error) {
	entries, ok := f[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return entries, nil
}
