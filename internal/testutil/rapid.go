package testutil

import (
	"fmt"
	"os"
	"testing"

	"pgregory.net/rapid"
)

// RapidCheck wraps rapid.Check with the intensity-configured iteration count.
// rapid reads its iteration budget from the RAPID_CHECKS environment
// variable, which is set here unless the caller already overrode it.
func RapidCheck(t *testing.T, fn func(*rapid.T)) {
	t.Helper()

	if os.Getenv("RAPID_CHECKS") == "" {
		os.Setenv("RAPID_CHECKS", fmt.Sprintf("%d", GetConfig().Iterations))
	}
	rapid.Check(t, fn)
}

// TreeSpecGenerator produces random directory trees bounded by the active
// test configuration. Trees mix nested directories, files with a small
// extension vocabulary, and naturally occurring empty directories.
func TreeSpecGenerator() *rapid.Generator[TreeSpec] {
	cfg := GetConfig()
	extensions := []string{"txt", "log", "json", "go", "csv", ""}

	return rapid.Custom(func(t *rapid.T) TreeSpec {
		spec := make(TreeSpec)

		// Directory skeleton: each directory nests under a previously drawn
		// one, bounding depth.
		dirs := []string{""}
		numDirs := rapid.IntRange(0, cfg.MaxEntries/4).Draw(t, "numDirs")
		for i := 0; i < numDirs; i++ {
			parent := rapid.SampledFrom(dirs).Draw(t, "parent")
			if depthOf(parent) >= cfg.MaxDepth {
				continue
			}
			dir := joinRel(parent, fmt.Sprintf("d%d", i))
			dirs = append(dirs, dir)
			spec[dir+"/"] = 0
		}

		numFiles := rapid.IntRange(0, cfg.MaxEntries).Draw(t, "numFiles")
		for i := 0; i < numFiles; i++ {
			parent := rapid.SampledFrom(dirs).Draw(t, "fileParent")
			ext := rapid.SampledFrom(extensions).Draw(t, "ext")
			name := fmt.Sprintf("f%d", i)
			if ext != "" {
				name += "." + ext
			}
			size := rapid.Int64Range(0, 4096).Draw(t, "size")
			spec[joinRel(parent, name)] = size
		}

		return spec
	})
}

func joinRel(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "/" + name
}

func depthOf(rel string) int {
	if rel == "" {
		return 0
	}
	depth := 1
	for _, c := range rel {
		if c == '/' {
			depth++
		}
	}
	return depth
}
