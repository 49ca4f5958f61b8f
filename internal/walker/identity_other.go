//go:build !unix

package walker

import "path/filepath"

// fileIdentity is a stand-in on platforms without device+inode support.
// Cycle detection degrades to path-based dedup via the cleaned path string.
type fileIdentity struct {
	path string
}

func identityOf(path string) (fileIdentity, bool) {
	return fileIdentity{path: filepath.Clean(path)}, true
}
