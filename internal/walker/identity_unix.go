//go:build unix

package walker

import "golang.org/x/sys/unix"

// fileIdentity is a stable filesystem identity: device plus inode. Two paths
// with the same identity refer to the same underlying directory, which is how
// symlink cycles are detected.
type fileIdentity struct {
	dev uint64
	ino uint64
}

// identityOf resolves the identity of path, following symlinks so that a link
// and its target compare equal. Returns ok=false if the path cannot be
// stat'ed.
func identityOf(path string) (fileIdentity, bool) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileIdentity{}, false
	}
	return fileIdentity{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
