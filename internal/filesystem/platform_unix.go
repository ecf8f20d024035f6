//go:build !windows

package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"syscall"
)

// isReparsePoint reports whether the entry is a symbolic link (Unix)
func isReparsePoint(info os.FileInfo) bool {
	return info.Mode()&os.ModeSymlink != 0
}

// isCrossDevice reports whether a rename failed because source and target are on different filesystems (Unix)
func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// SamePath reports whether a and b name the same location once cleaned (case-sensitive on Unix)
func SamePath(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}
