//go:build windows

package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// ERROR_NOT_SAME_DEVICE from MoveFileEx without MOVEFILE_COPY_ALLOWED
const errorNotSameDevice syscall.Errno = 17

// isReparsePoint reports whether the entry is a symlink, junction or other reparse point (Windows)
func isReparsePoint(info os.FileInfo) bool {
	if info.Mode()&(os.ModeSymlink|os.ModeIrregular) != 0 {
		return true
	}
	if attrs, ok := info.Sys().(*syscall.Win32FileAttributeData); ok {
		return attrs.FileAttributes&syscall.FILE_ATTRIBUTE_REPARSE_POINT != 0
	}
	return false
}

// isCrossDevice reports whether a rename failed because source and target are on different volumes (Windows)
func isCrossDevice(err error) bool {
	return errors.Is(err, errorNotSameDevice) || errors.Is(err, syscall.EXDEV)
}

// SamePath reports whether a and b name the same location once cleaned (case-insensitive on Windows)
func SamePath(a, b string) bool {
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}
