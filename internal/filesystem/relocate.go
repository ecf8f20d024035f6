package filesystem

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/afero"
)

// ErrNoUniqueName is returned when every "name (N).ext" candidate is taken
var ErrNoUniqueName = errors.New("could not generate a unique destination filename")

// Exists reports whether anything (file, directory or link) is present at path
func Exists(fs afero.Fs, path string) (bool, error) {
	var err error
	if lst, ok := fs.(afero.Lstater); ok {
		_, _, err = lst.LstatIfPossible(path)
	} else {
		_, err = fs.Stat(path)
	}
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// EnsureDir creates dir and any missing parents
func EnsureDir(fs afero.Fs, dir string) error {
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// UniquePath returns the first free "stem (N)ext" next to path for N = 1..maxAttempts
func UniquePath(fs afero.Fs, path string, maxAttempts int) (string, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	for i := 1; i <= maxAttempts; i++ {
		candidate := filepath.Join(dir, stem+" ("+strconv.Itoa(i)+")"+ext)
		exists, err := Exists(fs, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}

	return "", ErrNoUniqueName
}

// MoveFile moves src to dst, which must not exist. A rename is tried first; when the
// filesystem refuses to rename across devices the file is copied and the source removed.
// Either the file ends up complete at dst and gone from src, or src is left untouched.
func MoveFile(fs afero.Fs, src, dst string) error {
	err := fs.Rename(src, dst)
	if err == nil {
		return nil
	}
	if !isCrossDevice(err) {
		return err
	}
	return copyThenRemove(fs, src, dst)
}

// copyThenRemove copies a file from src to dst and removes src
func copyThenRemove(fs afero.Fs, src, dst string) error {
	sourceFile, err := fs.Open(src)
	if err != nil {
		return err
	}

	info, err := sourceFile.Stat()
	if err != nil {
		sourceFile.Close()
		return err
	}

	destFile, err := fs.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		sourceFile.Close()
		return err
	}

	n, err := io.Copy(destFile, sourceFile)
	if err == nil && n != info.Size() {
		err = fmt.Errorf("short copy: %d of %d bytes", n, info.Size())
	}
	if err == nil {
		err = destFile.Sync()
	}
	if closeErr := destFile.Close(); err == nil {
		err = closeErr
	}
	sourceFile.Close()

	if err != nil {
		fs.Remove(dst)
		return fmt.Errorf("copy across devices: %w", err)
	}

	// Best effort, a copy with a fresh mtime is still a complete move
	_ = fs.Chtimes(dst, info.ModTime(), info.ModTime())

	if err := fs.Remove(src); err != nil {
		fs.Remove(dst)
		return fmt.Errorf("remove source after copy: %w", err)
	}

	return nil
}
