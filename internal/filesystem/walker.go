package filesystem

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Entry is a regular file found by the walker
type Entry struct {
	Path string
	Name string
	Info os.FileInfo // Lstat info from the directory listing
}

// SkipFunc receives paths the walker left out and why
type SkipFunc func(path, reason string)

// Walker walks a directory tree without following links
type Walker struct {
	fs     afero.Fs
	logger *zap.Logger
	onSkip SkipFunc
	dirs   int
}

// NewWalker creates a new filesystem walker
func NewWalker(fs afero.Fs, logger *zap.Logger) *Walker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Walker{
		fs:     fs,
		logger: logger,
	}
}

// OnSkip registers a callback for skipped paths
func (w *Walker) OnSkip(fn SkipFunc) {
	w.onSkip = fn
}

// DirsVisited returns the number of directories read by the last walk
func (w *Walker) DirsVisited() int {
	return w.dirs
}

// Walk recursively visits every regular file under root. The root itself is followed
// even if it is a link; links below it are skipped. Unreadable directories are
// skipped and the walk continues. Only ctx cancellation or a callback error stops it.
func (w *Walker) Walk(ctx context.Context, root string, callback func(Entry) error) error {
	w.dirs = 0
	return w.walkDir(ctx, root, callback)
}

func (w *Walker) walkDir(ctx context.Context, dir string, callback func(Entry) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// afero.ReadDir lstat's entries on the OS filesystem and sorts them by name
	infos, err := afero.ReadDir(w.fs, dir)
	if err != nil {
		w.skip(dir, "unreadable directory: "+err.Error())
		return nil
	}
	w.dirs++

	for _, info := range infos {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := filepath.Join(dir, info.Name())

		if isReparsePoint(info) {
			w.skip(path, "link or reparse point")
			continue
		}

		switch {
		case info.IsDir():
			if err := w.walkDir(ctx, path, callback); err != nil {
				return err
			}
		case info.Mode().IsRegular():
			if err := callback(Entry{Path: path, Name: info.Name(), Info: info}); err != nil {
				return err
			}
		default:
			w.skip(path, "not a regular file")
		}
	}

	return nil
}

func (w *Walker) skip(path, reason string) {
	w.logger.Debug("Skipping path", zap.String("path", path), zap.String("reason", reason))
	if w.onSkip != nil {
		w.onSkip(path, reason)
	}
}

// IsDir reports whether path exists and is a directory, following links
func IsDir(fs afero.Fs, path string) bool {
	ok, err := afero.DirExists(fs, path)
	return err == nil && ok
}

// GetExtension returns the file extension with its dot, as used by extension filters
func GetExtension(path string) string {
	return filepath.Ext(path)
}
