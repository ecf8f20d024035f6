package core

import (
	"errors"
	"fmt"

	"github.com/damiannass88/WindowsFileMover/internal/filesystem"
)

// Operation errors.
var (
	ErrNothingSelected   = errors.New("no files selected")
	ErrDestinationExists = errors.New("destination exists")
	ErrNoUniqueName      = filesystem.ErrNoUniqueName
	ErrOutsideSourceRoot = errors.New("file is outside the source root")
	ErrCancelled         = errors.New("operation cancelled")
)

// ValidationError blocks an operation before it touches the filesystem
type ValidationError struct {
	Field  string // "source", "destination"
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Path, e.Reason)
}

// IsValidation reports whether err is a ValidationError
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}
