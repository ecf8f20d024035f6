package filter

import (
	"strings"

	"github.com/damiannass88/WindowsFileMover/internal/filesystem"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

// Matcher applies the per-file filters of a scan
type Matcher struct {
	extensions models.ExtensionSet
	word       string
	minSize    int64
	maxSize    int64
}

// NewMatcher prepares the filters from scan options
func NewMatcher(opts models.ScanOptions) *Matcher {
	return &Matcher{
		extensions: opts.Extensions,
		word:       strings.ToLower(strings.TrimSpace(opts.NameContains)),
		minSize:    opts.MinSize,
		maxSize:    opts.MaxSize,
	}
}

// MatchName checks extension and name filters, which need no stat
func (m *Matcher) MatchName(name string) (bool, string) {
	if !m.extensions.Matches(filesystem.GetExtension(name)) {
		return false, "extension not in filter"
	}
	if m.word != "" && !strings.Contains(strings.ToLower(name), m.word) {
		return false, "name does not contain filter word"
	}
	return true, ""
}

// MatchSize checks the size bounds
func (m *Matcher) MatchSize(size int64) (bool, string) {
	if m.minSize > 0 && size < m.minSize {
		return false, "smaller than minimum size"
	}
	if m.maxSize > 0 && size > m.maxSize {
		return false, "larger than maximum size"
	}
	return true, ""
}
