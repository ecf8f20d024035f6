// Package filter builds the extension and name filters used by a scan.
package filter

import (
	"strings"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

// DefaultVocabulary is the fixed set of extensions offered as toggles
var DefaultVocabulary = []string{"mp4", "mkv", "avi", "mov", "wmv", "flv", "webm"}

// DefaultEnabled are the toggles switched on when nothing is configured
var DefaultEnabled = []string{"mp4", "mkv", "avi"}

// customSeparators split the free-text extension list
const customSeparators = ",; \t\r\n"

// ExtensionFilterBuilder combines vocabulary toggles with a free-text list
type ExtensionFilterBuilder struct {
	vocabulary []string
	toggles    map[string]bool
	custom     string
}

// NewExtensionFilterBuilder creates a builder over the given vocabulary with every toggle off.
// A nil vocabulary falls back to DefaultVocabulary.
func NewExtensionFilterBuilder(vocabulary []string) *ExtensionFilterBuilder {
	if len(vocabulary) == 0 {
		vocabulary = DefaultVocabulary
	}

	b := &ExtensionFilterBuilder{
		toggles: make(map[string]bool, len(vocabulary)),
	}
	for _, v := range vocabulary {
		key := toggleKey(v)
		if key == "" {
			continue
		}
		if _, dup := b.toggles[key]; dup {
			continue
		}
		b.vocabulary = append(b.vocabulary, key)
		b.toggles[key] = false
	}
	return b
}

// toggleKey maps "MP4", ".mp4" and "mp4" to "mp4"
func toggleKey(name string) string {
	return strings.TrimPrefix(models.NormalizeExtension(name), ".")
}

// Vocabulary returns the toggle names in display order
func (b *ExtensionFilterBuilder) Vocabulary() []string {
	out := make([]string, len(b.vocabulary))
	copy(out, b.vocabulary)
	return out
}

// Set switches a toggle. Returns false if the name is not part of the vocabulary.
func (b *ExtensionFilterBuilder) Set(name string, on bool) bool {
	key := toggleKey(name)
	if _, ok := b.toggles[key]; !ok {
		return false
	}
	b.toggles[key] = on
	return true
}

// Toggle flips a toggle and returns its new state
func (b *ExtensionFilterBuilder) Toggle(name string) bool {
	key := toggleKey(name)
	if _, ok := b.toggles[key]; !ok {
		return false
	}
	b.toggles[key] = !b.toggles[key]
	return b.toggles[key]
}

// Enabled reports the state of a toggle
func (b *ExtensionFilterBuilder) Enabled(name string) bool {
	return b.toggles[toggleKey(name)]
}

// EnableOnly switches on exactly the named toggles. Unknown names are returned.
func (b *ExtensionFilterBuilder) EnableOnly(names []string) []string {
	for k := range b.toggles {
		b.toggles[k] = false
	}
	var unknown []string
	for _, n := range names {
		if !b.Set(n, true) {
			unknown = append(unknown, n)
		}
	}
	return unknown
}

// SetCustom stores the free-text extension list
func (b *ExtensionFilterBuilder) SetCustom(text string) {
	b.custom = text
}

// Custom returns the free-text extension list
func (b *ExtensionFilterBuilder) Custom() string {
	return b.custom
}

// Build produces the normalized extension set. An empty set means no filtering.
func (b *ExtensionFilterBuilder) Build() models.ExtensionSet {
	set := models.NewExtensionSet()
	for _, name := range b.vocabulary {
		if b.toggles[name] {
			set.Add(name)
		}
	}
	for _, token := range SplitCustom(b.custom) {
		set.Add(token)
	}
	return set
}

// SplitCustom splits free text on comma, semicolon and whitespace, dropping empty tokens
func SplitCustom(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return strings.ContainsRune(customSeparators, r)
	})

	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}
