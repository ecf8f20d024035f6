package models

import (
	"sort"
	"strings"
)

// ExtensionSet is a case-insensitive set of extensions stored as ".ext" in lower case.
// An empty set matches every file.
type ExtensionSet map[string]struct{}

// NewExtensionSet normalizes and collects the given extensions
func NewExtensionSet(exts ...string) ExtensionSet {
	set := make(ExtensionSet, len(exts))
	for _, ext := range exts {
		set.Add(ext)
	}
	return set
}

// NormalizeExtension trims the token, lower-cases it and ensures a leading dot.
// Returns "" for blank input.
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return strings.ToLower(ext)
}

// Add inserts a normalized extension, ignoring blanks
func (s ExtensionSet) Add(ext string) {
	if n := NormalizeExtension(ext); n != "" {
		s[n] = struct{}{}
	}
}

// Contains reports membership ignoring case. The argument is expected to carry its dot.
func (s ExtensionSet) Contains(ext string) bool {
	_, ok := s[strings.ToLower(ext)]
	return ok
}

// Matches reports whether a file extension passes the filter
func (s ExtensionSet) Matches(ext string) bool {
	if len(s) == 0 {
		return true
	}
	return s.Contains(ext)
}

// Empty reports whether the set disables extension filtering
func (s ExtensionSet) Empty() bool {
	return len(s) == 0
}

// Sorted returns the extensions in lexical order
func (s ExtensionSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for ext := range s {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

func (s ExtensionSet) String() string {
	if s.Empty() {
		return "*"
	}
	return strings.Join(s.Sorted(), ", ")
}
