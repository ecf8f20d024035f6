package models

import (
	"strconv"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FileRecord describes a file found by a scan together with the user's intent for it
type FileRecord struct {
	Name      string `json:"name" yaml:"name"`             // Base file name
	FullPath  string `json:"path" yaml:"path"`             // Absolute path at scan time
	SizeBytes int64  `json:"size_bytes" yaml:"size_bytes"` // Size at scan time, not re-validated

	Selected             bool `json:"selected" yaml:"selected"`
	MoveWithParentFolder bool `json:"move_with_parent_folder" yaml:"move_with_parent_folder"`
}

// NewFileRecord creates an unselected record
func NewFileRecord(name, fullPath string, size int64) *FileRecord {
	if size < 0 {
		size = 0
	}
	return &FileRecord{
		Name:      name,
		FullPath:  fullPath,
		SizeBytes: size,
	}
}

// SizeHuman renders the size in the largest unit keeping the number below 1024
func (r *FileRecord) SizeHuman() string {
	return HumanSize(r.SizeBytes)
}

// HumanSize formats bytes as e.g. "1.5 KB" with at most two decimals
func HumanSize(bytes int64) string {
	size := float64(bytes)
	unit := 0
	for size >= 1024 && unit < len(sizeUnits)-1 {
		size /= 1024
		unit++
	}
	rounded := roundTo2(size)
	// 1023.999 KB rounds up to 1024 and belongs to the next unit
	if rounded >= 1024 && unit < len(sizeUnits)-1 {
		rounded = roundTo2(size / 1024)
		unit++
	}
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}

func roundTo2(v float64) float64 {
	s := strconv.FormatFloat(v, 'f', 2, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}

// ScanOptions controls a single scan
type ScanOptions struct {
	SourceRoot   string
	Extensions   ExtensionSet // Empty means no extension filtering
	NameContains string       // Case-insensitive, empty means no filtering
	MinSize      int64        // 0 means unbounded
	MaxSize      int64        // 0 means unbounded
}

// RelocationOptions controls a single move. Read-only for the duration of the move.
type RelocationOptions struct {
	DestinationRoot       string
	SourceRoot            string // Required when KeepRelativeStructure is set
	KeepRelativeStructure bool
	AutoRenameOnConflict  bool
	MaxRenameAttempts     int // Defaults to DefaultMaxRenameAttempts when <= 0
}

// DefaultMaxRenameAttempts bounds the "name (N).ext" search
const DefaultMaxRenameAttempts = 99999
