package models

import "time"

// ScanResult contains the ordered output of a scan
type ScanResult struct {
	StartTime  time.Time     `json:"start_time"`
	EndTime    time.Time     `json:"end_time"`
	Duration   time.Duration `json:"duration"`
	SourceRoot string        `json:"source_root"`

	Records []*FileRecord `json:"records"` // Largest first, discovery order on ties
	Skipped []Skip        `json:"skipped,omitempty"`

	TotalDirs  int   `json:"total_dirs"`
	TotalFiles int   `json:"total_files"` // Regular files visited, matching or not
	TotalSize  int64 `json:"total_size"`  // Sum of matching records
}

// Skip is a path the scan left out, kept for diagnostics only
type Skip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// OutcomeStatus is the terminal state of one move item
type OutcomeStatus string

const (
	StatusMoved   OutcomeStatus = "moved"
	StatusSkipped OutcomeStatus = "skipped"
	StatusFailed  OutcomeStatus = "failed"
)

// Outcome is the result of moving one record
type Outcome struct {
	Source      string        `json:"source"`
	Destination string        `json:"destination,omitempty"`
	Status      OutcomeStatus `json:"status"`
	Reason      string        `json:"reason,omitempty"`
	Renamed     bool          `json:"renamed,omitempty"`
	Size        int64         `json:"size"`
}

// MoveResult aggregates the outcomes of one move invocation
type MoveResult struct {
	StartTime       time.Time     `json:"start_time"`
	EndTime         time.Time     `json:"end_time"`
	Duration        time.Duration `json:"duration"`
	DestinationRoot string        `json:"destination_root"`

	Moved    []string   `json:"moved"`    // Source paths, in processing order
	Messages []string   `json:"messages"` // Every error and skip message, unbounded
	Outcomes []*Outcome `json:"outcomes"`

	Total     int  `json:"total"`
	Processed int  `json:"processed"`
	Cancelled bool `json:"cancelled,omitempty"`
}

// MovedSet returns the moved source paths as a set, used to retire records
func (r *MoveResult) MovedSet() map[string]struct{} {
	set := make(map[string]struct{}, len(r.Moved))
	for _, p := range r.Moved {
		set[p] = struct{}{}
	}
	return set
}

// Count returns how many outcomes have the given status
func (r *MoveResult) Count(status OutcomeStatus) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// MovedBytes sums the sizes of moved items
func (r *MoveResult) MovedBytes() int64 {
	var total int64
	for _, o := range r.Outcomes {
		if o.Status == StatusMoved {
			total += o.Size
		}
	}
	return total
}
