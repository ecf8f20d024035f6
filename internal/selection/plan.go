// Package selection saves scan results as editable YAML plans and loads them back for a move.
package selection

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/damiannass88/WindowsFileMover/internal/filelock"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// PlanVersion is the plan file format version
const PlanVersion = 1

// ErrUnsupportedVersion is returned for plans written by a newer format
var ErrUnsupportedVersion = errors.New("unsupported plan version")

// Plan is a reviewed scan: the records plus the user's selection
type Plan struct {
	Version    int                  `yaml:"version"`
	CreatedAt  time.Time            `yaml:"created_at"`
	SourceRoot string               `yaml:"source_root"`
	Extensions []string             `yaml:"extensions,omitempty"`
	Files      []*models.FileRecord `yaml:"files"`
}

// NewPlan builds a plan from a scan result. With selectAll every record starts selected.
func NewPlan(result *models.ScanResult, extensions models.ExtensionSet, selectAll bool) *Plan {
	files := make([]*models.FileRecord, len(result.Records))
	for i, r := range result.Records {
		c := *r
		if selectAll {
			c.Selected = true
		}
		files[i] = &c
	}

	return &Plan{
		Version:    PlanVersion,
		CreatedAt:  result.EndTime,
		SourceRoot: result.SourceRoot,
		Extensions: extensions.Sorted(),
		Files:      files,
	}
}

// Selected returns the records marked for moving, in plan order
func (p *Plan) Selected() []*models.FileRecord {
	var out []*models.FileRecord
	for _, f := range p.Files {
		if f.Selected {
			out = append(out, f)
		}
	}
	return out
}

// Save writes the plan atomically
func Save(fs afero.Fs, path string, plan *Plan) error {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}
	return filelock.LockAndWrite(fs, path, data)
}

// Load reads and checks a plan file
func Load(fs afero.Fs, path string) (*Plan, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan: %w", err)
	}

	var plan Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("failed to parse plan %s: %w", path, err)
	}

	if plan.Version > PlanVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, plan.Version)
	}

	for i, f := range plan.Files {
		if f == nil || f.FullPath == "" {
			return nil, fmt.Errorf("plan %s: file %d has no path", path, i+1)
		}
		if f.Name == "" {
			f.Name = filepath.Base(f.FullPath)
		}
		if f.SizeBytes < 0 {
			f.SizeBytes = 0
		}
	}

	return &plan, nil
}
