package core

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/damiannass88/WindowsFileMover/internal/filesystem"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultMoveStatusEvery is how many items pass between status text refreshes
const DefaultMoveStatusEvery = 10

// Mover relocates selected records. Like Scanner it keeps no state between calls.
type Mover struct {
	fs          afero.Fs
	logger      *zap.Logger
	statusEvery int
}

// NewMover creates a new mover
func NewMover(fs afero.Fs, logger *zap.Logger) *Mover {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mover{
		fs:          fs,
		logger:      logger,
		statusEvery: DefaultMoveStatusEvery,
	}
}

// SetStatusEvery sets how often the status text changes; the counter still advances per item
func (m *Mover) SetStatusEvery(n int) {
	if n < 1 {
		n = 1
	}
	m.statusEvery = n
}

// Validate resolves and checks relocation options without touching anything
func (m *Mover) Validate(opts models.RelocationOptions) (models.RelocationOptions, error) {
	if opts.DestinationRoot == "" {
		return opts, &ValidationError{Field: "destination", Reason: "not set"}
	}
	dest, err := filepath.Abs(opts.DestinationRoot)
	if err != nil {
		return opts, &ValidationError{Field: "destination", Path: opts.DestinationRoot, Reason: err.Error()}
	}
	if !filesystem.IsDir(m.fs, dest) {
		return opts, &ValidationError{Field: "destination", Path: dest, Reason: "does not exist or is not a directory"}
	}
	opts.DestinationRoot = dest

	if opts.KeepRelativeStructure {
		if opts.SourceRoot == "" {
			return opts, &ValidationError{Field: "source", Reason: "required to keep relative structure"}
		}
		src, err := filepath.Abs(opts.SourceRoot)
		if err != nil {
			return opts, &ValidationError{Field: "source", Path: opts.SourceRoot, Reason: err.Error()}
		}
		opts.SourceRoot = src
	}

	if opts.MaxRenameAttempts <= 0 {
		opts.MaxRenameAttempts = models.DefaultMaxRenameAttempts
	}

	return opts, nil
}

// Move relocates every record independently; a failure on one item never stops the rest.
// Validation problems and an empty selection are returned as errors before anything
// is touched. Per-item problems are returned as data in the result.
func (m *Mover) Move(ctx context.Context, records []*models.FileRecord, opts models.RelocationOptions, sink ProgressSink) (*models.MoveResult, error) {
	sink = sinkOrNop(sink)

	opts, err := m.Validate(opts)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNothingSelected
	}

	total := len(records)
	result := &models.MoveResult{
		StartTime:       time.Now(),
		DestinationRoot: opts.DestinationRoot,
		Moved:           make([]string, 0, total),
		Messages:        make([]string, 0),
		Outcomes:        make([]*models.Outcome, 0, total),
		Total:           total,
	}

	m.logger.Info("Starting move",
		zap.Int("files", total),
		zap.String("destination", opts.DestinationRoot),
		zap.Bool("keep_structure", opts.KeepRelativeStructure),
		zap.Bool("auto_rename", opts.AutoRenameOnConflict))

	status := ""
	for i, rec := range records {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		outcome := m.moveOne(rec, opts)
		result.Outcomes = append(result.Outcomes, outcome)

		switch outcome.Status {
		case models.StatusMoved:
			result.Moved = append(result.Moved, outcome.Source)
			m.logger.Debug("Moved file",
				zap.String("source", outcome.Source),
				zap.String("destination", outcome.Destination))
		case models.StatusSkipped:
			result.Messages = append(result.Messages, fmt.Sprintf("%s -> skipped, %s", outcome.Source, outcome.Reason))
			m.logger.Info("Skipped file", zap.String("source", outcome.Source), zap.String("reason", outcome.Reason))
		default:
			result.Messages = append(result.Messages, fmt.Sprintf("%s -> %s", outcome.Source, outcome.Reason))
			m.logger.Warn("Failed to move file", zap.String("source", outcome.Source), zap.String("reason", outcome.Reason))
		}

		count := i + 1
		result.Processed = count
		if count%m.statusEvery == 0 || count == total {
			status = fmt.Sprintf("Moved: %d/%d", count, total)
		}
		sink.Report(count, total, status)
	}

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	m.logger.Info("Move completed",
		zap.Duration("duration", result.Duration),
		zap.Int("moved", len(result.Moved)),
		zap.Int("messages", len(result.Messages)),
		zap.Bool("cancelled", result.Cancelled))

	if result.Cancelled {
		return result, fmt.Errorf("move after %d of %d items: %w", result.Processed, total, ErrCancelled)
	}
	return result, nil
}

// moveOne resolves the destination of one record, applies the conflict policy and moves it
func (m *Mover) moveOne(rec *models.FileRecord, opts models.RelocationOptions) *models.Outcome {
	src := rec.FullPath
	outcome := &models.Outcome{
		Source: src,
		Status: models.StatusFailed,
		Size:   rec.SizeBytes,
	}

	folder, err := destinationFolder(rec, opts)
	if err != nil {
		outcome.Reason = err.Error()
		return outcome
	}

	if err := filesystem.EnsureDir(m.fs, folder); err != nil {
		outcome.Reason = err.Error()
		return outcome
	}

	candidate := filepath.Join(folder, filepath.Base(src))
	outcome.Destination = candidate

	if filesystem.SamePath(candidate, src) {
		outcome.Status = models.StatusSkipped
		outcome.Reason = "already at destination"
		return outcome
	}

	exists, err := filesystem.Exists(m.fs, candidate)
	if err != nil {
		outcome.Reason = err.Error()
		return outcome
	}

	if exists {
		switch {
		case rec.MoveWithParentFolder:
			// The folder stands for the same group of files, so never rename into it
			outcome.Status = models.StatusSkipped
			outcome.Reason = "destination exists: " + candidate
			return outcome
		case opts.AutoRenameOnConflict:
			renamed, err := filesystem.UniquePath(m.fs, candidate, opts.MaxRenameAttempts)
			if err != nil {
				outcome.Reason = err.Error()
				return outcome
			}
			candidate = renamed
			outcome.Destination = candidate
			outcome.Renamed = true
		default:
			outcome.Reason = fmt.Sprintf("%v: %s", ErrDestinationExists, candidate)
			return outcome
		}
	}

	if err := filesystem.MoveFile(m.fs, src, candidate); err != nil {
		outcome.Reason = err.Error()
		return outcome
	}

	outcome.Status = models.StatusMoved
	outcome.Reason = ""
	return outcome
}

// destinationFolder picks the folder a record goes to
func destinationFolder(rec *models.FileRecord, opts models.RelocationOptions) (string, error) {
	parent := filepath.Dir(rec.FullPath)

	switch {
	case rec.MoveWithParentFolder:
		name := filepath.Base(parent)
		if name == "." || name == string(filepath.Separator) || name == "" {
			return opts.DestinationRoot, nil
		}
		return filepath.Join(opts.DestinationRoot, name), nil

	case opts.KeepRelativeStructure:
		rel, err := filepath.Rel(opts.SourceRoot, parent)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return "", fmt.Errorf("%w: %s", ErrOutsideSourceRoot, opts.SourceRoot)
		}
		return filepath.Join(opts.DestinationRoot, rel), nil

	default:
		return opts.DestinationRoot, nil
	}
}
