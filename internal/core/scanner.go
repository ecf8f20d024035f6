package core

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/damiannass88/WindowsFileMover/internal/filesystem"
	"github.com/damiannass88/WindowsFileMover/internal/filter"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultScanReportEvery is how many emitted records pass between progress updates
const DefaultScanReportEvery = 50

// Scanner finds files under a source root. It holds no per-scan state and
// may be reused for consecutive scans.
type Scanner struct {
	fs          afero.Fs
	logger      *zap.Logger
	reportEvery int
}

// NewScanner creates a new scanner instance
func NewScanner(fs afero.Fs, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scanner{
		fs:          fs,
		logger:      logger,
		reportEvery: DefaultScanReportEvery,
	}
}

// SetReportEvery sets the progress interval; values below 1 report every record
func (s *Scanner) SetReportEvery(n int) {
	if n < 1 {
		n = 1
	}
	s.reportEvery = n
}

// Scan walks opts.SourceRoot and returns the matching files, largest first.
// Per-path problems never fail the scan; they are collected in ScanResult.Skipped.
// A cancelled ctx returns the records found so far together with ErrCancelled.
func (s *Scanner) Scan(ctx context.Context, opts models.ScanOptions, sink ProgressSink) (*models.ScanResult, error) {
	sink = sinkOrNop(sink)

	root, err := s.validateRoot(opts.SourceRoot)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Starting scan",
		zap.String("root", root),
		zap.String("extensions", opts.Extensions.String()),
		zap.String("name_contains", opts.NameContains))

	result := &models.ScanResult{
		StartTime:  time.Now(),
		SourceRoot: root,
		Records:    make([]*models.FileRecord, 0),
	}

	matcher := filter.NewMatcher(opts)
	walker := filesystem.NewWalker(s.fs, s.logger)
	walker.OnSkip(func(path, reason string) {
		result.Skipped = append(result.Skipped, models.Skip{Path: path, Reason: reason})
	})

	sink.Report(0, 0, "Searching...")

	walkErr := walker.Walk(ctx, root, func(entry filesystem.Entry) error {
		result.TotalFiles++

		if ok, _ := matcher.MatchName(entry.Name); !ok {
			return nil
		}

		// The file may have vanished since it was listed
		info, err := s.fs.Stat(entry.Path)
		if err != nil {
			s.logger.Debug("Stat failed, skipping", zap.String("path", entry.Path), zap.Error(err))
			result.Skipped = append(result.Skipped, models.Skip{Path: entry.Path, Reason: "stat failed: " + err.Error()})
			return nil
		}

		if ok, _ := matcher.MatchSize(info.Size()); !ok {
			return nil
		}

		result.Records = append(result.Records, models.NewFileRecord(entry.Name, entry.Path, info.Size()))
		result.TotalSize += info.Size()
		return nil
	})
	result.TotalDirs = walker.DirsVisited()

	sort.SliceStable(result.Records, func(i, j int) bool {
		return result.Records[i].SizeBytes > result.Records[j].SizeBytes
	})

	s.emit(result.Records, sink)

	result.EndTime = time.Now()
	result.Duration = result.EndTime.Sub(result.StartTime)

	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			s.logger.Info("Scan cancelled", zap.Int("found", len(result.Records)))
			return result, fmt.Errorf("scan %s: %w", root, ErrCancelled)
		}
		return result, fmt.Errorf("scan %s: %w", root, walkErr)
	}

	s.logger.Info("Scan completed",
		zap.Duration("duration", result.Duration),
		zap.Int("found", len(result.Records)),
		zap.Int("files_visited", result.TotalFiles),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// emit reports the sorted list in coarse steps and always finishes with count == total
func (s *Scanner) emit(records []*models.FileRecord, sink ProgressSink) {
	total := len(records)
	for i := s.reportEvery; i < total; i += s.reportEvery {
		sink.Report(i, total, fmt.Sprintf("Loaded: %d/%d", i, total))
	}
	sink.Report(total, total, fmt.Sprintf("Loaded: %d/%d", total, total))
}

// validateRoot resolves the source root and makes sure it is a directory
func (s *Scanner) validateRoot(root string) (string, error) {
	if root == "" {
		return "", &ValidationError{Field: "source", Reason: "not set"}
	}

	abs, err := filepath.Abs(root)
	if err != nil {
		return "", &ValidationError{Field: "source", Path: root, Reason: err.Error()}
	}

	if !filesystem.IsDir(s.fs, abs) {
		return "", &ValidationError{Field: "source", Path: abs, Reason: "does not exist or is not a directory"}
	}

	return abs, nil
}
