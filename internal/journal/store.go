// Package journal keeps a SQLite history of scans and moves.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned for an unknown operation id
var ErrNotFound = errors.New("operation not found")

// Operation kinds
const (
	KindScan = "scan"
	KindMove = "move"
)

// Operation is one journaled scan or move
type Operation struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	SourceRoot      string    `json:"source_root,omitempty"`
	DestinationRoot string    `json:"destination_root,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	Total           int       `json:"total"`
	Moved           int       `json:"moved"`
	Skipped         int       `json:"skipped"`
	Failed          int       `json:"failed"`
	Bytes           int64     `json:"bytes"`
	Cancelled       bool      `json:"cancelled"`
}

// Item is the outcome of one file in a move
type Item struct {
	Seq         int    `json:"seq"`
	Source      string `json:"source"`
	Destination string `json:"destination,omitempty"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	SizeBytes   int64  `json:"size_bytes"`
}

// Store is the SQLite-backed journal
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens or creates the journal at dbPath. ":memory:" gives a private in-memory journal.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create journal directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Every pooled connection would get its own empty in-memory database
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return &Store{db: db, dbPath: dbPath}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordScan journals a finished scan and returns its id
func (s *Store) RecordScan(ctx context.Context, result *models.ScanResult) (string, error) {
	op := &Operation{
		ID:         uuid.NewString(),
		Kind:       KindScan,
		SourceRoot: result.SourceRoot,
		StartedAt:  result.StartTime,
		FinishedAt: result.EndTime,
		Total:      len(result.Records),
		Bytes:      result.TotalSize,
	}

	if err := insertOperation(ctx, s.db, op); err != nil {
		return "", err
	}
	return op.ID, nil
}

// RecordMove journals a move and every item outcome in one transaction
func (s *Store) RecordMove(ctx context.Context, sourceRoot string, result *models.MoveResult) (string, error) {
	op := &Operation{
		ID:              uuid.NewString(),
		Kind:            KindMove,
		SourceRoot:      sourceRoot,
		DestinationRoot: result.DestinationRoot,
		StartedAt:       result.StartTime,
		FinishedAt:      result.EndTime,
		Total:           result.Total,
		Moved:           result.Count(models.StatusMoved),
		Skipped:         result.Count(models.StatusSkipped),
		Failed:          result.Count(models.StatusFailed),
		Bytes:           result.MovedBytes(),
		Cancelled:       result.Cancelled,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertOperation(ctx, tx, op); err != nil {
		return "", err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO move_items
		(operation_id, seq, source, destination, status, reason, size_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare item insert: %w", err)
	}
	defer stmt.Close()

	for i, o := range result.Outcomes {
		if _, err := stmt.ExecContext(ctx, op.ID, i+1, o.Source, o.Destination, string(o.Status), o.Reason, o.Size); err != nil {
			return "", fmt.Errorf("insert item %s: %w", o.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit move: %w", err)
	}
	return op.ID, nil
}

// ListOperations returns the most recent operations first. limit <= 0 returns all.
func (s *Store) ListOperations(ctx context.Context, limit int) ([]*Operation, error) {
	query := `SELECT id, kind, source_root, destination_root, started_at, finished_at,
		total, moved, skipped, failed, bytes, cancelled
		FROM operations ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	var ops []*Operation
	for rows.Next() {
		op, err := scanOperation(rows)
		if err != nil {
			return nil, err
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Operation returns one operation by id
func (s *Store) Operation(ctx context.Context, id string) (*Operation, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id, kind, source_root, destination_root, started_at, finished_at,
		total, moved, skipped, failed, bytes, cancelled
		FROM operations WHERE id = ?`, id)

	op, err := scanOperation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return op, err
}

// Items returns the per-file outcomes of a move in processing order
func (s *Store) Items(ctx context.Context, operationID string) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT seq, source, destination, status, reason, size_bytes
		FROM move_items WHERE operation_id = ? ORDER BY seq`, operationID)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Seq, &it.Source, &it.Destination, &it.Status, &it.Reason, &it.SizeBytes); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, &it)
	}
	return items, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func insertOperation(ctx context.Context, db execer, op *Operation) error {
	_, err := db.ExecContext(ctx, `INSERT INTO operations
		(id, kind, source_root, destination_root, started_at, finished_at, total, moved, skipped, failed, bytes, cancelled)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		op.ID, op.Kind, op.SourceRoot, op.DestinationRoot,
		op.StartedAt.UnixMilli(), op.FinishedAt.UnixMilli(),
		op.Total, op.Moved, op.Skipped, op.Failed, op.Bytes, op.Cancelled)
	if err != nil {
		return fmt.Errorf("insert %s operation: %w", op.Kind, err)
	}
	return nil
}

func scanOperation(row rowScanner) (*Operation, error) {
	var op Operation
	var started, finished int64
	err := row.Scan(&op.ID, &op.Kind, &op.SourceRoot, &op.DestinationRoot, &started, &finished,
		&op.Total, &op.Moved, &op.Skipped, &op.Failed, &op.Bytes, &op.Cancelled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan operation: %w", err)
	}
	op.StartedAt = time.UnixMilli(started)
	op.FinishedAt = time.UnixMilli(finished)
	return &op, nil
}
