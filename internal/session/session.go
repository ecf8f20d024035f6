package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/damiannass88/WindowsFileMover/internal/core"
	"github.com/damiannass88/WindowsFileMover/internal/report"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"go.uber.org/zap"
)

// ErrBusy is returned for requests made while a scan or move is running
var ErrBusy = errors.New("another operation is in progress")

// ErrNoSuchRecord is returned for an index outside the working set
var ErrNoSuchRecord = errors.New("no such record")

// State is the Idle/Busy state of a session. Scanning and Moving are the busy kinds.
type State int

const (
	Idle State = iota
	Scanning
	Moving
)

func (s State) String() string {
	switch s {
	case Scanning:
		return "scanning"
	case Moving:
		return "moving"
	default:
		return "idle"
	}
}

// Busy reports whether an operation is in flight
func (s State) Busy() bool {
	return s != Idle
}

// Change is delivered to observers after every state or selection change
type Change struct {
	State    State
	Total    int
	Selected int
	Status   string
}

// Observer is notified of session changes
type Observer func(Change)

// Session owns the working set of records and serializes scan and move.
// Only one operation may be in flight; background work sees snapshots only.
type Session struct {
	mu         sync.Mutex
	state      State
	records    []*models.FileRecord
	sourceRoot string
	status     string

	observers map[int]Observer
	nextID    int

	scanner *core.Scanner
	mover   *core.Mover
	logger  *zap.Logger
}

// New creates an idle session with an empty working set
func New(scanner *core.Scanner, mover *core.Mover, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		scanner:   scanner,
		mover:     mover,
		logger:    logger,
		observers: make(map[int]Observer),
	}
}

// Subscribe registers an observer and returns a function that removes it
func (s *Session) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.observers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// State returns the current state
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Status returns the last status line
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SourceRoot returns the root of the last completed scan
func (s *Session) SourceRoot() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sourceRoot
}

// Records returns a copy of the working set, largest first
func (s *Session) Records() []models.FileRecord {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.FileRecord, len(s.records))
	for i, r := range s.records {
		out[i] = *r
	}
	return out
}

// Len returns the size of the working set
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// SelectedCount returns how many records are selected
func (s *Session) SelectedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectedLocked()
}

// CanMove reports whether a move would be accepted now
func (s *Session) CanMove() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == Idle && s.selectedLocked() > 0
}

// Select sets the selected flag of the record at index
func (s *Session) Select(index int, on bool) error {
	return s.mutate(index, func(r *models.FileRecord) { r.Selected = on })
}

// ToggleSelected flips the selected flag of the record at index
func (s *Session) ToggleSelected(index int) error {
	return s.mutate(index, func(r *models.FileRecord) { r.Selected = !r.Selected })
}

// ToggleWithFolder flips the move-with-parent-folder flag of the record at index
func (s *Session) ToggleWithFolder(index int) error {
	return s.mutate(index, func(r *models.FileRecord) { r.MoveWithParentFolder = !r.MoveWithParentFolder })
}

// SetWithFolder sets the move-with-parent-folder flag of the record at index
func (s *Session) SetWithFolder(index int, on bool) error {
	return s.mutate(index, func(r *models.FileRecord) { r.MoveWithParentFolder = on })
}

// SelectAll selects every record
func (s *Session) SelectAll() error {
	return s.mutateAll(func(r *models.FileRecord) { r.Selected = true })
}

// SelectNone clears every selection
func (s *Session) SelectNone() error {
	return s.mutateAll(func(r *models.FileRecord) { r.Selected = false })
}

// Load replaces the working set with records from elsewhere (a saved plan).
// The records are copied; later changes to the arguments do not leak in.
func (s *Session) Load(sourceRoot string, records []*models.FileRecord) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.records = copyRecords(records)
	s.sourceRoot = sourceRoot
	s.status = fmt.Sprintf("Loaded: %d/%d", len(records), len(records))
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
	return nil
}

// Reset clears the working set; only allowed while idle
func (s *Session) Reset() error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.records = nil
	s.sourceRoot = ""
	s.status = ""
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.logger.Debug("Session reset")
	s.notify(change, observers)
	return nil
}

// BeginScan moves the session to Scanning
func (s *Session) BeginScan() error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	s.state = Scanning
	s.status = "Searching..."
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
	return nil
}

// CompleteScan applies a scan outcome and returns the session to Idle.
// A nil result (validation failure) keeps the previous working set.
func (s *Session) CompleteScan(result *models.ScanResult, err error) {
	s.mu.Lock()
	s.state = Idle
	switch {
	case result == nil:
		s.status = errorStatus(err)
	case errors.Is(err, core.ErrCancelled):
		s.records = result.Records
		s.sourceRoot = result.SourceRoot
		s.status = fmt.Sprintf("Search cancelled. Found: %d file(s).", len(result.Records))
	default:
		s.records = result.Records
		s.sourceRoot = result.SourceRoot
		s.status = report.ScanStatus(result)
	}
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
}

// BeginMove moves the session to Moving and returns a snapshot of the selected records.
// The snapshot is detached from the working set.
func (s *Session) BeginMove() ([]*models.FileRecord, error) {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return nil, ErrBusy
	}

	selected := make([]*models.FileRecord, 0)
	for _, r := range s.records {
		if r.Selected {
			c := *r
			selected = append(selected, &c)
		}
	}
	if len(selected) == 0 {
		s.mu.Unlock()
		return nil, core.ErrNothingSelected
	}

	s.state = Moving
	s.status = fmt.Sprintf("Moved: 0/%d", len(selected))
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
	return selected, nil
}

// CompleteMove retires moved records and returns the session to Idle
func (s *Session) CompleteMove(result *models.MoveResult, err error) {
	s.mu.Lock()
	s.state = Idle

	if result == nil {
		s.status = errorStatus(err)
	} else {
		moved := result.MovedSet()
		kept := s.records[:0]
		for _, r := range s.records {
			if _, ok := moved[r.FullPath]; !ok {
				kept = append(kept, r)
			}
		}
		// Release the tail so retired records can be collected
		for i := len(kept); i < len(s.records); i++ {
			s.records[i] = nil
		}
		s.records = kept

		s.status = report.MoveStatus(result)
	}

	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
}

// RunScan performs a whole scan on the calling goroutine
func (s *Session) RunScan(ctx context.Context, opts models.ScanOptions, sink core.ProgressSink) (*models.ScanResult, error) {
	if err := s.BeginScan(); err != nil {
		return nil, err
	}
	result, err := s.scanner.Scan(ctx, opts, sink)
	s.CompleteScan(result, err)
	return result, err
}

// RunMove moves the current selection on the calling goroutine
func (s *Session) RunMove(ctx context.Context, opts models.RelocationOptions, sink core.ProgressSink) (*models.MoveResult, error) {
	selected, err := s.BeginMove()
	if err != nil {
		return nil, err
	}
	if opts.SourceRoot == "" {
		opts.SourceRoot = s.SourceRoot()
	}
	result, err := s.mover.Move(ctx, selected, opts, sink)
	s.CompleteMove(result, err)
	return result, err
}

func (s *Session) mutate(index int, fn func(*models.FileRecord)) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	if index < 0 || index >= len(s.records) {
		s.mu.Unlock()
		return fmt.Errorf("%w: index %d of %d", ErrNoSuchRecord, index, len(s.records))
	}
	fn(s.records[index])
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
	return nil
}

func (s *Session) mutateAll(fn func(*models.FileRecord)) error {
	s.mu.Lock()
	if s.state.Busy() {
		s.mu.Unlock()
		return ErrBusy
	}
	for _, r := range s.records {
		fn(r)
	}
	change, observers := s.changeLocked()
	s.mu.Unlock()

	s.notify(change, observers)
	return nil
}

func (s *Session) selectedLocked() int {
	n := 0
	for _, r := range s.records {
		if r.Selected {
			n++
		}
	}
	return n
}

func (s *Session) changeLocked() (Change, []Observer) {
	observers := make([]Observer, 0, len(s.observers))
	for _, o := range s.observers {
		observers = append(observers, o)
	}
	return Change{
		State:    s.state,
		Total:    len(s.records),
		Selected: s.selectedLocked(),
		Status:   s.status,
	}, observers
}

func (s *Session) notify(change Change, observers []Observer) {
	for _, o := range observers {
		o(change)
	}
}

func copyRecords(records []*models.FileRecord) []*models.FileRecord {
	out := make([]*models.FileRecord, len(records))
	for i, r := range records {
		c := *r
		out[i] = &c
	}
	return out
}

func errorStatus(err error) string {
	if err == nil {
		return ""
	}
	return "Error: " + err.Error()
}
