package tui

import (
	"context"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/damiannass88/WindowsFileMover/internal/core"
	"github.com/damiannass88/WindowsFileMover/internal/session"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func seed(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/src/big.mp4", make([]byte, 30), 0644))
	require.NoError(t, afero.WriteFile(fs, "/src/sub/mid.mkv", make([]byte, 20), 0644))
	require.NoError(t, afero.WriteFile(fs, "/src/small.avi", make([]byte, 10), 0644))
	require.NoError(t, fs.MkdirAll("/dst", 0755))
	return fs
}

func newModel(t *testing.T, fs afero.Fs, opts Options) Model {
	t.Helper()
	logger := zaptest.NewLogger(t)
	scanner := core.NewScanner(fs, logger)
	mover := core.NewMover(fs, logger)
	sess := session.New(scanner, mover, logger)

	if opts.Scan.SourceRoot == "" {
		opts.Scan.SourceRoot = "/src"
	}
	if opts.Relocation.DestinationRoot == "" {
		opts.Relocation.DestinationRoot = "/dst"
	}
	return New(context.Background(), sess, scanner, mover, opts)
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update should return a Model")
	return model, cmd
}

func press(t *testing.T, m Model, k string) (Model, tea.Cmd) {
	t.Helper()
	if k == " " {
		return update(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")})
	}
	return update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
}

// drain runs cmd and every command it batches, collecting the messages
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// finish feeds the completion message of cmd back into the model
func finish(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case scanDoneMsg, moveDoneMsg:
			m, _ = update(t, m, msg)
			return m
		}
	}
	t.Fatal("command produced no completion message")
	return m
}

func scanned(t *testing.T, m Model) Model {
	t.Helper()
	m, cmd := update(t, m, rescanMsg{})
	require.Equal(t, session.Scanning, m.session.State())
	return finish(t, m, cmd)
}

func TestInit(t *testing.T) {
	m := newModel(t, seed(t), Options{})
	cmd := m.Init()
	require.NotNil(t, cmd)
	assert.IsType(t, rescanMsg{}, cmd())

	m.opts.SkipInitialScan = true
	assert.Nil(t, m.Init())

	m.opts.SkipInitialScan = false
	m.opts.Scan.SourceRoot = ""
	assert.Nil(t, m.Init())
}

func TestNewShowsLoadedRecords(t *testing.T) {
	logger := zaptest.NewLogger(t)
	fs := seed(t)
	scanner, mover := core.NewScanner(fs, logger), core.NewMover(fs, logger)
	sess := session.New(scanner, mover, logger)

	rec := models.NewFileRecord("big.mp4", "/src/big.mp4", 30)
	rec.Selected = true
	require.NoError(t, sess.Load("/src", []*models.FileRecord{rec}))

	m := New(context.Background(), sess, scanner, mover, Options{SkipInitialScan: true})
	require.Len(t, m.table.Rows(), 1)
	assert.Equal(t, "[x]", m.table.Rows()[0][0])
	assert.True(t, m.session.CanMove())
}

func TestScanFillsTable(t *testing.T) {
	m := scanned(t, newModel(t, seed(t), Options{}))

	assert.Equal(t, session.Idle, m.session.State())
	assert.Equal(t, "Search done. Found: 3 file(s).", m.lastEvent)
	require.Len(t, m.records, 3)
	assert.Equal(t, "big.mp4", m.records[0].Name)
	assert.Len(t, m.table.Rows(), 3)
	assert.Equal(t, "[ ]", m.table.Rows()[0][0])
}

func TestScanProgressIsRelayed(t *testing.T) {
	m := newModel(t, seed(t), Options{})

	var msgs []tea.Msg
	m.relay.set(func(msg tea.Msg) { msgs = append(msgs, msg) })

	m, cmd := update(t, m, rescanMsg{})
	m = finish(t, m, cmd)

	require.NotEmpty(t, msgs)
	assert.Equal(t, progressMsg{Count: 0, Total: 0, Status: "Searching..."}, msgs[0])
	assert.Equal(t, progressMsg{Count: 3, Total: 3, Status: "Loaded: 3/3"}, msgs[len(msgs)-1])

	for _, msg := range msgs {
		m, _ = update(t, m, msg)
	}
	assert.Equal(t, 3, m.count)
	assert.Equal(t, "Loaded: 3/3", m.opStatus)
}

func TestMoveInertWithoutSelection(t *testing.T) {
	m := scanned(t, newModel(t, seed(t), Options{}))

	m, cmd := press(t, m, "m")
	assert.Nil(t, cmd)
	assert.Equal(t, "Nothing selected", m.lastEvent)
	assert.Equal(t, session.Idle, m.session.State())
}

func TestSelectionKeys(t *testing.T) {
	m := scanned(t, newModel(t, seed(t), Options{}))

	m, _ = press(t, m, " ")
	assert.True(t, m.records[0].Selected)
	assert.Equal(t, "[x]", m.table.Rows()[0][0])

	m, _ = press(t, m, "f")
	assert.True(t, m.records[0].MoveWithParentFolder)
	assert.Equal(t, "dir", m.table.Rows()[0][1])

	m, _ = press(t, m, "a")
	assert.Equal(t, 3, m.session.SelectedCount())

	m, _ = press(t, m, "A")
	assert.Equal(t, 0, m.session.SelectedCount())
	assert.Equal(t, "Cleared selection", m.lastEvent)
}

func TestMoveSelected(t *testing.T) {
	fs := seed(t)
	var journaled *models.MoveResult
	m := scanned(t, newModel(t, fs, Options{
		OnMove: func(r *models.MoveResult) { journaled = r },
	}))

	m, _ = press(t, m, "a")
	m, cmd := press(t, m, "m")
	require.NotNil(t, cmd)
	assert.Equal(t, session.Moving, m.session.State())
	assert.Equal(t, 3, m.total)

	m = finish(t, m, cmd)
	assert.Equal(t, session.Idle, m.session.State())
	assert.Equal(t, "Move completed.", m.lastEvent)
	assert.Empty(t, m.records)
	assert.Empty(t, m.table.Rows())

	require.NotNil(t, journaled)
	assert.Len(t, journaled.Moved, 3)

	for _, p := range []string{"/dst/big.mp4", "/dst/mid.mkv", "/dst/small.avi"} {
		ok, err := afero.Exists(fs, p)
		require.NoError(t, err)
		assert.True(t, ok, p)
	}
}

func TestMoveErrorsArePreviewed(t *testing.T) {
	fs := seed(t)
	for _, p := range []string{"/dst/big.mp4", "/dst/mid.mkv", "/dst/small.avi"} {
		require.NoError(t, afero.WriteFile(fs, p, []byte("taken"), 0644))
	}
	m := scanned(t, newModel(t, fs, Options{ErrorPreview: 1}))

	m, _ = press(t, m, "a")
	m, cmd := press(t, m, "m")
	m = finish(t, m, cmd)

	assert.Equal(t, "Move completed with 3 error(s).", m.lastEvent)
	assert.Len(t, m.errors, 1)
	assert.Equal(t, 2, m.moreErrs)
	assert.Len(t, m.records, 3, "failed records stay in the table")

	m.updateLayout(120, 40)
	assert.Contains(t, m.View(), "(+2 more)")
}

func TestBusyRejectsSelection(t *testing.T) {
	m := scanned(t, newModel(t, seed(t), Options{}))

	m, cmd := update(t, m, rescanMsg{})
	require.NotNil(t, cmd)

	m, _ = press(t, m, "a")
	assert.Equal(t, "Busy, wait for the current operation", m.lastEvent)

	m, second := press(t, m, "r")
	assert.Nil(t, second)

	m = finish(t, m, cmd)
	assert.Equal(t, 0, m.session.SelectedCount())
}

func TestRelocationToggles(t *testing.T) {
	m := newModel(t, seed(t), Options{})
	require.False(t, m.opts.Relocation.KeepRelativeStructure)

	m, _ = press(t, m, "k")
	assert.True(t, m.opts.Relocation.KeepRelativeStructure)
	assert.Equal(t, "Keep structure on", m.lastEvent)

	m, _ = press(t, m, "n")
	assert.True(t, m.opts.Relocation.AutoRenameOnConflict)
	assert.Equal(t, "Auto rename on", m.lastEvent)
}

func TestKeepStructureMove(t *testing.T) {
	fs := seed(t)
	m := scanned(t, newModel(t, fs, Options{}))
	m, _ = press(t, m, "k")
	m, _ = press(t, m, "a")
	m, cmd := press(t, m, "m")
	finish(t, m, cmd)

	ok, err := afero.Exists(fs, "/dst/sub/mid.mkv")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestResetClearsTable(t *testing.T) {
	m := scanned(t, newModel(t, seed(t), Options{}))

	m, _ = press(t, m, "x")
	assert.Empty(t, m.records)
	assert.Empty(t, m.table.Rows())

	m, _ = press(t, m, " ")
	assert.Equal(t, "No file under the cursor", m.lastEvent)

	m = scanned(t, m)
	assert.Equal(t, 0, m.table.Cursor())
	m, _ = press(t, m, " ")
	assert.True(t, m.records[0].Selected)
}

func TestCursorAnchorsOnFirstRows(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, m Model) Model
	}{
		{"fresh model", func(t *testing.T, m Model) Model { return m }},
		{"after reset", func(t *testing.T, m Model) Model {
			m = scanned(t, m)
			m, _ = press(t, m, "x")
			return m
		}},
		{"after moving everything", func(t *testing.T, m Model) Model {
			m = scanned(t, m)
			m, _ = press(t, m, "a")
			m, cmd := press(t, m, "m")
			return finish(t, m, cmd)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := seed(t)
			m := tt.setup(t, newModel(t, fs, Options{}))
			require.Empty(t, m.table.Rows())

			// Refill the source so the next scan has rows again
			require.NoError(t, afero.WriteFile(fs, "/src/big.mp4", make([]byte, 30), 0644))
			m = scanned(t, m)
			require.NotEmpty(t, m.table.Rows())
			assert.Equal(t, 0, m.table.Cursor())

			m, _ = press(t, m, " ")
			assert.True(t, m.records[0].Selected)
			assert.Equal(t, "[x]", m.table.Rows()[0][0])
		})
	}
}

func TestSessionChangesRefreshTable(t *testing.T) {
	m := scanned(t, newModel(t, seed(t), Options{}))

	// Mutations made outside the key handlers still reach the table
	require.NoError(t, m.session.Select(1, true))
	assert.Equal(t, "[ ]", m.table.Rows()[1][0])

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})
	assert.Equal(t, "[x]", m.table.Rows()[1][0])
	assert.True(t, m.records[1].Selected)
}

func TestQuitCancelsWork(t *testing.T) {
	m := newModel(t, seed(t), Options{})

	m, cmd := press(t, m, "q")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Error(t, m.ctx.Err())
}

func TestQuitWhileBusyWaitsForOutcome(t *testing.T) {
	tests := []struct {
		name  string
		start func(t *testing.T, m Model) (Model, tea.Cmd)
		state session.State
	}{
		{"move", func(t *testing.T, m Model) (Model, tea.Cmd) {
			m, _ = press(t, m, "a")
			return press(t, m, "m")
		}, session.Moving},
		{"scan", func(t *testing.T, m Model) (Model, tea.Cmd) {
			return update(t, m, rescanMsg{})
		}, session.Scanning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := seed(t)
			var moves []*models.MoveResult
			m := scanned(t, newModel(t, fs, Options{
				OnMove: func(r *models.MoveResult) { moves = append(moves, r) },
			}))

			m, work := tt.start(t, m)
			require.NotNil(t, work)
			require.Equal(t, tt.state, m.session.State())

			m, cmd := press(t, m, "q")
			assert.Nil(t, cmd)
			assert.Error(t, m.ctx.Err())
			assert.Equal(t, tt.state, m.session.State())
			assert.Equal(t, "Stopping, waiting for the current operation...", m.lastEvent)

			var done tea.Msg
			for _, msg := range drain(work) {
				switch msg.(type) {
				case scanDoneMsg, moveDoneMsg:
					done = msg
				}
			}
			require.NotNil(t, done)

			m, cmd = update(t, m, done)
			require.NotNil(t, cmd)
			assert.IsType(t, tea.QuitMsg{}, cmd())
			assert.Equal(t, session.Idle, m.session.State())

			if tt.state == session.Moving {
				require.Len(t, moves, 1)
				assert.True(t, moves[0].Cancelled)
				assert.Empty(t, moves[0].Moved)

				ok, err := afero.Exists(fs, "/src/big.mp4")
				require.NoError(t, err)
				assert.True(t, ok)
			} else {
				assert.Empty(t, moves)
			}
		})
	}
}

func TestView(t *testing.T) {
	m := newModel(t, seed(t), Options{})
	assert.Equal(t, "Loading…", m.View())

	m = scanned(t, m)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 40})

	view := m.View()
	assert.Contains(t, view, "filemover")
	assert.Contains(t, view, "big.mp4")
	assert.Contains(t, view, "Files: 3")
}
