// Package tui is the interactive terminal shell over a session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/damiannass88/WindowsFileMover/internal/core"
	"github.com/damiannass88/WindowsFileMover/internal/report"
	"github.com/damiannass88/WindowsFileMover/internal/session"
	"github.com/damiannass88/WindowsFileMover/pkg/models"
)

// Options configures the shell
type Options struct {
	Scan         models.ScanOptions
	Relocation   models.RelocationOptions
	ErrorPreview int

	// Start from records already loaded into the session
	SkipInitialScan bool

	// Called on the update loop after an operation completes
	OnScan func(*models.ScanResult)
	OnMove func(*models.MoveResult)
}

type progressMsg struct {
	Count  int
	Total  int
	Status string
}

type scanDoneMsg struct {
	Result *models.ScanResult
	Err    error
}

type moveDoneMsg struct {
	Result *models.MoveResult
	Err    error
}

// watcher collects session changes until the update loop redraws.
// Observers run on whichever goroutine mutated the session, so it never sends into the program.
type watcher struct {
	mu    sync.Mutex
	dirty bool
	last  session.Change
}

func (w *watcher) observe(c session.Change) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = c
	w.dirty = true
}

func (w *watcher) take() (session.Change, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	dirty := w.dirty
	w.dirty = false
	return w.last, dirty
}

// relay forwards progress from background work into the program.
// It is shared by every copy of the model.
type relay struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (r *relay) set(send func(tea.Msg)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.send = send
}

func (r *relay) Report(count, total int, status string) {
	r.mu.Lock()
	send := r.send
	r.mu.Unlock()
	if send != nil {
		send(progressMsg{Count: count, Total: total, Status: status})
	}
}

type styles struct {
	container lipgloss.Style
	header    lipgloss.Style
	title     lipgloss.Style
	subtitle  lipgloss.Style
	base      lipgloss.Style
	status    lipgloss.Style
	muted     lipgloss.Style
	accent    lipgloss.Style
	danger    lipgloss.Style
	chip      lipgloss.Style
	chipOff   lipgloss.Style
}

var ui = styles{
	container: lipgloss.NewStyle().Padding(0, 1),
	header:    lipgloss.NewStyle().Padding(0, 1),
	title:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),
	subtitle:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	base: lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("238")),
	status:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("242")),
	accent:  lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
	danger:  lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true),
	chip:    lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("62")).Padding(0, 1),
	chipOff: lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Background(lipgloss.Color("236")).Padding(0, 1),
}

// Model is the bubbletea model of the shell
type Model struct {
	ctx     context.Context
	cancel  context.CancelFunc
	session *session.Session
	scanner *core.Scanner
	mover   *core.Mover
	opts    Options
	relay   *relay
	changes *watcher
	unwatch func()

	table    table.Model
	spinner  spinner.Model
	progress progress.Model
	help     help.Model
	keys     keyMap

	records   []models.FileRecord
	count     int
	total     int
	opStatus  string
	lastEvent string
	errors    []string
	moreErrs  int
	width     int
	height    int

	// Quit was requested while busy; leave once the operation reports back
	quitting bool
}

// New creates the shell model. The first scan starts from Init when a source root is set.
func New(ctx context.Context, sess *session.Session, scanner *core.Scanner, mover *core.Mover, opts Options) Model {
	ctx, cancel := context.WithCancel(ctx)

	t := table.New(
		table.WithColumns(columns(100)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	// Space and f belong to selection here
	t.KeyMap.PageDown.SetKeys("pgdown")
	t.KeyMap.PageUp.SetKeys("pgup")

	st := table.DefaultStyles()
	st.Header = st.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("238")).
		BorderBottom(true).
		Bold(true)
	st.Selected = st.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57")).
		Bold(true)
	t.SetStyles(st)

	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))

	if opts.ErrorPreview <= 0 {
		opts.ErrorPreview = 20
	}

	m := Model{
		ctx:      ctx,
		cancel:   cancel,
		session:  sess,
		scanner:  scanner,
		mover:    mover,
		opts:     opts,
		relay:    &relay{},
		changes:  &watcher{},
		table:    t,
		spinner:  sp,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.unwatch = sess.Subscribe(m.changes.observe)
	m.refresh()
	return m
}

// Attach routes background progress into p
func (m Model) Attach(p *tea.Program) {
	m.relay.set(p.Send)
}

func (m Model) Init() tea.Cmd {
	if m.opts.SkipInitialScan || m.opts.Scan.SourceRoot == "" {
		return nil
	}
	return func() tea.Msg { return rescanMsg{} }
}

type rescanMsg struct{}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.updateLayout(msg.Width, msg.Height)

	case spinner.TickMsg:
		if m.session.State().Busy() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}

	case progress.FrameMsg:
		updated, cmd := m.progress.Update(msg)
		if next, ok := updated.(progress.Model); ok {
			m.progress = next
		}
		cmds = append(cmds, cmd)

	case rescanMsg:
		var cmd tea.Cmd
		m, cmd = m.startScan()
		cmds = append(cmds, cmd)

	case progressMsg:
		// Counts never go backwards within one operation
		if msg.Count >= m.count || msg.Total != m.total {
			m.count = msg.Count
			m.total = msg.Total
		}
		if msg.Status != "" {
			m.opStatus = msg.Status
		}
		if m.total > 0 {
			cmds = append(cmds, m.progress.SetPercent(float64(m.count)/float64(m.total)))
		}

	case scanDoneMsg:
		m.session.CompleteScan(msg.Result, msg.Err)
		m.lastEvent = m.session.Status()
		if msg.Result != nil && m.opts.OnScan != nil {
			m.opts.OnScan(msg.Result)
		}
		if m.quitting {
			m.sync()
			return m, tea.Quit
		}

	case moveDoneMsg:
		m.session.CompleteMove(msg.Result, msg.Err)
		m.lastEvent = m.session.Status()
		if msg.Result != nil {
			m.errors, m.moreErrs = report.Preview(msg.Result.Messages, m.opts.ErrorPreview)
			if m.opts.OnMove != nil {
				m.opts.OnMove(msg.Result)
			}
		}
		if m.quitting {
			m.sync()
			return m, tea.Quit
		}

	case tea.KeyMsg:
		if m.handled(msg) {
			var cmd tea.Cmd
			var quit bool
			m, cmd, quit = m.handleKey(msg)
			if quit {
				return m, tea.Quit
			}
			cmds = append(cmds, cmd)
			break
		}
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.sync()
	return m, tea.Batch(cmds...)
}

// sync redraws the table when the session changed since the last message
func (m *Model) sync() {
	if _, changed := m.changes.take(); changed {
		m.refresh()
	}
}

func (m Model) handled(msg tea.KeyMsg) bool {
	for _, b := range m.keys.bindings() {
		if key.Matches(msg, b) {
			return true
		}
	}
	return false
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd, bool) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.cancel()
		if m.session.State().Busy() {
			// The outcome still has to be applied and journaled
			m.quitting = true
			m.lastEvent = "Stopping, waiting for the current operation..."
			return m, nil, false
		}
		return m, nil, true
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.Rescan):
		return m.withCmd(m.startScan())
	case key.Matches(msg, m.keys.Move):
		return m.withCmd(m.startMove())
	case key.Matches(msg, m.keys.ToggleSelect):
		m.apply(m.session.ToggleSelected(m.table.Cursor()), "")
	case key.Matches(msg, m.keys.ToggleFolder):
		m.apply(m.session.ToggleWithFolder(m.table.Cursor()), "")
	case key.Matches(msg, m.keys.SelectAll):
		m.apply(m.session.SelectAll(), "Selected all")
	case key.Matches(msg, m.keys.SelectNone):
		m.apply(m.session.SelectNone(), "Cleared selection")
	case key.Matches(msg, m.keys.Reset):
		m.errors, m.moreErrs = nil, 0
		m.apply(m.session.Reset(), "Reset")
	case key.Matches(msg, m.keys.KeepStructure):
		m.opts.Relocation.KeepRelativeStructure = !m.opts.Relocation.KeepRelativeStructure
		m.lastEvent = "Keep structure " + onOff(m.opts.Relocation.KeepRelativeStructure)
	case key.Matches(msg, m.keys.AutoRename):
		m.opts.Relocation.AutoRenameOnConflict = !m.opts.Relocation.AutoRenameOnConflict
		m.lastEvent = "Auto rename " + onOff(m.opts.Relocation.AutoRenameOnConflict)
	}
	return m, nil, false
}

func (m Model) withCmd(next Model, cmd tea.Cmd) (Model, tea.Cmd, bool) {
	return next, cmd, false
}

// apply reports the outcome of a session mutation
func (m *Model) apply(err error, event string) {
	switch {
	case errors.Is(err, session.ErrBusy):
		m.lastEvent = "Busy, wait for the current operation"
		return
	case errors.Is(err, session.ErrNoSuchRecord):
		m.lastEvent = "No file under the cursor"
		return
	case err != nil:
		m.lastEvent = err.Error()
		return
	}
	if event != "" {
		m.lastEvent = event
	}
}

func (m Model) startScan() (Model, tea.Cmd) {
	if m.opts.Scan.SourceRoot == "" {
		m.lastEvent = "No source folder"
		return m, nil
	}
	if err := m.session.BeginScan(); err != nil {
		m.lastEvent = "Busy, wait for the current operation"
		return m, nil
	}

	m.count, m.total = 0, 0
	m.opStatus = m.session.Status()
	m.errors, m.moreErrs = nil, 0

	ctx, scanner, opts, sink := m.ctx, m.scanner, m.opts.Scan, m.relay
	work := func() tea.Msg {
		result, err := scanner.Scan(ctx, opts, sink)
		return scanDoneMsg{Result: result, Err: err}
	}
	return m, tea.Batch(work, m.spinner.Tick, m.progress.SetPercent(0))
}

func (m Model) startMove() (Model, tea.Cmd) {
	// Inert until something is selected
	if !m.session.CanMove() {
		if m.session.State().Busy() {
			m.lastEvent = "Busy, wait for the current operation"
		} else {
			m.lastEvent = "Nothing selected"
		}
		return m, nil
	}

	selected, err := m.session.BeginMove()
	if err != nil {
		m.lastEvent = err.Error()
		return m, nil
	}

	m.count, m.total = 0, len(selected)
	m.opStatus = m.session.Status()
	m.errors, m.moreErrs = nil, 0

	opts := m.opts.Relocation
	if opts.SourceRoot == "" {
		opts.SourceRoot = m.session.SourceRoot()
	}
	ctx, mover, sink := m.ctx, m.mover, m.relay
	work := func() tea.Msg {
		result, err := mover.Move(ctx, selected, opts, sink)
		return moveDoneMsg{Result: result, Err: err}
	}
	return m, tea.Batch(work, m.spinner.Tick, m.progress.SetPercent(0))
}

// refresh copies the working set for rendering
func (m *Model) refresh() {
	m.records = m.session.Records()

	rows := make([]table.Row, 0, len(m.records))
	for _, r := range m.records {
		check := "[ ]"
		if r.Selected {
			check = "[x]"
		}
		folder := ""
		if r.MoveWithParentFolder {
			folder = "dir"
		}
		rows = append(rows, table.Row{check, folder, r.SizeHuman(), r.FullPath})
	}
	m.table.SetRows(rows)

	// SetCursor on an empty table leaves it at -1, so re-anchor once rows arrive
	switch c := m.table.Cursor(); {
	case len(rows) == 0:
	case c < 0:
		m.table.SetCursor(0)
	case c >= len(rows):
		m.table.SetCursor(len(rows) - 1)
	}
}

func columns(width int) []table.Column {
	return []table.Column{
		{Title: "Sel", Width: 4},
		{Title: "Dir", Width: 4},
		{Title: "Size", Width: 10},
		{Title: "Path", Width: max(width-30, 20)},
	}
}

func (m *Model) updateLayout(width, height int) {
	if width < 60 {
		width = 60
	}
	if height < 12 {
		height = 12
	}
	m.width, m.height = width, height

	m.table.SetColumns(columns(width))
	headerHeight := lipgloss.Height(m.headerView())
	statusHeight := lipgloss.Height(m.statusView())
	footerHeight := lipgloss.Height(m.footerView())
	m.table.SetHeight(max(height-headerHeight-statusHeight-footerHeight-4, 5))
	m.table.SetWidth(width - 4)
	m.progress.Width = max(width-28, 20)
}

func (m Model) View() string {
	if m.width == 0 {
		return "Loading…"
	}

	view := lipgloss.JoinVertical(
		lipgloss.Left,
		m.headerView(),
		ui.base.Render(m.table.View()),
		m.statusView(),
		m.footerView(),
	)
	return ui.container.Render(view)
}

func (m Model) headerView() string {
	title := ui.title.Render("filemover")
	line := lipgloss.JoinHorizontal(lipgloss.Left,
		title, " ",
		ui.chip.Render("ext: "+m.opts.Scan.Extensions.String()), " ",
		chip("keep structure", m.opts.Relocation.KeepRelativeStructure), " ",
		chip("auto rename", m.opts.Relocation.AutoRenameOnConflict),
	)
	paths := ui.subtitle.Render(fmt.Sprintf("From: %s · To: %s", m.opts.Scan.SourceRoot, m.opts.Relocation.DestinationRoot))
	return ui.header.Render(lipgloss.JoinVertical(lipgloss.Left, line, paths))
}

func (m Model) statusView() string {
	if m.session.State().Busy() {
		line := fmt.Sprintf("%s %s", m.spinner.View(), m.opStatus)
		return lipgloss.JoinVertical(lipgloss.Left, ui.status.Render(line), ui.muted.Render(m.progress.View()))
	}

	var selected int
	var selectedBytes int64
	for _, r := range m.records {
		if r.Selected {
			selected++
			selectedBytes += r.SizeBytes
		}
	}
	parts := []string{
		fmt.Sprintf("Files: %d", len(m.records)),
		fmt.Sprintf("Selected: %d (%s)", selected, models.HumanSize(selectedBytes)),
	}
	lines := []string{ui.status.Render(strings.Join(parts, " · "))}

	for _, e := range m.errors {
		lines = append(lines, ui.danger.Render(e))
	}
	if m.moreErrs > 0 {
		lines = append(lines, ui.muted.Render(fmt.Sprintf("... (+%d more)", m.moreErrs)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (m Model) footerView() string {
	if m.lastEvent != "" {
		return lipgloss.JoinVertical(lipgloss.Left, ui.accent.Render(m.lastEvent), m.help.View(m.keys))
	}
	return m.help.View(m.keys)
}

func chip(label string, on bool) string {
	if on {
		return ui.chip.Render(label + ": on")
	}
	return ui.chipOff.Render(label + ": off")
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

// Run starts the shell and blocks until the user quits
func Run(ctx context.Context, sess *session.Session, scanner *core.Scanner, mover *core.Mover, opts Options) error {
	m := New(ctx, sess, scanner, mover, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	m.Attach(p)

	_, err := p.Run()
	m.cancel()
	m.unwatch()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
