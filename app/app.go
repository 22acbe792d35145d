package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"workman/cmd"
	"workman/config"
	"workman/keys"
	"workman/log"
	"workman/session"
	"workman/session/git"
	"workman/ui"
	"workman/ui/layout"
)

// DefaultExportPath is where Ctrl+L writes the last error detail.
const DefaultExportPath = "/tmp/workman.log"

// statusRefreshInterval is how often worktree statuses are recomputed.
const statusRefreshInterval = 2 * time.Second

// Options wires the dashboard to its collaborators. Zero fields get defaults.
type Options struct {
	Config *config.Config
	// Save persists Config after every change to the project list.
	Save     func(*config.Config) error
	Registry *session.Registry
	Git      *git.Runner
	// ExportPath is the file Ctrl+L writes to.
	ExportPath string
	// Clipboard receives the exported text. Failures are only logged.
	Clipboard func(string) error
}

// Run is the main entrypoint into the application.
func Run(ctx context.Context, opts Options) error {
	m := newHome(ctx, opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	// Shells outlive the program unless they are stopped here, also when the
	// context was cancelled.
	m.registry.Shutdown()
	return err
}

// inputMode is what keys currently do.
type inputMode int

const (
	modeNormal inputMode = iota
	modeAddingProjectPath
	modeAddingWorktreeName
	modeViewingDiff
	modeEditingCommitMessage
	modeTerminal
)

var helpStates = map[inputMode]ui.HelpState{
	modeNormal:               ui.HelpNormal,
	modeAddingProjectPath:    ui.HelpProjectPath,
	modeAddingWorktreeName:   ui.HelpWorktreeName,
	modeViewingDiff:          ui.HelpDiff,
	modeEditingCommitMessage: ui.HelpCommitMessage,
	modeTerminal:             ui.HelpTerminal,
}

var prompts = map[inputMode]string{
	modeAddingProjectPath:    "Path> ",
	modeAddingWorktreeName:   "Name> ",
	modeEditingCommitMessage: "Msg> ",
}

type home struct {
	ctx context.Context

	// -- Storage and Configuration --

	cfg        *config.Config
	save       func(*config.Config) error
	registry   *session.Registry
	git        *git.Runner
	exportPath string
	clipboard  func(string) error

	// -- State --

	mode inputMode
	// attached is the worktree whose shell receives keys in terminal mode.
	attached session.Key
	// errMsg is the one-line error; errDetail is the full text Ctrl+L exports.
	errMsg    string
	errDetail string
	// busy describes the git operation in flight. Only one runs at a time.
	busy string
	// statuses holds the last status line of each worktree. gen is bumped
	// whenever worktree keys shift so that stale refreshes are dropped.
	statuses map[session.Key]string
	gen      int

	constraints layout.Constraints
	resizeLog   *log.Every

	// -- UI Components --

	tree     *ui.Tree
	help     *ui.HelpBar
	output   *ui.Output
	pane     *ui.TerminalPane
	input    textinput.Model
	complete ui.PathCompleter
	term     keys.TerminalInput
	spinner  spinner.Model
}

func newHome(ctx context.Context, opts Options) *home {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Save == nil {
		opts.Save = config.SaveConfig
	}
	if opts.Registry == nil {
		opts.Registry = session.NewRegistry(
			session.WithShell(opts.Config.Shell),
			session.WithScrollback(opts.Config.ScrollbackLines),
		)
	}
	if opts.Git == nil {
		opts.Git = git.NewRunner(cmd.MakeExecutor())
	}
	if opts.ExportPath == "" {
		opts.ExportPath = DefaultExportPath
	}
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	input := textinput.New()
	input.Cursor.SetMode(cursor.CursorStatic)

	m := &home{
		ctx:        ctx,
		cfg:        opts.Config,
		save:       opts.Save,
		registry:   opts.Registry,
		git:        opts.Git,
		exportPath: opts.ExportPath,
		clipboard:  opts.Clipboard,
		statuses:   make(map[session.Key]string),
		resizeLog:  log.NewEvery(5 * time.Second),
		tree:       ui.NewTree(),
		help:       ui.NewHelpBar(),
		output:     ui.NewOutput(),
		pane:       ui.NewTerminalPane(),
		input:      input,
		spinner:    spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	m.refreshTree()
	return m
}

func (m *home) Init() tea.Cmd {
	return tea.Batch(m.renderTick(), m.refreshStatuses(true))
}

// renderTickMsg redraws the screen so shell output shows up while nothing else happens.
type renderTickMsg time.Time

// statusTickMsg starts a status refresh.
type statusTickMsg struct{}

// statusesMsg carries freshly computed worktree statuses. Only the periodic
// refresh schedules the next one.
type statusesMsg struct {
	gen      int
	periodic bool
	statuses map[session.Key]string
}

func (m *home) renderTick() tea.Cmd {
	return tea.Tick(m.cfg.PollInterval(), func(t time.Time) tea.Msg {
		return renderTickMsg(t)
	})
}

// statusTick waits for the next status refresh.
func (m *home) statusTick() tea.Msg {
	select {
	case <-m.ctx.Done():
	case <-time.After(statusRefreshInterval):
	}
	return statusTickMsg{}
}

// refreshStatuses computes the status of every worktree off the UI goroutine.
func (m *home) refreshStatuses(periodic bool) tea.Cmd {
	gen := m.gen
	paths := make(map[session.Key]string)
	for p, proj := range m.cfg.Projects {
		for w, wt := range proj.Worktrees {
			paths[session.WorktreeKey(p, w)] = wt.Path
		}
	}
	runner := m.git
	return func() tea.Msg {
		statuses := make(map[session.Key]string, len(paths))
		for k, path := range paths {
			statuses[k] = runner.Status(path)
		}
		return statusesMsg{gen: gen, periodic: periodic, statuses: statuses}
	}
}

func (m *home) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case renderTickMsg:
		m.syncSelectedSession()
		m.refreshTree()
		return m, m.renderTick()
	case statusTickMsg:
		return m, m.refreshStatuses(true)
	case statusesMsg:
		if msg.gen == m.gen {
			m.statuses = msg.statuses
			m.refreshTree()
		}
		if !msg.periodic {
			return m, nil
		}
		return m, m.statusTick
	case gitResultMsg:
		return m, m.handleGitResult(msg)
	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.WindowSizeMsg:
		m.updateHandleWindowSizeEvent(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}
	return m, nil
}

// updateHandleWindowSizeEvent recomputes the layout and resizes the shell on screen.
func (m *home) updateHandleWindowSizeEvent(msg tea.WindowSizeMsg) {
	m.constraints = layout.ComputeConstraints(msg.Width, msg.Height)
	m.pane.SetSize(m.constraints.MainWidth, m.constraints.MainHeight)
	m.input.Width = max(m.constraints.MainWidth-2-len(prompts[modeAddingProjectPath])-1, 1)
	m.syncSelectedSession()
}

// selectedKey returns the key of the highlighted tree row.
func (m *home) selectedKey() (session.Key, bool) {
	item, ok := m.tree.Selected()
	if !ok {
		return session.Key{}, false
	}
	return item.Key, true
}

// selectedWorktree returns the highlighted worktree, if a worktree row is highlighted.
func (m *home) selectedWorktree() (session.Key, config.Worktree, bool) {
	k, ok := m.selectedKey()
	if !ok || !k.IsWorktree() {
		return session.Key{}, config.Worktree{}, false
	}
	return k, m.cfg.Projects[k.Project].Worktrees[k.Worktree], true
}

// syncSelectedSession keeps the shell on screen at the pane's size. A shell that
// has exited stays registered so its last screen remains visible until killed.
func (m *home) syncSelectedSession() {
	k, ok := m.selectedKey()
	if m.mode == modeTerminal {
		k, ok = m.attached, true
	}
	if !ok || !k.IsWorktree() {
		return
	}
	s, ok := m.registry.Get(k)
	if !ok {
		return
	}
	if s.Exited() || m.constraints.TerminalWidth == 0 {
		return
	}
	cols, rows := m.constraints.TerminalSize()
	if err := s.Resize(cols, rows); err != nil && m.resizeLog.ShouldLog() {
		log.WarningLog.Printf("failed to resize %s: %v", k, err)
	}
}

// refreshTree rebuilds the tree rows from the config, statuses and live sessions.
func (m *home) refreshTree() {
	live := make(map[session.Key]bool)
	for p, proj := range m.cfg.Projects {
		for w := range proj.Worktrees {
			k := session.WorktreeKey(p, w)
			if _, ok := m.registry.Get(k); ok {
				live[k] = true
			}
		}
	}
	m.tree.SetProjects(m.cfg.Projects, m.statuses, live)

	sel := ui.SelectNone
	if k, ok := m.selectedKey(); ok {
		sel = ui.SelectProject
		if k.IsWorktree() {
			sel = ui.SelectWorktree
		}
	}
	m.help.SetSelection(sel)
}

// setMode switches input mode, resetting the input line for modes that use it.
func (m *home) setMode(mode inputMode) {
	m.mode = mode
	m.help.SetState(helpStates[mode])
	m.complete.Reset()
	if prompt, ok := prompts[mode]; ok {
		m.input.Reset()
		m.input.Prompt = prompt
		m.input.Focus()
	} else {
		m.input.Blur()
	}
}

// setError shows msg on the status line and keeps detail for Ctrl+L.
func (m *home) setError(msg, detail string) {
	if msg != "" {
		log.ErrorLog.Printf("%s: %s", msg, detail)
	}
	m.errMsg = msg
	m.errDetail = detail
}

func (m *home) clearError() {
	m.setError("", "")
}

// mutateConfig applies fn to the project list and saves it. Worktree keys may
// shift, so statuses computed before the change are dropped.
func (m *home) mutateConfig(fn func(*config.Config)) {
	fn(m.cfg)
	m.gen++
	m.statuses = make(map[session.Key]string)
	if err := m.save(m.cfg); err != nil {
		m.setError("Failed to save config", err.Error())
	}
	m.refreshTree()
}

func (m *home) handleQuit() (tea.Model, tea.Cmd) {
	m.registry.Shutdown()
	return m, tea.Quit
}

// exportLog writes the last error detail, or the error line when there is no
// detail, to the export file and the clipboard.
func (m *home) exportLog() {
	text, what := m.errDetail, "Log"
	if text == "" {
		text, what = m.errMsg, "Status"
	}
	if text == "" {
		return
	}
	if err := os.WriteFile(m.exportPath, []byte(text), 0644); err != nil {
		m.setError(fmt.Sprintf("Failed to export to %s", m.exportPath), err.Error())
		return
	}
	if err := m.clipboard(text); err != nil {
		log.WarningLog.Printf("failed to copy to clipboard: %v", err)
	}
	// The exported detail stays available for another export.
	m.errMsg = fmt.Sprintf("%s exported to %s", what, m.exportPath)
}

func (m *home) View() string {
	c := m.constraints
	if c.TerminalWidth == 0 || c.TerminalHeight == 0 {
		return ""
	}

	tree := m.tree.Render(c.TreeWidth, c.TreeHeight, m.mode == modeNormal)
	help := m.help.Render(c.HelpWidth, c.HelpHeight)
	main, onTerminal := m.mainView()
	busy := ""
	if m.busy != "" {
		busy = m.spinner.View() + " " + m.busy
	}
	// The output pane lists the error itself; a shell on screen hides it.
	errMsg := ""
	if onTerminal {
		errMsg = m.errMsg
	}
	status := ui.StatusLine(errMsg, m.term.Advisory(), busy, c.StatusWidth)
	right := lipgloss.JoinVertical(lipgloss.Left, help, status, main)

	if c.UseVerticalStack {
		return lipgloss.JoinVertical(lipgloss.Left, tree, right)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tree, right)
}

// mainView shows the selected worktree's shell when it has one, otherwise the
// command output with the input line. It reports whether a shell is shown.
func (m *home) mainView() (string, bool) {
	c := m.constraints
	focused := m.mode != modeNormal
	title := ui.TerminalTitle(m.mode == modeTerminal)

	if s, ok := m.visibleSession(); ok {
		return m.pane.Render(title, s.Snapshot(), m.mode == modeTerminal, focused), true
	}

	m.output.SetError(m.errMsg, m.errDetail)
	prompt := ""
	if _, ok := prompts[m.mode]; ok {
		prompt = m.input.View()
	}
	m.output.SetPrompt(prompt)
	return m.output.Render(title, c.MainWidth, c.MainHeight, focused), false
}

// visibleSession returns the shell the main pane shows, if any. Input prompts
// take the pane over.
func (m *home) visibleSession() (*session.Session, bool) {
	if _, ok := prompts[m.mode]; ok {
		return nil, false
	}
	k, ok := m.selectedKey()
	if m.mode == modeTerminal {
		k, ok = m.attached, true
	}
	if !ok || !k.IsWorktree() {
		return nil, false
	}
	return m.registry.Get(k)
}
