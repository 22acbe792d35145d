package app

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"workman/config"
	"workman/keys"
	"workman/log"
	"workman/session"
	"workman/session/git"
)

// Fallback shell size when a shell is started before the first WindowSizeMsg.
const (
	fallbackCols = 80
	fallbackRows = 24
)

func (m *home) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Every key belongs to the shell while attached, Ctrl+C and Ctrl+L included.
	if m.mode == modeTerminal {
		return m, m.handleTerminalKey(msg)
	}

	switch msg.String() {
	case "ctrl+c":
		return m.handleQuit()
	case "ctrl+l":
		m.exportLog()
		return m, nil
	}

	switch m.mode {
	case modeViewingDiff:
		return m, m.handleDiffKey(msg)
	case modeAddingProjectPath, modeAddingWorktreeName, modeEditingCommitMessage:
		return m, m.handleInputKey(msg)
	}

	name, ok := keys.GlobalKeyStringsMap[msg.String()]
	if !ok {
		return m, nil
	}

	switch name {
	case keys.KeyQuit:
		return m.handleQuit()
	case keys.KeyUp:
		m.tree.Up()
		m.selectionChanged()
		return m, nil
	case keys.KeyDown:
		m.tree.Down()
		m.selectionChanged()
		return m, nil
	case keys.KeyEsc:
		m.clearError()
		return m, nil
	case keys.KeyAddProject:
		m.clearError()
		m.setMode(modeAddingProjectPath)
		return m, nil
	case keys.KeyDeleteProject:
		return m, m.deleteProject()
	case keys.KeyAddWorktree:
		k, ok := m.selectedKey()
		if !ok || k.IsWorktree() || m.rejectWhileBusy() {
			return m, nil
		}
		m.clearError()
		m.setMode(modeAddingWorktreeName)
		return m, nil
	case keys.KeyRemoveWorktree:
		k, wt, ok := m.selectedWorktree()
		if !ok || m.rejectWhileBusy() {
			return m, nil
		}
		return m, m.removeWorktree(k, wt)
	case keys.KeyAttach:
		m.attach()
		return m, nil
	case keys.KeyDiff:
		k, wt, ok := m.selectedWorktree()
		if !ok || m.rejectWhileBusy() {
			return m, nil
		}
		return m, m.diff(k, wt)
	case keys.KeyPush:
		if _, _, ok := m.selectedWorktree(); !ok || m.rejectWhileBusy() {
			return m, nil
		}
		m.clearError()
		m.setMode(modeEditingCommitMessage)
		return m, nil
	case keys.KeyKill:
		if k, _, ok := m.selectedWorktree(); ok {
			m.registry.Remove(k)
			m.refreshTree()
		}
		return m, nil
	}
	return m, nil
}

// selectionChanged updates everything that follows the tree highlight.
func (m *home) selectionChanged() {
	m.refreshTree()
	m.syncSelectedSession()
}

// rejectWhileBusy reports whether a git operation is still running, telling
// the user so. Operations address worktrees by position, so the tree must not
// change under a running one.
func (m *home) rejectWhileBusy() bool {
	if m.busy == "" {
		return false
	}
	m.setError(fmt.Sprintf("Wait for %s to finish", m.busy), "")
	return true
}

// attach starts the selected worktree's shell if needed and hands it the keyboard.
func (m *home) attach() {
	k, wt, ok := m.selectedWorktree()
	if !ok {
		return
	}
	cols, rows := fallbackCols, fallbackRows
	if m.constraints.TerminalWidth > 0 {
		cols, rows = m.constraints.TerminalSize()
	}
	s, err := m.registry.GetOrCreate(k, wt.Path, cols, rows)
	if err != nil {
		m.setError(fmt.Sprintf("Failed to start session: %v", err), err.Error())
		return
	}
	if err := s.Resize(cols, rows); err != nil {
		log.WarningLog.Printf("failed to resize %s: %v", k, err)
	}
	m.attached = k
	m.term.ClearAdvisory()
	m.setMode(modeTerminal)
	m.refreshTree()
}

// handleTerminalKey sends a key to the attached shell.
func (m *home) handleTerminalKey(msg tea.KeyMsg) tea.Cmd {
	s, ok := m.registry.Get(m.attached)
	if !ok {
		m.setMode(modeNormal)
		return nil
	}

	action := m.term.Encode(msg)
	if action.Detach {
		m.setMode(modeNormal)
		return nil
	}
	if len(action.Bytes) == 0 {
		return nil
	}
	// A dead shell shows itself by its screen no longer changing.
	if _, err := s.Write(action.Bytes); err != nil {
		log.InfoLog.Printf("dropped input for %s: %v", m.attached, err)
	}
	return nil
}

func (m *home) handleDiffKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeySpace:
		m.output.Scroll()
	case tea.KeyEsc:
		m.setMode(modeNormal)
		m.clearError()
		m.output.SetText("")
	}
	return nil
}

// handleInputKey edits the input line and submits it on Enter.
func (m *home) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	// A submitted worktree name stays on screen until git is done with it.
	if m.busy != "" && m.mode == modeAddingWorktreeName {
		return nil
	}

	switch msg.Type {
	case tea.KeyEsc:
		m.setMode(modeNormal)
		m.clearError()
		return nil
	case tea.KeyEnter:
		return m.submitInput()
	case tea.KeyTab:
		if m.mode == modeAddingProjectPath {
			m.input.SetValue(m.complete.Next(m.input.Value()))
			m.input.CursorEnd()
		}
		return nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.complete.Reset()
	if m.mode == modeAddingProjectPath {
		m.clearError()
	}
	return cmd
}

func (m *home) submitInput() tea.Cmd {
	value := strings.TrimSpace(m.input.Value())

	switch m.mode {
	case modeAddingProjectPath:
		return m.addProject(value)
	case modeAddingWorktreeName:
		if value == "" {
			m.setError("Worktree name cannot be empty", "Worktree name cannot be empty")
			return nil
		}
		k, ok := m.selectedKey()
		if !ok || k.IsWorktree() {
			m.setError("No project selected to add worktree to.", "No project selected to add worktree to.")
			return nil
		}
		return m.addWorktree(k.Project, value)
	case modeEditingCommitMessage:
		k, wt, ok := m.selectedWorktree()
		m.setMode(modeNormal)
		if !ok {
			return nil
		}
		return m.push(k, wt, value)
	}
	return nil
}

// addProject validates path and appends it to the project list.
func (m *home) addProject(path string) tea.Cmd {
	abs, err := git.ValidateProjectPath(path)
	if err != nil {
		m.setError(err.Error(), err.Error())
		return nil
	}
	for _, p := range m.cfg.Projects {
		if p.Path == abs {
			m.setError(fmt.Sprintf("Project %s is already added", abs), "")
			return nil
		}
	}

	m.mutateConfig(func(c *config.Config) {
		c.Projects = append(c.Projects, config.Project{Name: filepath.Base(abs), Path: abs})
	})
	m.setMode(modeNormal)
	m.clearError()
	m.tree.Select(session.ProjectKey(len(m.cfg.Projects) - 1))
	m.selectionChanged()
	return m.refreshStatuses(false)
}

// deleteProject forgets the selected project and stops its shells. The
// worktrees stay on disk.
func (m *home) deleteProject() tea.Cmd {
	k, ok := m.selectedKey()
	if !ok || k.IsWorktree() || m.rejectWhileBusy() {
		return nil
	}
	p := k.Project

	m.registry.DropProject(p)
	m.mutateConfig(func(c *config.Config) {
		c.Projects = slices.Delete(c.Projects, p, p+1)
	})
	if n := len(m.cfg.Projects); n > 0 {
		m.tree.Select(session.ProjectKey(min(p, n-1)))
	}
	m.clearError()
	m.selectionChanged()
	return m.refreshStatuses(false)
}
