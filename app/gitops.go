package app

import (
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"workman/config"
	"workman/session"
	"workman/session/git"
)

type gitOp int

const (
	opAddWorktree gitOp = iota
	opRemoveWorktree
	opDiff
	opPush
)

// gitResultMsg is the outcome of a git operation run off the UI goroutine.
type gitResultMsg struct {
	op  gitOp
	key session.Key
	// name and path describe the worktree being added.
	name string
	path string
	res  git.Result
	err  error
}

// runGit marks label as busy and runs fn in the background.
func (m *home) runGit(label string, fn func() gitResultMsg) tea.Cmd {
	m.busy = label
	return tea.Batch(m.spinner.Tick, func() tea.Msg { return fn() })
}

func (m *home) addWorktree(project int, name string) tea.Cmd {
	projectPath := m.cfg.Projects[project].Path
	runner := m.git
	return m.runGit("Adding worktree "+name, func() gitResultMsg {
		path, res, err := runner.AddWorktree(projectPath, name)
		return gitResultMsg{op: opAddWorktree, key: session.ProjectKey(project), name: name, path: path, res: res, err: err}
	})
}

func (m *home) removeWorktree(k session.Key, wt config.Worktree) tea.Cmd {
	projectPath := m.cfg.Projects[k.Project].Path
	runner := m.git
	return m.runGit("Removing worktree "+wt.Name, func() gitResultMsg {
		res, err := runner.RemoveWorktree(projectPath, wt.Path)
		return gitResultMsg{op: opRemoveWorktree, key: k, res: res, err: err}
	})
}

func (m *home) diff(k session.Key, wt config.Worktree) tea.Cmd {
	runner := m.git
	return m.runGit("Diffing "+wt.Name, func() gitResultMsg {
		res, err := runner.Diff(wt.Path)
		return gitResultMsg{op: opDiff, key: k, res: res, err: err}
	})
}

func (m *home) push(k session.Key, wt config.Worktree, message string) tea.Cmd {
	runner := m.git
	return m.runGit("Pushing "+wt.Name, func() gitResultMsg {
		res, err := runner.Push(wt.Path, message)
		return gitResultMsg{op: opPush, key: k, res: res, err: err}
	})
}

// handleGitResult shows the output of an operation and applies its effect on
// the project list. Output goes to the worktree's shell when it has one, and
// to the output pane otherwise.
func (m *home) handleGitResult(msg gitResultMsg) tea.Cmd {
	m.busy = ""
	out := msg.res.Output

	routed := false
	if msg.err == nil && out != "" && msg.key.IsWorktree() {
		routed = m.registry.Route(msg.key, []byte(out))
	}
	if msg.err == nil && !routed {
		m.output.SetText(out)
	}
	// Output drawn on a shell is already visible, so there is nothing to export.
	detail := out
	if routed {
		detail = ""
	}

	switch msg.op {
	case opAddWorktree:
		switch {
		case msg.err != nil:
			m.setError(msg.err.Error(), strings.TrimSpace(msg.err.Error()+"\n"+out))
			return nil
		case !msg.res.Success:
			m.setError("Worktree creation failed (Ctrl+L to export log)", detail)
			return nil
		}
		p := msg.key.Project
		m.mutateConfig(func(c *config.Config) {
			c.Projects[p].Worktrees = append(c.Projects[p].Worktrees, config.Worktree{Name: msg.name, Path: msg.path})
		})
		m.setMode(modeNormal)
		m.clearError()
		m.tree.Select(session.WorktreeKey(p, len(m.cfg.Projects[p].Worktrees)-1))
		m.selectionChanged()

	case opRemoveWorktree:
		switch {
		case msg.err != nil:
			m.setError("System error occurred", msg.err.Error())
			return nil
		case !msg.res.Success:
			m.setError("Failed to remove worktree", detail)
			return nil
		}
		p, w := msg.key.Project, msg.key.Worktree
		m.registry.Reindex(p, w)
		m.mutateConfig(func(c *config.Config) {
			c.Projects[p].Worktrees = slices.Delete(c.Projects[p].Worktrees, w, w+1)
		})
		m.clearError()
		if n := len(m.cfg.Projects[p].Worktrees); n > 0 {
			m.tree.Select(session.WorktreeKey(p, min(w, n-1)))
		} else {
			m.tree.Select(session.ProjectKey(p))
		}
		m.selectionChanged()

	case opDiff:
		switch {
		case msg.err != nil:
			m.setError("System error occurred while getting diff", msg.err.Error())
		case !msg.res.Success:
			m.setError("Failed to get diff", detail)
		case strings.TrimSpace(out) == "":
			m.setError("No changes to display diff for.", "")
		default:
			m.clearError()
			m.setMode(modeViewingDiff)
		}

	case opPush:
		switch {
		case msg.err != nil:
			m.setError("System error occurred during push", msg.err.Error())
		case !msg.res.Success:
			m.setError("Push failed", detail)
		default:
			m.clearError()
		}

	default:
		m.setError(fmt.Sprintf("unknown git operation %d", msg.op), "")
	}
	return m.refreshStatuses(false)
}
