package app

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workman/cmd/cmd_test"
	"workman/config"
	"workman/keys"
	"workman/session"
	"workman/session/git"
	"workman/testing/harness"
)

// fakeGit answers git invocations without running git.
type fakeGit struct {
	mu    sync.Mutex
	calls []string
	// fail makes commands containing the key exit non-zero with the value as output.
	fail map[string]string
	// output maps a git subcommand to its combined output.
	output map[string]string
}

func (f *fakeGit) exec() cmd_test.MockCmdExec {
	return cmd_test.MockCmdExec{
		CombinedOutputFunc: func(c *exec.Cmd) ([]byte, error) {
			joined := strings.Join(c.Args, " ")
			f.mu.Lock()
			defer f.mu.Unlock()
			f.calls = append(f.calls, joined)
			for key, out := range f.fail {
				if strings.Contains(joined, key) {
					return []byte(out), &exec.ExitError{}
				}
			}
			// Args are git -C <dir> <subcommand> ...
			return []byte(f.output[c.Args[3]]), nil
		},
	}
}

func (f *fakeGit) called(sub string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if strings.Contains(c, sub) {
			return true
		}
	}
	return false
}

type testEnv struct {
	m      *home
	h      *harness.Harness
	git    *fakeGit
	saves  int
	copied []string
}

func newTestEnv(t *testing.T, projects ...config.Project) *testEnv {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Projects = projects

	env := &testEnv{git: &fakeGit{fail: map[string]string{}, output: map[string]string{}}}
	registry := session.NewRegistry(session.WithShell("/bin/sh"), session.WithEnv("PS1=$ ", "ENV="))
	t.Cleanup(registry.Shutdown)

	env.m = newHome(context.Background(), Options{
		Config: cfg,
		Save: func(*config.Config) error {
			env.saves++
			return nil
		},
		Registry:   registry,
		Git:        git.NewRunner(env.git.exec()),
		ExportPath: filepath.Join(t.TempDir(), "workman.log"),
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
	})
	env.h = harness.New(t, env.m, 120, 40)
	return env
}

func (e *testEnv) key(t tea.KeyType) {
	e.h.SendSpecialKey(t)
}

func (e *testEnv) selectKey(t *testing.T, k session.Key) {
	t.Helper()
	require.True(t, e.m.tree.Select(k))
	e.m.selectionChanged()
}

func sampleProject(path string, worktrees ...string) config.Project {
	p := config.Project{Name: filepath.Base(path), Path: path}
	for _, w := range worktrees {
		p.Worktrees = append(p.Worktrees, config.Worktree{Name: w, Path: filepath.Join(path, ".workman", w)})
	}
	return p
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	_, err := gogit.PlainInit(dir, false)
	require.NoError(t, err)
	return dir
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("pseudo-terminals are not supported on windows")
	}
	if _, err := os.Stat("/bin/sh"); err != nil {
		t.Skip("/bin/sh is not available")
	}
}

func screenHasLine(s *session.Session, want string) func() bool {
	return func() bool {
		g := s.Snapshot()
		for y := 0; y < g.Rows; y++ {
			if strings.TrimSpace(g.Line(y)) == want {
				return true
			}
		}
		return false
	}
}

func TestViewFillsTerminal(t *testing.T) {
	harness.RunWithCommonSizes(t, func(t *testing.T, size harness.TerminalSize) {
		env := newTestEnv(t, sampleProject("/src/api", "feat-a", "feat-b"))
		env.h.Resize(size.Width, size.Height)

		view := env.h.View()
		assert.Len(t, strings.Split(view, "\n"), size.Height)
		assert.Contains(t, view, "Repos & Worktrees")
		assert.Contains(t, view, "Output / Terminal")
		assert.Contains(t, view, "feat-a")
	})
}

func TestViewBeforeWindowSize(t *testing.T) {
	m := newHome(context.Background(), Options{Config: config.DefaultConfig(), Save: func(*config.Config) error { return nil }})
	assert.Equal(t, "", m.View())
}

func TestNavigationWrapsAndHelpFollows(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "feat-a"), sampleProject("/src/web"))

	assert.Contains(t, env.h.View(), "add worktree")

	env.key(tea.KeyDown)
	k, ok := env.m.selectedKey()
	require.True(t, ok)
	assert.Equal(t, session.WorktreeKey(0, 0), k)
	assert.Contains(t, env.h.View(), "commit & push")

	env.key(tea.KeyUp)
	env.key(tea.KeyUp)
	k, _ = env.m.selectedKey()
	assert.Equal(t, session.ProjectKey(1), k)

	env.key(tea.KeyDown)
	k, _ = env.m.selectedKey()
	assert.Equal(t, session.ProjectKey(0), k)
}

func TestAddProject(t *testing.T) {
	env := newTestEnv(t)
	repo := initRepo(t)

	env.h.SendKey("a")
	assert.Equal(t, modeAddingProjectPath, env.m.mode)
	assert.Contains(t, env.h.View(), "Path> ")

	env.h.SendText(repo)
	env.key(tea.KeyEnter)

	assert.Equal(t, modeNormal, env.m.mode)
	require.Len(t, env.m.cfg.Projects, 1)
	assert.Equal(t, repo, env.m.cfg.Projects[0].Path)
	assert.Equal(t, filepath.Base(repo), env.m.cfg.Projects[0].Name)
	assert.Equal(t, 1, env.saves)
	k, _ := env.m.selectedKey()
	assert.Equal(t, session.ProjectKey(0), k)

	// The same path again is rejected.
	env.h.SendKey("a")
	env.h.SendText(repo)
	env.key(tea.KeyEnter)
	assert.Equal(t, modeAddingProjectPath, env.m.mode)
	assert.Contains(t, env.m.errMsg, "already added")
	assert.Len(t, env.m.cfg.Projects, 1)
}

func TestAddProjectRejectsInvalidPaths(t *testing.T) {
	env := newTestEnv(t)

	env.h.SendKey("a")
	env.h.SendText(filepath.Join(t.TempDir(), "missing"))
	env.key(tea.KeyEnter)
	assert.Equal(t, modeAddingProjectPath, env.m.mode)
	assert.Contains(t, env.m.errMsg, "does not exist")
	assert.Contains(t, env.h.View(), "ERROR: path does not exist")

	env.m.input.SetValue(t.TempDir())
	env.key(tea.KeyEnter)
	assert.Contains(t, env.m.errMsg, git.ErrNotGitRepo.Error())

	env.key(tea.KeyEsc)
	assert.Equal(t, modeNormal, env.m.mode)
	assert.Empty(t, env.m.errMsg)
	assert.Empty(t, env.m.cfg.Projects)
	assert.Equal(t, 0, env.saves)
}

func TestProjectPathCompletion(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "alpha"), 0755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "alps"), 0755))

	env.h.SendKey("a")
	env.h.SendText(dir + "/al")
	env.key(tea.KeyTab)
	assert.Equal(t, dir+"/alpha/", env.m.input.Value())
	env.key(tea.KeyTab)
	assert.Equal(t, dir+"/alps/", env.m.input.Value())
	env.key(tea.KeyTab)
	assert.Equal(t, dir+"/alpha/", env.m.input.Value())

	// Typing starts a new completion from the edited text.
	env.h.SendKey("x")
	env.key(tea.KeyTab)
	assert.Equal(t, dir+"/alpha/x", env.m.input.Value())
}

func TestAddWorktree(t *testing.T) {
	repo := initRepo(t)
	env := newTestEnv(t, sampleProject(repo))
	env.git.output["worktree"] = "Preparing worktree (new branch 'feat')\n"

	env.h.SendKey("w")
	assert.Equal(t, modeAddingWorktreeName, env.m.mode)
	env.h.SendText("feat")
	cmd := env.h.SendSpecialKey(tea.KeyEnter)
	require.NotNil(t, cmd)
	assert.NotEmpty(t, env.m.busy)

	env.h.Exec(cmd)
	assert.Empty(t, env.m.busy)
	assert.Equal(t, modeNormal, env.m.mode)
	require.Len(t, env.m.cfg.Projects[0].Worktrees, 1)
	assert.Equal(t, config.Worktree{Name: "feat", Path: filepath.Join(repo, ".workman", "feat")}, env.m.cfg.Projects[0].Worktrees[0])
	assert.Equal(t, 1, env.saves)
	assert.True(t, env.git.called("worktree add -b feat"))
	assert.Contains(t, env.m.output.Text(), "Preparing worktree")

	k, _ := env.m.selectedKey()
	assert.Equal(t, session.WorktreeKey(0, 0), k)
}

func TestAddWorktreeFailureKeepsInput(t *testing.T) {
	repo := initRepo(t)
	env := newTestEnv(t, sampleProject(repo))
	env.git.fail["worktree add"] = "fatal: 'feat' is already checked out\n"

	env.h.SendKey("w")
	env.key(tea.KeyEnter)
	assert.Equal(t, "Worktree name cannot be empty", env.m.errMsg)

	env.h.SendText("feat")
	env.h.SendAndExec(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeAddingWorktreeName, env.m.mode)
	assert.Equal(t, "feat", env.m.input.Value())
	assert.Contains(t, env.m.errMsg, "Worktree creation failed")
	assert.Contains(t, env.m.errDetail, "already checked out")
	assert.Empty(t, env.m.cfg.Projects[0].Worktrees)
}

func TestAddWorktreeNeedsProjectSelected(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.SendKey("w")
	assert.Equal(t, modeNormal, env.m.mode)
}

func TestRemoveWorktree(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a", "b"))
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.Exec(env.h.SendKey("r"))

	assert.True(t, env.git.called("worktree remove /src/api/.workman/a"))
	require.Len(t, env.m.cfg.Projects[0].Worktrees, 1)
	assert.Equal(t, "b", env.m.cfg.Projects[0].Worktrees[0].Name)
	assert.Equal(t, 1, env.saves)
	k, _ := env.m.selectedKey()
	assert.Equal(t, session.WorktreeKey(0, 0), k)

	env.h.Exec(env.h.SendKey("r"))
	assert.Empty(t, env.m.cfg.Projects[0].Worktrees)
	k, _ = env.m.selectedKey()
	assert.Equal(t, session.ProjectKey(0), k)
}

func TestRemoveWorktreeFailure(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.git.fail["worktree remove"] = "fatal: contains modified files\n"
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.Exec(env.h.SendKey("r"))

	assert.Equal(t, "Failed to remove worktree", env.m.errMsg)
	assert.Contains(t, env.m.errDetail, "modified files")
	assert.Len(t, env.m.cfg.Projects[0].Worktrees, 1)
	assert.Contains(t, env.h.View(), "ERROR: Failed to remove worktree")
}

func TestDiffViewScrollsAndExits(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.git.output["diff"] = "line1\nline2\nline3\n"
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.Exec(env.h.SendKey("d"))
	assert.Equal(t, modeViewingDiff, env.m.mode)
	assert.Contains(t, env.h.View(), "line1")
	assert.Contains(t, env.h.View(), "Viewing diff")

	env.h.SendSpecialKey(tea.KeySpace)
	assert.Equal(t, 1, env.m.output.Offset())
	env.h.SendSpecialKey(tea.KeySpace)
	env.h.SendSpecialKey(tea.KeySpace)
	assert.Equal(t, 0, env.m.output.Offset())

	env.key(tea.KeyEsc)
	assert.Equal(t, modeNormal, env.m.mode)
	assert.Empty(t, env.m.output.Text())
}

func TestDiffWithoutChanges(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.Exec(env.h.SendKey("d"))
	assert.Equal(t, modeNormal, env.m.mode)
	assert.Equal(t, "No changes to display diff for.", env.m.errMsg)
}

func TestPush(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.git.output["push"] = "To origin\n"
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.SendKey("p")
	assert.Equal(t, modeEditingCommitMessage, env.m.mode)
	assert.Contains(t, env.h.View(), "Msg> ")
	env.h.SendText("fix it")
	env.h.SendAndExec(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, modeNormal, env.m.mode)
	assert.True(t, env.git.called("commit -m fix it"))
	assert.True(t, strings.HasPrefix(env.m.output.Text(), git.PushSuccessMessage))
	assert.Empty(t, env.m.errMsg)
}

func TestPushEmptyMessageAndFailure(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.git.fail[" push"] = "rejected\n"
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.SendKey("p")
	env.h.SendAndExec(tea.KeyMsg{Type: tea.KeyEnter})

	assert.True(t, env.git.called("commit -m "+git.DefaultCommitMessage))
	assert.Equal(t, "Push failed", env.m.errMsg)
	assert.Contains(t, env.m.errDetail, "rejected")
}

func TestOneGitOperationAtATime(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"))
	env.selectKey(t, session.WorktreeKey(0, 0))

	cmd := env.h.SendKey("d")
	require.NotNil(t, cmd)
	env.h.SendKey("r")
	assert.Contains(t, env.m.errMsg, "Wait for")
	assert.False(t, env.git.called("worktree remove"))

	env.h.Exec(cmd)
	assert.Empty(t, env.m.busy)
}

func TestDeleteProject(t *testing.T) {
	env := newTestEnv(t, sampleProject("/src/api", "a"), sampleProject("/src/web"))

	env.h.SendKey("x")
	require.Len(t, env.m.cfg.Projects, 1)
	assert.Equal(t, "web", env.m.cfg.Projects[0].Name)
	assert.Equal(t, 1, env.saves)
	k, _ := env.m.selectedKey()
	assert.Equal(t, session.ProjectKey(0), k)

	env.h.SendKey("x")
	assert.Empty(t, env.m.cfg.Projects)
	_, ok := env.m.tree.Selected()
	assert.False(t, ok)
}

func TestExportLog(t *testing.T) {
	env := newTestEnv(t)

	// Nothing to export.
	env.key(tea.KeyCtrlL)
	assert.NoFileExists(t, env.m.exportPath)

	env.m.setError("boom", "full detail")
	env.key(tea.KeyCtrlL)
	data, err := os.ReadFile(env.m.exportPath)
	require.NoError(t, err)
	assert.Equal(t, "full detail", string(data))
	assert.Equal(t, []string{"full detail"}, env.copied)
	assert.Equal(t, "Log exported to "+env.m.exportPath, env.m.errMsg)

	env.m.setError("only status", "")
	env.key(tea.KeyCtrlL)
	data, err = os.ReadFile(env.m.exportPath)
	require.NoError(t, err)
	assert.Equal(t, "only status", string(data))
	assert.Equal(t, "Status exported to "+env.m.exportPath, env.m.errMsg)
}

func TestExportLogClipboardFailureIsNotAnError(t *testing.T) {
	env := newTestEnv(t)
	env.m.clipboard = func(string) error { return errors.New("no clipboard") }

	env.m.setError("boom", "detail")
	env.key(tea.KeyCtrlL)
	assert.FileExists(t, env.m.exportPath)
	assert.True(t, strings.HasPrefix(env.m.errMsg, "Log exported"))
}

func TestEscClearsError(t *testing.T) {
	env := newTestEnv(t)
	env.m.setError("boom", "detail")
	env.key(tea.KeyEsc)
	assert.Empty(t, env.m.errMsg)
	assert.Empty(t, env.m.errDetail)
}

func TestQuit(t *testing.T) {
	for _, k := range []tea.KeyMsg{
		{Type: tea.KeyRunes, Runes: []rune("q")},
		{Type: tea.KeyCtrlC},
	} {
		env := newTestEnv(t)
		env.h.SendAndExec(k)
		assert.True(t, env.h.Quit(), k.String())
	}
}

func TestCtrlCQuitsFromInputModes(t *testing.T) {
	env := newTestEnv(t)
	env.h.SendKey("a")
	env.h.SendAndExec(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.True(t, env.h.Quit())
}

func TestStatusRefreshDropsStaleResults(t *testing.T) {
	dir := t.TempDir()
	env := newTestEnv(t, config.Project{Name: "p", Path: dir, Worktrees: []config.Worktree{{Name: "w", Path: dir}}})

	stale := env.m.refreshStatuses(false)()
	env.h.SendKey("x")
	env.h.SendMsg(stale)
	assert.Empty(t, env.m.statuses)

	env2 := newTestEnv(t, config.Project{Name: "p", Path: dir, Worktrees: []config.Worktree{{Name: "w", Path: dir}}})
	env2.h.SendMsg(env2.m.refreshStatuses(false)())
	assert.Equal(t, git.StatusClean, env2.m.statuses[session.WorktreeKey(0, 0)])
	assert.Contains(t, env2.h.View(), "w (clean)")
}

func TestAttachTypeDetachReattach(t *testing.T) {
	requireShell(t)
	env := newTestEnv(t, config.Project{Name: "p", Path: t.TempDir(), Worktrees: []config.Worktree{{Name: "w", Path: t.TempDir()}}})
	env.selectKey(t, session.WorktreeKey(0, 0))

	env.h.SendKey("c")
	require.Equal(t, modeTerminal, env.m.mode)
	s, ok := env.m.registry.Get(session.WorktreeKey(0, 0))
	require.True(t, ok)
	cols, rows := env.m.constraints.TerminalSize()
	gotCols, gotRows := s.Size()
	assert.Equal(t, cols, gotCols)
	assert.Equal(t, rows, gotRows)
	pid := s.PID()

	env.h.SendText("echo $((6*7))")
	env.key(tea.KeyEnter)
	require.Eventually(t, screenHasLine(s, "42"), 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, env.h.View(), "Terminal (Attached)")

	// q is typed into the shell, not a quit.
	env.h.SendKey("q")
	assert.False(t, env.h.Quit())

	env.key(tea.KeyCtrlC)
	assert.Equal(t, keys.AdvisoryText, env.m.term.Advisory())
	assert.Contains(t, env.h.View(), "Ctrl-C sent.")
	env.h.SendKey("x")
	assert.Empty(t, env.m.term.Advisory())

	env.key(tea.KeyEsc)
	assert.Equal(t, modeNormal, env.m.mode)
	assert.Equal(t, 1, env.m.registry.Len())
	// The detached shell stays on screen.
	assert.Contains(t, env.h.View(), "42")

	env.h.SendKey("c")
	again, ok := env.m.registry.Get(session.WorktreeKey(0, 0))
	require.True(t, ok)
	assert.Equal(t, pid, again.PID())
	assert.True(t, screenHasLine(again, "42")())
}

func TestOutputWhileDetachedShowsOnReattach(t *testing.T) {
	requireShell(t)
	env := newTestEnv(t, config.Project{Name: "p", Path: t.TempDir(), Worktrees: []config.Worktree{{Name: "w", Path: t.TempDir()}}})
	env.selectKey(t, session.WorktreeKey(0, 0))
	env.h.SendKey("c")

	env.h.SendText("(sleep 0.3; echo bg-$((1+1))) &")
	env.key(tea.KeyEnter)
	env.key(tea.KeyEsc)
	env.key(tea.KeyUp)
	assert.NotContains(t, env.h.View(), "bg-2")

	time.Sleep(time.Second)

	env.key(tea.KeyDown)
	env.h.SendKey("c")
	require.Equal(t, modeTerminal, env.m.mode)
	assert.Contains(t, env.h.View(), "bg-2")
}

func TestWindowResizeResizesAttachedShell(t *testing.T) {
	requireShell(t)
	env := newTestEnv(t, config.Project{Name: "p", Path: t.TempDir(), Worktrees: []config.Worktree{{Name: "w", Path: t.TempDir()}}})
	env.selectKey(t, session.WorktreeKey(0, 0))
	env.h.SendKey("c")

	for _, size := range []struct{ w, h int }{{80, 24}, {200, 50}, {100, 30}} {
		env.h.Resize(size.w, size.h)
		s, ok := env.m.registry.Get(session.WorktreeKey(0, 0))
		require.True(t, ok)
		wantCols, wantRows := env.m.constraints.TerminalSize()
		cols, rows := s.Size()
		assert.Equal(t, wantCols, cols)
		assert.Equal(t, wantRows, rows)
		g := s.Snapshot()
		assert.Equal(t, wantCols, g.Cols)
		assert.Equal(t, wantRows, g.Rows)
	}
}

func TestKillSession(t *testing.T) {
	requireShell(t)
	env := newTestEnv(t, config.Project{Name: "p", Path: t.TempDir(), Worktrees: []config.Worktree{{Name: "w", Path: t.TempDir()}}})
	env.selectKey(t, session.WorktreeKey(0, 0))
	env.h.SendKey("c")
	env.key(tea.KeyEsc)
	require.Equal(t, 1, env.m.registry.Len())

	env.h.SendKey("k")
	assert.Equal(t, 0, env.m.registry.Len())
}

func TestExitedShellKeepsItsScreen(t *testing.T) {
	requireShell(t)
	env := newTestEnv(t, config.Project{Name: "p", Path: t.TempDir(), Worktrees: []config.Worktree{{Name: "w", Path: t.TempDir()}}})
	env.selectKey(t, session.WorktreeKey(0, 0))
	env.h.SendKey("c")
	s, _ := env.m.registry.Get(session.WorktreeKey(0, 0))

	env.h.SendText("echo LASTWORDS; exit")
	env.key(tea.KeyEnter)
	require.Eventually(t, s.Exited, 5*time.Second, 20*time.Millisecond)

	env.h.SendMsg(renderTickMsg(time.Now()))
	again, ok := env.m.registry.Get(session.WorktreeKey(0, 0))
	require.True(t, ok)
	assert.Same(t, s, again)
	assert.Equal(t, modeTerminal, env.m.mode)
	assert.Empty(t, env.m.errMsg)
	assert.Contains(t, env.h.View(), "LASTWORDS")

	// Keys sent to the dead shell are dropped.
	env.h.SendKey("x")
	env.key(tea.KeyEnter)
	assert.Equal(t, modeTerminal, env.m.mode)
	assert.Equal(t, 1, env.m.registry.Len())

	env.key(tea.KeyEsc)
	assert.Contains(t, env.h.View(), "LASTWORDS")

	// Only an explicit kill evicts it.
	env.h.SendKey("k")
	assert.Equal(t, 0, env.m.registry.Len())
}

func TestGitOutputGoesToLiveShell(t *testing.T) {
	requireShell(t)
	env := newTestEnv(t, config.Project{Name: "p", Path: t.TempDir(), Worktrees: []config.Worktree{{Name: "w", Path: t.TempDir()}}})
	env.git.output["diff"] = "+added line\n"
	env.selectKey(t, session.WorktreeKey(0, 0))
	env.h.SendKey("c")
	env.key(tea.KeyEsc)

	env.h.Exec(env.h.SendKey("d"))
	s, _ := env.m.registry.Get(session.WorktreeKey(0, 0))
	assert.Contains(t, s.Snapshot().Text(), "+added line")
	assert.Empty(t, env.m.output.Text())
	assert.Equal(t, modeViewingDiff, env.m.mode)
}
