// Package git runs the git operations behind the dashboard: adding and removing
// worktrees, diffs, pushes and the one-line status shown next to each worktree.
package git

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"workman/cmd"
	"workman/log"
)

// WorktreeDirName is the directory inside a project that holds its worktrees.
const WorktreeDirName = ".workman"

const gitignoreEntry = "\n# workman worktrees\n.workman/\n"

var (
	// ErrNotGitRepo is returned when a project path is not the root of a git repository.
	ErrNotGitRepo = errors.New("not a git repository")
	// ErrInvalidBranch is returned for worktree names git does not accept as branch names.
	ErrInvalidBranch = errors.New("invalid branch name")
)

// Result is the combined stdout and stderr of a git operation and whether it succeeded.
// A git command that ran but exited non-zero is a failed Result, not an error.
type Result struct {
	Output  string
	Success bool
}

// Runner runs git through a cmd.Executor.
type Runner struct {
	exec cmd.Executor
}

func NewRunner(executor cmd.Executor) *Runner {
	return &Runner{exec: executor}
}

// runGitCommand runs git -C dir args... and returns its combined output.
func (r *Runner) runGitCommand(dir string, args ...string) (Result, error) {
	c := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := r.exec.CombinedOutput(c)
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			log.InfoLog.Printf("%s exited non-zero: %s", cmd.ToString(c), strings.TrimSpace(string(output)))
			return Result{Output: string(output), Success: false}, nil
		}
		return Result{}, fmt.Errorf("failed to run %s: %w", cmd.ToString(c), err)
	}
	return Result{Output: string(output), Success: true}, nil
}

// outputOf runs git and returns stdout only, or "" when it cannot be run.
func (r *Runner) outputOf(dir string, args ...string) string {
	c := exec.Command("git", append([]string{"-C", dir}, args...)...)
	output, err := r.exec.Output(c)
	if err != nil {
		log.InfoLog.Printf("%s failed: %v", cmd.ToString(c), err)
		return ""
	}
	return string(output)
}

// WorktreePath returns where the worktree name of the project at projectPath lives.
func WorktreePath(projectPath, name string) string {
	return filepath.Join(projectPath, WorktreeDirName, name)
}

// ValidateProjectPath checks that path exists, is a directory and is the root of
// a git repository. It returns the cleaned absolute path.
func ValidateProjectPath(path string) (string, error) {
	absPath, err := filepath.Abs(expandHome(path))
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("path does not exist: %s", absPath)
		}
		return "", fmt.Errorf("failed to stat %s: %w", absPath, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", absPath)
	}

	if _, err := git.PlainOpen(absPath); err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return "", fmt.Errorf("%w: %s", ErrNotGitRepo, absPath)
		}
		return "", fmt.Errorf("failed to open repository %s: %w", absPath, err)
	}
	return absPath, nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// ensureGitignore makes sure the project ignores its worktree directory.
func ensureGitignore(projectPath string) error {
	gitignorePath := filepath.Join(projectPath, ".gitignore")
	content, err := os.ReadFile(gitignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(content), "\n") {
		if l := strings.TrimSpace(line); l == WorktreeDirName+"/" || l == WorktreeDirName {
			return nil
		}
	}

	f, err := os.OpenFile(gitignorePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open .gitignore: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(gitignoreEntry); err != nil {
		return fmt.Errorf("failed to update .gitignore: %w", err)
	}
	return nil
}

// branchExists reports whether refs/heads/branch exists in the repository.
func branchExists(repoPath, branch string) (bool, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return false, fmt.Errorf("failed to open repository: %w", err)
	}
	_, err = repo.Reference(plumbing.NewBranchReferenceName(branch), false)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("error checking branch %s existence: %w", branch, err)
	}
}
