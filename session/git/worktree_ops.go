package git

import (
	"fmt"
	"os"
	"strings"

	"workman/log"
)

// DefaultCommitMessage is used when a push is started with an empty message.
const DefaultCommitMessage = "Auto-commit from workman"

// PushSuccessMessage is prepended to the output of a successful push.
const PushSuccessMessage = "Push successful!\n"

// AddWorktree creates the worktree name under the project's worktree directory,
// on the branch of the same name. The branch is created when it does not exist.
// It returns the path of the new worktree.
func (r *Runner) AddWorktree(projectPath, name string) (string, Result, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", Result{}, fmt.Errorf("%w: name is empty", ErrInvalidBranch)
	}

	check, err := r.runGitCommand(projectPath, "check-ref-format", "--normalize", "refs/heads/"+name)
	if err != nil {
		return "", Result{}, err
	}
	if !check.Success {
		return "", check, fmt.Errorf("%w: %s", ErrInvalidBranch, name)
	}

	path := WorktreePath(projectPath, name)
	if _, err := os.Stat(path); err == nil {
		return "", Result{}, fmt.Errorf("worktree %s already exists", path)
	}

	if err := os.MkdirAll(WorktreePath(projectPath, ""), 0755); err != nil {
		return "", Result{}, fmt.Errorf("failed to create worktree directory: %w", err)
	}
	if err := ensureGitignore(projectPath); err != nil {
		// The worktree still works; it only shows up as untracked in the project.
		log.WarningLog.Printf("failed to add %s to .gitignore: %v", WorktreeDirName, err)
	}

	exists, err := branchExists(projectPath, name)
	if err != nil {
		return "", Result{}, err
	}

	var res Result
	if exists {
		res, err = r.runGitCommand(projectPath, "worktree", "add", path, name)
	} else {
		res, err = r.runGitCommand(projectPath, "worktree", "add", "-b", name, path)
	}
	if err != nil {
		return "", Result{}, err
	}
	return path, res, nil
}

// RemoveWorktree runs git worktree remove for the worktree at worktreePath.
func (r *Runner) RemoveWorktree(projectPath, worktreePath string) (Result, error) {
	return r.runGitCommand(projectPath, "worktree", "remove", worktreePath)
}

// Diff returns the unstaged changes of a worktree.
func (r *Runner) Diff(worktreePath string) (Result, error) {
	return r.runGitCommand(worktreePath, "diff")
}

// Push stages everything, commits with message and pushes. A commit with nothing
// to commit does not fail the push; only the push itself decides Success.
func (r *Runner) Push(worktreePath, message string) (Result, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		message = DefaultCommitMessage
	}

	var output strings.Builder
	for _, args := range [][]string{{"add", "-A"}, {"commit", "-m", message}} {
		res, err := r.runGitCommand(worktreePath, args...)
		if err != nil {
			return Result{}, err
		}
		output.WriteString(res.Output)
	}

	push, err := r.runGitCommand(worktreePath, "push")
	if err != nil {
		return Result{}, err
	}
	output.WriteString(push.Output)

	if !push.Success {
		return Result{Output: output.String()}, nil
	}
	return Result{Output: PushSuccessMessage + output.String(), Success: true}, nil
}
