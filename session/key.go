package session

import "fmt"

// Kind says whether a Key names a project row or a worktree row of the tree.
type Kind int

const (
	KindProject Kind = iota
	KindWorktree
)

// Key identifies a row of the project tree by position. Only worktree keys own sessions.
type Key struct {
	Kind     Kind
	Project  int
	Worktree int
}

// ProjectKey returns the key of project p.
func ProjectKey(p int) Key {
	return Key{Kind: KindProject, Project: p, Worktree: -1}
}

// WorktreeKey returns the key of worktree w of project p.
func WorktreeKey(p, w int) Key {
	return Key{Kind: KindWorktree, Project: p, Worktree: w}
}

func (k Key) IsWorktree() bool {
	return k.Kind == KindWorktree
}

func (k Key) String() string {
	if k.IsWorktree() {
		return fmt.Sprintf("worktree(%d,%d)", k.Project, k.Worktree)
	}
	return fmt.Sprintf("project(%d)", k.Project)
}
