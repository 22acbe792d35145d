package session

import (
	"errors"
	"fmt"
	"sync"

	"workman/log"
)

// ErrNotWorktree is returned when a session is requested for a project row.
var ErrNotWorktree = errors.New("sessions belong to worktrees, not projects")

type spawnFunc func(dir string, cols, rows int, opts ...Option) (*Session, error)

// Registry owns every live Session, keyed by tree position.
type Registry struct {
	mu       sync.Mutex
	sessions map[Key]*Session
	// evicted holds closed sessions whose shells have not been reaped yet.
	evicted map[*Session]Key
	opts    []Option
	spawn   spawnFunc
}

// NewRegistry returns an empty registry. opts are applied to every session it creates.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{
		sessions: make(map[Key]*Session),
		evicted:  make(map[*Session]Key),
		opts:     opts,
		spawn:    New,
	}
}

// GetOrCreate returns the session for key, starting a shell in dir when there is
// none. The lookup, the spawn and the insert happen under one lock, so concurrent
// callers for the same key share one shell.
func (r *Registry) GetOrCreate(key Key, dir string, cols, rows int) (*Session, error) {
	if !key.IsWorktree() {
		return nil, fmt.Errorf("%s: %w", key, ErrNotWorktree)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		return s, nil
	}
	s, err := r.spawn(dir, cols, rows, r.opts...)
	if err != nil {
		return nil, err
	}
	r.sessions[key] = s
	return s, nil
}

// Get returns the session for key without creating one.
func (r *Registry) Get(key Key) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	return s, ok
}

// Remove forgets the session for key and closes its PTY.
func (r *Registry) Remove(key Key) {
	r.mu.Lock()
	s, ok := r.sessions[key]
	delete(r.sessions, key)
	r.mu.Unlock()

	if ok {
		r.evict(key, s)
	}
}

// Route draws output on the session for key, if there is one, and reports
// whether it did.
func (r *Registry) Route(key Key, output []byte) bool {
	s, ok := r.Get(key)
	if !ok {
		return false
	}
	s.Feed(output)
	return true
}

// Len returns the number of sessions.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Reindex keeps keys aligned with the tree after worktree removed of project was
// deleted: its session is closed and the worktrees after it move up by one.
func (r *Registry) Reindex(project, removed int) {
	var stale []*Session
	var staleKeys []Key

	r.mu.Lock()
	next := make(map[Key]*Session, len(r.sessions))
	for k, s := range r.sessions {
		switch {
		case k.Project != project:
			next[k] = s
		case k.Worktree == removed:
			stale = append(stale, s)
			staleKeys = append(staleKeys, k)
		case k.Worktree > removed:
			next[WorktreeKey(project, k.Worktree-1)] = s
		default:
			next[k] = s
		}
	}
	r.sessions = next
	r.mu.Unlock()

	for i, s := range stale {
		r.evict(staleKeys[i], s)
	}
}

// DropProject closes the sessions of a deleted project and moves the sessions of
// later projects up by one.
func (r *Registry) DropProject(project int) {
	var stale []*Session
	var staleKeys []Key

	r.mu.Lock()
	next := make(map[Key]*Session, len(r.sessions))
	for k, s := range r.sessions {
		switch {
		case k.Project == project:
			stale = append(stale, s)
			staleKeys = append(staleKeys, k)
		case k.Project > project:
			next[WorktreeKey(k.Project-1, k.Worktree)] = s
		default:
			next[k] = s
		}
	}
	r.sessions = next
	r.mu.Unlock()

	for i, s := range stale {
		r.evict(staleKeys[i], s)
	}
}

// Shutdown terminates every shell, including evicted ones that are still
// running, and empties the registry.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	sessions := r.sessions
	evicted := r.evicted
	r.sessions = make(map[Key]*Session)
	r.evicted = make(map[*Session]Key)
	r.mu.Unlock()

	for k, s := range sessions {
		evicted[s] = k
	}
	for s, k := range evicted {
		if err := s.Terminate(); err != nil {
			log.WarningLog.Printf("failed to terminate session %s: %v", k, err)
		}
	}
}

// Evicted returns the number of closed sessions whose shells are still running.
func (r *Registry) Evicted() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.evicted)
}

// evict closes s and keeps it for Shutdown until its shell has been reaped.
func (r *Registry) evict(key Key, s *Session) {
	if err := s.Close(); err != nil {
		log.WarningLog.Printf("failed to close session %s: %v", key, err)
	}
	if s.Exited() {
		return
	}

	r.mu.Lock()
	r.evicted[s] = key
	r.mu.Unlock()

	go func() {
		<-s.exited
		r.mu.Lock()
		delete(r.evicted, s)
		r.mu.Unlock()
	}()
}
