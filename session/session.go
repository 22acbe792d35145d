// Package session runs interactive shells on pseudo-terminals and keeps an emulated
// screen for each of them, whether or not it is currently on display.
package session

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/creack/pty"

	"workman/log"
	"workman/session/vt"
)

const (
	readBufferSize = 4096
	defaultShell   = "/bin/sh"
	maxDimension   = 65535
)

var (
	// ErrSpawn is returned when the shell or its pseudo-terminal cannot be started.
	ErrSpawn = errors.New("failed to start shell")
	// ErrClosed is returned when writing to a session whose shell has exited or
	// whose handles were closed.
	ErrClosed = errors.New("session closed")
	// ErrInvalidSize is returned for a geometry with a non-positive dimension.
	ErrInvalidSize = errors.New("invalid terminal size")
)

type options struct {
	shell      string
	scrollback int
	env        []string
}

// Option configures a new Session.
type Option func(*options)

// WithShell runs path instead of $SHELL.
func WithShell(path string) Option {
	return func(o *options) {
		o.shell = path
	}
}

// WithScrollback sets how many rows of history the screen keeps.
func WithScrollback(n int) Option {
	return func(o *options) {
		o.scrollback = n
	}
}

// WithEnv adds KEY=VALUE pairs to the shell environment.
func WithEnv(kv ...string) Option {
	return func(o *options) {
		o.env = append(o.env, kv...)
	}
}

func buildOptions(opts []Option) options {
	o := options{scrollback: vt.DefaultScrollback}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ResolveShell returns the shell to start: the configured one, then $SHELL, then /bin/sh.
func ResolveShell(configured string) string {
	if configured != "" {
		return configured
	}
	if sh := os.Getenv("SHELL"); sh != "" {
		return sh
	}
	return defaultShell
}

// Session is one shell running on a pseudo-terminal, plus the screen its output
// is drawn on. A background reader keeps the screen current until the shell exits.
type Session struct {
	dir  string
	cmd  *exec.Cmd
	ptmx *os.File

	// mu guards screen. It is held while a chunk of output is applied and while
	// a snapshot is copied, never across PTY I/O.
	mu     sync.Mutex
	screen *vt.Screen

	// resizeMu serialises Resize so the PTY and the screen always agree.
	resizeMu   sync.Mutex
	cols, rows int

	closed    atomic.Bool
	closeOnce sync.Once
	closeErr  error

	done   chan struct{}
	exited chan struct{}
}

// New starts a shell in dir on a pseudo-terminal of the given size.
func New(dir string, cols, rows int, opts ...Option) (*Session, error) {
	if err := validSize(cols, rows); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: working directory: %w", ErrSpawn, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrSpawn, dir)
	}

	o := buildOptions(opts)
	shell := ResolveShell(o.shell)
	if _, err := exec.LookPath(shell); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}

	cmd := exec.Command(shell)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, o.env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSpawn, err)
	}
	if p, err := pollable(ptmx); err != nil {
		log.WarningLog.Printf("session %s: %v; closing it will not hang up the shell", filepath.Base(dir), err)
	} else {
		ptmx = p
	}

	s := &Session{
		dir:    dir,
		cmd:    cmd,
		ptmx:   ptmx,
		screen: vt.NewScreen(cols, rows, o.scrollback),
		cols:   cols,
		rows:   rows,
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}
	log.SessionTrace(s.name(), "spawned %s pid=%d size=%dx%d", shell, cmd.Process.Pid, cols, rows)

	go s.readLoop()
	return s, nil
}

func validSize(cols, rows int) error {
	if cols <= 0 || rows <= 0 || cols > maxDimension || rows > maxDimension {
		return fmt.Errorf("%w: %dx%d", ErrInvalidSize, cols, rows)
	}
	return nil
}

func (s *Session) name() string {
	return filepath.Base(s.dir)
}

// readLoop applies PTY output to the screen until the stream ends, then reaps the shell.
func (s *Session) readLoop() {
	buf := make([]byte, readBufferSize)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			s.mu.Lock()
			_, _ = s.screen.Write(buf[:n])
			replies := s.screen.TakeReplies()
			s.mu.Unlock()

			if len(replies) > 0 {
				if _, werr := s.ptmx.Write(replies); werr != nil {
					log.SessionTrace(s.name(), "dropped %d reply bytes: %v", len(replies), werr)
				}
			}
		}
		if err != nil {
			// EIO is how Linux reports that the shell side hung up.
			if !errors.Is(err, io.EOF) && !s.closed.Load() {
				log.InfoLog.Printf("session %s: output stream ended: %v", s.name(), err)
			}
			break
		}
	}
	close(s.done)

	if err := s.cmd.Wait(); err != nil {
		log.InfoLog.Printf("session %s: shell exited: %v", s.name(), err)
	}
	log.SessionTrace(s.name(), "reaped pid=%d", s.PID())
	close(s.exited)
}

// Write sends input to the shell.
func (s *Session) Write(p []byte) (int, error) {
	if s.closed.Load() {
		return 0, ErrClosed
	}
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}

	n, err := s.ptmx.Write(p)
	if err != nil {
		return n, fmt.Errorf("%w: %w", ErrClosed, err)
	}
	return n, nil
}

// Feed draws bytes that did not come from the shell, such as the output of a git
// command run on the session's worktree. Bare line feeds are treated as new lines.
func (s *Session) Feed(p []byte) {
	data := bytes.ReplaceAll(p, []byte("\r\n"), []byte("\n"))
	data = bytes.ReplaceAll(data, []byte("\n"), []byte("\r\n"))

	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = s.screen.Write(data)
	// Queries inside injected text were not asked by the shell.
	_ = s.screen.TakeReplies()
}

// Resize changes the PTY window size and then the screen. If the PTY rejects the
// new size the previous geometry stays in place.
func (s *Session) Resize(cols, rows int) error {
	if err := validSize(cols, rows); err != nil {
		return err
	}

	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()

	if cols == s.cols && rows == s.rows {
		return nil
	}
	if err := setWinsize(s.ptmx, cols, rows); err != nil {
		return fmt.Errorf("failed to resize pty: %w", err)
	}

	s.mu.Lock()
	s.screen.Resize(cols, rows)
	s.mu.Unlock()

	s.cols, s.rows = cols, rows
	log.SessionTrace(s.name(), "resized to %dx%d", cols, rows)
	return nil
}

// Size returns the geometry of the last successful Resize.
func (s *Session) Size() (cols, rows int) {
	s.resizeMu.Lock()
	defer s.resizeMu.Unlock()
	return s.cols, s.rows
}

// Snapshot returns a copy of the visible screen.
func (s *Session) Snapshot() vt.Grid {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Snapshot()
}

// Scrollback returns the rows that scrolled off the top of the screen, oldest first.
func (s *Session) Scrollback() [][]vt.Cell {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Scrollback()
}

// Title returns the window title the shell last set.
func (s *Session) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.screen.Title()
}

// Dir returns the working directory the shell was started in.
func (s *Session) Dir() string {
	return s.dir
}

// PID returns the shell's process id. It does not change over the session's life.
func (s *Session) PID() int {
	return s.cmd.Process.Pid
}

// Done is closed once the reader has seen the end of the shell's output.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Exited reports whether the shell process has terminated and been reaped.
func (s *Session) Exited() bool {
	select {
	case <-s.exited:
		return true
	default:
		return false
	}
}

// Close releases the PTY and wakes the reader. It does not signal the shell; the
// kernel hangs up the terminal when the last master handle goes away.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.closed.Store(true)
		s.closeErr = s.ptmx.Close()
		log.SessionTrace(s.name(), "closed")
	})
	return s.closeErr
}

// Terminate hangs up the shell's process group and closes the PTY.
func (s *Session) Terminate() error {
	var errs []error
	if !s.Exited() {
		if err := terminate(s.cmd.Process); err != nil {
			errs = append(errs, fmt.Errorf("failed to signal shell: %w", err))
		}
	}
	if err := s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close pty: %w", err))
	}
	return errors.Join(errs...)
}
