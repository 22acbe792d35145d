//go:build !windows

package session

import (
	"fmt"
	"os"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// pollable returns a non-blocking copy of the PTY master registered with the
// runtime poller, and closes f. A blocking master pins its descriptor inside
// Read, so Close would neither wake the reader nor hang up the shell.
func pollable(f *os.File) (*os.File, error) {
	fd, err := unix.FcntlInt(f.Fd(), unix.F_DUPFD_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to duplicate pty master: %w", err)
	}
	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("failed to make pty master non-blocking: %w", err)
	}
	_ = f.Close()
	return os.NewFile(uintptr(fd), f.Name()), nil
}

// setWinsize resizes the PTY through the raw connection. pty.Setsize goes
// through f.Fd(), which would switch the master back to blocking mode.
func setWinsize(f *os.File, cols, rows int) error {
	rc, err := f.SyscallConn()
	if err != nil {
		return pty.Setsize(f, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
	}
	var ioctlErr error
	if err := rc.Control(func(fd uintptr) {
		ioctlErr = unix.IoctlSetWinsize(int(fd), unix.TIOCSWINSZ, &unix.Winsize{Row: uint16(rows), Col: uint16(cols)})
	}); err != nil {
		return err
	}
	return ioctlErr
}
