//go:build !windows

package session

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// terminate sends SIGHUP to the shell's process group. The shell leads its own
// session, so the group id equals its pid and jobs it started are hung up too.
func terminate(p *os.Process) error {
	err := unix.Kill(-p.Pid, unix.SIGHUP)
	if errors.Is(err, unix.ESRCH) {
		return nil
	}
	return err
}
