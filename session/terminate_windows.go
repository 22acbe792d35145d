//go:build windows

package session

import (
	"errors"
	"os"
)

func terminate(p *os.Process) error {
	err := p.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}
