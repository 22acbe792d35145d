//go:build windows

package session

import (
	"os"

	"github.com/creack/pty"
)

func pollable(f *os.File) (*os.File, error) {
	return f, nil
}

func setWinsize(f *os.File, cols, rows int) error {
	return pty.Setsize(f, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}
