package cmd_test

import (
	"os/exec"
)

// MockCmdExec is a cmd.Executor whose behavior is supplied per test.
// A nil function makes the corresponding call succeed with no output.
type MockCmdExec struct {
	RunFunc            func(cmd *exec.Cmd) error
	OutputFunc         func(cmd *exec.Cmd) ([]byte, error)
	CombinedOutputFunc func(cmd *exec.Cmd) ([]byte, error)
}

func (e MockCmdExec) Run(cmd *exec.Cmd) error {
	if e.RunFunc == nil {
		return nil
	}
	return e.RunFunc(cmd)
}

func (e MockCmdExec) Output(cmd *exec.Cmd) ([]byte, error) {
	if e.OutputFunc == nil {
		return nil, nil
	}
	return e.OutputFunc(cmd)
}

func (e MockCmdExec) CombinedOutput(cmd *exec.Cmd) ([]byte, error) {
	if e.CombinedOutputFunc == nil {
		return nil, nil
	}
	return e.CombinedOutputFunc(cmd)
}
