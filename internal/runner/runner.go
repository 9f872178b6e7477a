package runner

import (
	"bytes"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// Runner abstracts command execution and file placement on the target host.
//
// Run executes a command and returns captured stdout, stderr, the process
// exit code, and any execution error. A missing binary is reported with
// exit code 127 alongside the error so callers can distinguish "tool not
// installed" from "tool present but failing".
type Runner interface {
	Run(name string, args ...string) ([]byte, []byte, int32, error)
	RunEnv(extraEnv []string, name string, args ...string) ([]byte, []byte, int32, error)
	WriteFile(path string, data []byte, perm os.FileMode) error
}

// ExecRunner executes commands on the local host.
type ExecRunner struct{}

func (r ExecRunner) Run(name string, args ...string) ([]byte, []byte, int32, error) {
	return r.RunEnv(nil, name, args...)
}

// RunEnv executes a command with extra KEY=VALUE pairs appended to the
// inherited environment.
func (r ExecRunner) RunEnv(extraEnv []string, name string, args ...string) ([]byte, []byte, int32, error) {
	cmd := exec.Command(name, args...)
	if len(extraEnv) > 0 {
		cmd.Env = append(os.Environ(), extraEnv...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), stderr.Bytes(), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return stdout.Bytes(), stderr.Bytes(), int32(exitErr.ExitCode()), err
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		// Shell convention for command-not-found.
		return stdout.Bytes(), stderr.Bytes(), 127, err
	}

	return stdout.Bytes(), stderr.Bytes(), 1, err
}

// WriteFile places a file on the local filesystem, creating parent
// directories as needed.
func (r ExecRunner) WriteFile(path string, data []byte, perm os.FileMode) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
