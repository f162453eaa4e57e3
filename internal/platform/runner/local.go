package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Local runs commands on the current machine.
type Local struct{}

// NewLocal returns a runner for the local machine.
func NewLocal() *Local {
	return &Local{}
}

// Target implements Runner.
func (l *Local) Target() string {
	return "localhost"
}

// Run implements Runner.
func (l *Local) Run(ctx context.Context, name string, args ...string) (string, error) {
	// #nosec G204 - commands are built by the platform adapters, not from user input
	cmd := exec.CommandContext(ctx, name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out

	err := cmd.Run()
	if err == nil {
		return out.String(), nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	return out.String(), &CommandError{
		Cmd:      CommandLine(name, args...),
		Output:   out.String(),
		ExitCode: exitCode,
		Err:      err,
	}
}

// ReadFile implements Runner.
func (l *Local) ReadFile(_ context.Context, path string) ([]byte, error) {
	return os.ReadFile(path) // #nosec G304 - paths come from the deployment config
}

// WriteFile implements Runner. The data is written to a temporary file in the
// same directory and renamed over path.
func (l *Local) WriteFile(_ context.Context, path string, data []byte, perm os.FileMode) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file for %s: %w", path, err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to set mode on %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// MkdirAll implements Runner.
func (l *Local) MkdirAll(_ context.Context, path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// Exists implements Runner.
func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// Symlink implements Runner.
func (l *Local) Symlink(_ context.Context, target, link string) error {
	if current, err := os.Readlink(link); err == nil {
		if current == target {
			return nil
		}
		if err := os.Remove(link); err != nil {
			return fmt.Errorf("failed to replace link %s: %w", link, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to inspect %s: %w", link, err)
	}
	return os.Symlink(target, link)
}

// Chown implements Runner.
func (l *Local) Chown(_ context.Context, path string, uid, gid int) error {
	return os.Chown(path, uid, gid)
}
