package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Runner runs commands and manipulates files on a target host.
type Runner interface {
	// Run executes name with args and returns combined stdout and stderr.
	// A non-zero exit status is reported as *CommandError.
	Run(ctx context.Context, name string, args ...string) (string, error)

	ReadFile(ctx context.Context, path string) ([]byte, error)

	// WriteFile replaces path atomically and sets perm on the result.
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error

	MkdirAll(ctx context.Context, path string, perm os.FileMode) error

	// Exists reports whether path exists. A dangling symlink counts as existing.
	Exists(ctx context.Context, path string) (bool, error)

	// Symlink points link at target, replacing an existing link.
	Symlink(ctx context.Context, target, link string) error

	// Chown sets the numeric owner and group of path.
	Chown(ctx context.Context, path string, uid, gid int) error

	// Target names the host for log output.
	Target() string
}

// CommandError is returned when a command exits unsuccessfully.
type CommandError struct {
	Cmd      string
	Output   string
	ExitCode int
	Err      error
}

func (e *CommandError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("command %q failed: %v", e.Cmd, e.Err)
	}
	return fmt.Sprintf("command %q failed: %v: %s", e.Cmd, e.Err, out)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode returns the exit status carried by err, or -1 when err did not
// come from a command that ran to completion.
func ExitCode(err error) int {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr.ExitCode
	}
	return -1
}

var safeArg = regexp.MustCompile(`^[a-zA-Z0-9_@%+=:,./-]+$`)

// Quote returns s quoted for a POSIX shell.
func Quote(s string) string {
	if s == "" {
		return "''"
	}
	if safeArg.MatchString(s) {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// CommandLine joins name and args into a single shell-safe command line.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, Quote(name))
	for _, a := range args {
		parts = append(parts, Quote(a))
	}
	return strings.Join(parts, " ")
}
