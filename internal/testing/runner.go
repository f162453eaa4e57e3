package testing

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

type response struct {
	prefix string
	output string
	err    error
}

// FakeRunner is an in-memory runner.Runner. Commands are recorded as shell
// command lines and answered from responses registered with On or Fail;
// unmatched commands succeed with empty output. Files, directories and links
// live in maps.
type FakeRunner struct {
	mu        sync.Mutex
	calls     []string
	responses []response

	Files  map[string][]byte
	Modes  map[string]os.FileMode
	Dirs   map[string]bool
	Links  map[string]string
	Owners map[string][2]int
}

var _ runner.Runner = (*FakeRunner)(nil)

// NewFakeRunner returns an empty fake.
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Files:  make(map[string][]byte),
		Modes:  make(map[string]os.FileMode),
		Dirs:   make(map[string]bool),
		Links:  make(map[string]string),
		Owners: make(map[string][2]int),
	}
}

// On answers commands whose command line starts with prefix. Later
// registrations take precedence.
func (r *FakeRunner) On(prefix, output string, err error) *FakeRunner {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.responses = append(r.responses, response{prefix: prefix, output: output, err: err})
	return r
}

// Fail makes commands starting with prefix exit with code and output.
func (r *FakeRunner) Fail(prefix string, code int, output string) *FakeRunner {
	return r.On(prefix, output, &runner.CommandError{
		Cmd:      prefix,
		Output:   output,
		ExitCode: code,
		Err:      fmt.Errorf("exit status %d", code),
	})
}

// Calls returns the command lines run so far.
func (r *FakeRunner) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

// Ran reports whether a command line starting with prefix was run.
func (r *FakeRunner) Ran(prefix string) bool {
	for _, c := range r.Calls() {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}

// Target implements runner.Runner.
func (r *FakeRunner) Target() string {
	return "fake"
}

// Run implements runner.Runner.
func (r *FakeRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line := runner.CommandLine(name, args...)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, line)
	for i := len(r.responses) - 1; i >= 0; i-- {
		if strings.HasPrefix(line, r.responses[i].prefix) {
			return r.responses[i].output, r.responses[i].err
		}
	}
	return "", nil
}

// ReadFile implements runner.Runner.
func (r *FakeRunner) ReadFile(_ context.Context, path string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, ok := r.Files[path]
	if !ok {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	return append([]byte(nil), data...), nil
}

// WriteFile implements runner.Runner.
func (r *FakeRunner) WriteFile(_ context.Context, path string, data []byte, perm os.FileMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if dir := filepath.Dir(path); dir != "/" && !r.Dirs[dir] {
		return &os.PathError{Op: "open", Path: path, Err: os.ErrNotExist}
	}
	r.Files[path] = append([]byte(nil), data...)
	r.Modes[path] = perm
	return nil
}

// MkdirAll implements runner.Runner.
func (r *FakeRunner) MkdirAll(_ context.Context, path string, _ os.FileMode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for p := filepath.Clean(path); p != "/" && p != "."; p = filepath.Dir(p) {
		r.Dirs[p] = true
	}
	return nil
}

// Exists implements runner.Runner.
func (r *FakeRunner) Exists(_ context.Context, path string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, isFile := r.Files[path]
	_, isLink := r.Links[path]
	return isFile || isLink || r.Dirs[path], nil
}

// Symlink implements runner.Runner.
func (r *FakeRunner) Symlink(_ context.Context, target, link string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Links[link] = target
	return nil
}

// Chown implements runner.Runner.
func (r *FakeRunner) Chown(_ context.Context, path string, uid, gid int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Files[path]; !ok && !r.Dirs[path] {
		return &os.PathError{Op: "chown", Path: path, Err: os.ErrNotExist}
	}
	r.Owners[path] = [2]int{uid, gid}
	return nil
}
