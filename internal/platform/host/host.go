// Package host answers questions about the target host itself: who the
// commands run as and what the host can reach.
package host

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// ErrNotRoot is returned when commands on the target do not run as root.
var ErrNotRoot = errors.New("commands do not run as root")

// DefaultProbeTimeout bounds a single reachability probe, in seconds.
const DefaultProbeTimeout = 5

// Host implements provisioning.PrivilegeChecker and provisioning.Prober.
type Host struct {
	runner runner.Runner
}

// New returns a host adapter running on r.
func New(r runner.Runner) *Host {
	return &Host{runner: r}
}

// CheckPrivilege verifies that commands run with uid 0.
func (h *Host) CheckPrivilege(ctx context.Context) error {
	out, err := h.runner.Run(ctx, "id", "-u")
	if err != nil {
		return fmt.Errorf("failed to determine user id: %w", err)
	}
	uid, err := strconv.Atoi(strings.TrimSpace(out))
	if err != nil {
		return fmt.Errorf("unexpected output from id -u: %q", strings.TrimSpace(out))
	}
	if uid != 0 {
		return fmt.Errorf("%w (uid %d)", ErrNotRoot, uid)
	}
	return nil
}

// Reachable requests url from the target and fails on connection errors and
// HTTP status codes of 400 and above.
func (h *Host) Reachable(ctx context.Context, url string) error {
	_, err := h.runner.Run(ctx, "curl", "-fsS",
		"--max-time", strconv.Itoa(DefaultProbeTimeout),
		"-o", "/dev/null", url)
	if err != nil {
		return fmt.Errorf("%s is not reachable: %w", url, err)
	}
	return nil
}
