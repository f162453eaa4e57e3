// Package apt installs Debian packages on the target through the command runner.
package apt

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// Manager implements provisioning.PackageManager with dpkg-query and apt-get.
type Manager struct {
	runner runner.Runner
}

// New returns a package manager running on r.
func New(r runner.Runner) *Manager {
	return &Manager{runner: r}
}

// IsInstalled reports whether name is fully installed. Packages dpkg does not
// know about, or that only have config files left, count as not installed.
func (m *Manager) IsInstalled(ctx context.Context, name string) (bool, error) {
	out, err := m.runner.Run(ctx, "dpkg-query", "-W", "-f=${Status}", name)
	if err != nil {
		if runner.ExitCode(err) == 1 {
			return false, nil
		}
		return false, fmt.Errorf("failed to query package %s: %w", name, err)
	}
	return strings.Contains(out, "install ok installed"), nil
}

// Install refreshes the package index and installs names non-interactively.
// apt-get treats already installed packages as a no-op.
func (m *Manager) Install(ctx context.Context, names ...string) error {
	if len(names) == 0 {
		return nil
	}
	if _, err := m.aptGet(ctx, "update", "-q"); err != nil {
		return fmt.Errorf("failed to update package index: %w", err)
	}
	args := append([]string{"install", "-y", "-q"}, names...)
	if _, err := m.aptGet(ctx, args...); err != nil {
		return fmt.Errorf("failed to install %s: %w", strings.Join(names, " "), err)
	}
	return nil
}

func (m *Manager) aptGet(ctx context.Context, args ...string) (string, error) {
	return m.runner.Run(ctx, "env", append([]string{"DEBIAN_FRONTEND=noninteractive", "apt-get"}, args...)...)
}
