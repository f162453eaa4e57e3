// Package nginx manages the reverse proxy site and service on the target.
package nginx

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// Proxy implements provisioning.ReverseProxy for a Debian-style nginx layout.
type Proxy struct {
	runner         runner.Runner
	sitesAvailable string
	sitesEnabled   string
}

// New returns a proxy adapter for the given sites directories.
func New(r runner.Runner, sitesAvailable, sitesEnabled string) *Proxy {
	return &Proxy{runner: r, sitesAvailable: sitesAvailable, sitesEnabled: sitesEnabled}
}

// SiteEnabled reports whether the enabled link for site exists.
func (p *Proxy) SiteEnabled(ctx context.Context, site string) (bool, error) {
	ok, err := p.runner.Exists(ctx, filepath.Join(p.sitesEnabled, site))
	if err != nil {
		return false, fmt.Errorf("failed to check site %s: %w", site, err)
	}
	return ok, nil
}

// EnableSite links the site definition into the enabled directory.
func (p *Proxy) EnableSite(ctx context.Context, site string) error {
	target := filepath.Join(p.sitesAvailable, site)
	ok, err := p.runner.Exists(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to check site %s: %w", site, err)
	}
	if !ok {
		return fmt.Errorf("site definition %s does not exist", target)
	}
	if err := p.runner.Symlink(ctx, target, filepath.Join(p.sitesEnabled, site)); err != nil {
		return fmt.Errorf("failed to enable site %s: %w", site, err)
	}
	return nil
}

// ValidateConfig runs the nginx syntax check over the whole configuration.
func (p *Proxy) ValidateConfig(ctx context.Context) error {
	if _, err := p.runner.Run(ctx, "nginx", "-t"); err != nil {
		return fmt.Errorf("nginx configuration test failed: %w", err)
	}
	return nil
}

// Reload makes nginx pick up the configuration, starting it when stopped.
func (p *Proxy) Reload(ctx context.Context) error {
	active, err := p.Active(ctx)
	if err != nil {
		return err
	}
	verb := "reload"
	if !active {
		verb = "start"
	}
	if _, err := p.runner.Run(ctx, "systemctl", verb, "nginx"); err != nil {
		return fmt.Errorf("failed to %s nginx: %w", verb, err)
	}
	return nil
}

// Active reports whether the nginx unit is running.
func (p *Proxy) Active(ctx context.Context) (bool, error) {
	out, err := p.runner.Run(ctx, "systemctl", "is-active", "nginx")
	state := strings.TrimSpace(out)
	if err == nil {
		return state == "active", nil
	}
	// is-active exits non-zero for every state but active
	if runner.ExitCode(err) > 0 {
		return false, nil
	}
	return false, fmt.Errorf("failed to query nginx state: %w", err)
}
