// Package certbot obtains TLS certificates with certbot's nginx authenticator.
package certbot

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// DefaultLiveDir is where certbot keeps the current certificate of each lineage.
const DefaultLiveDir = "/etc/letsencrypt/live"

// DefaultRenewBefore matches certbot's own renewal window.
const DefaultRenewBefore = 30 * 24 * time.Hour

// Options configures the certificate manager.
type Options struct {
	// Staging requests certificates from the CA's staging environment.
	Staging bool

	// RenewBefore is the remaining validity below which Valid reports false.
	RenewBefore time.Duration

	// LiveDir overrides DefaultLiveDir.
	LiveDir string
}

// Manager implements provisioning.CertificateManager.
type Manager struct {
	runner      runner.Runner
	staging     bool
	renewBefore time.Duration
	liveDir     string
}

// New returns a certificate manager running on r.
func New(r runner.Runner, opts Options) *Manager {
	if opts.RenewBefore <= 0 {
		opts.RenewBefore = DefaultRenewBefore
	}
	if opts.LiveDir == "" {
		opts.LiveDir = DefaultLiveDir
	}
	return &Manager{
		runner:      r,
		staging:     opts.Staging,
		renewBefore: opts.RenewBefore,
		liveDir:     opts.LiveDir,
	}
}

// CertificatePaths returns the full chain and private key of domain's lineage.
func (m *Manager) CertificatePaths(domain string) (fullchain, key string) {
	dir := filepath.Join(m.liveDir, domain)
	return filepath.Join(dir, "fullchain.pem"), filepath.Join(dir, "privkey.pem")
}

// Valid reports whether domain has a certificate that outlives the renewal window.
func (m *Manager) Valid(ctx context.Context, domain string) (bool, error) {
	fullchain, _ := m.CertificatePaths(domain)
	ok, err := m.runner.Exists(ctx, fullchain)
	if err != nil {
		return false, fmt.Errorf("failed to check certificate for %s: %w", domain, err)
	}
	if !ok {
		return false, nil
	}

	seconds := strconv.FormatInt(int64(m.renewBefore/time.Second), 10)
	_, err = m.runner.Run(ctx, "openssl", "x509", "-checkend", seconds, "-noout", "-in", fullchain)
	if err == nil {
		return true, nil
	}
	// checkend exits 1 when the certificate expires within the window
	if runner.ExitCode(err) == 1 {
		return false, nil
	}
	return false, fmt.Errorf("failed to read certificate %s: %w", fullchain, err)
}

// Issue requests a certificate for domain, answering the HTTP challenge
// through the running nginx site. certbot leaves a certificate that is not
// yet due for renewal in place.
func (m *Manager) Issue(ctx context.Context, domain, email string) error {
	if _, err := m.runner.Run(ctx, "certbot", m.issueArgs(domain, email)...); err != nil {
		return fmt.Errorf("certbot failed for %s: %w", domain, err)
	}
	return nil
}

// RemediationCommand returns the certbot invocation Issue runs.
func (m *Manager) RemediationCommand(domain, email string) string {
	return runner.CommandLine("certbot", m.issueArgs(domain, email)...)
}

func (m *Manager) issueArgs(domain, email string) []string {
	args := []string{
		"certonly", "--nginx",
		"--non-interactive", "--agree-tos",
		"--keep-until-expiring",
		"-m", email,
		"-d", domain,
	}
	if m.staging {
		args = append(args, "--staging")
	}
	return args
}
