package provisioning

import (
	"context"
	"os"
)

// PackageManager installs OS packages.
// Implemented by internal/platform/apt.
type PackageManager interface {
	IsInstalled(ctx context.Context, name string) (bool, error)
	Install(ctx context.Context, names ...string) error
}

// Orchestrator manages the container network, volumes and the compose stack.
// Implemented by internal/platform/docker.
type Orchestrator interface {
	NetworkExists(ctx context.Context, name string) (bool, error)
	CreateNetwork(ctx context.Context, name string) error
	VolumeExists(ctx context.Context, name string) (bool, error)
	CreateVolume(ctx context.Context, name string) error

	// StackRunning reports whether every service of the project has a running container.
	StackRunning(ctx context.Context, project, descriptor string) (bool, error)

	// ApplyStack brings the project up from descriptor. Re-applying an
	// unchanged descriptor leaves running containers untouched.
	ApplyStack(ctx context.Context, project, descriptor string) error

	// RestartStack restarts every service of a running project, e.g. after a
	// bind-mounted config file changed.
	RestartStack(ctx context.Context, project, descriptor string) error
}

// FileSystem reads and writes files on the target.
// Implemented by internal/platform/runner.
type FileSystem interface {
	ReadFile(ctx context.Context, path string) ([]byte, error)
	WriteFile(ctx context.Context, path string, data []byte, perm os.FileMode) error
	MkdirAll(ctx context.Context, path string, perm os.FileMode) error
	Exists(ctx context.Context, path string) (bool, error)
	Symlink(ctx context.Context, target, link string) error
	Chown(ctx context.Context, path string, uid, gid int) error
}

// ReverseProxy manages the proxy site and service.
// Implemented by internal/platform/nginx.
type ReverseProxy interface {
	SiteEnabled(ctx context.Context, site string) (bool, error)
	EnableSite(ctx context.Context, site string) error
	ValidateConfig(ctx context.Context) error
	Reload(ctx context.Context) error
	Active(ctx context.Context) (bool, error)
}

// CertificateManager obtains TLS certificates.
// Implemented by internal/platform/certbot.
type CertificateManager interface {
	// Valid reports whether a certificate for domain exists and stays valid
	// for the configured renewal window.
	Valid(ctx context.Context, domain string) (bool, error)
	Issue(ctx context.Context, domain, email string) error

	// CertificatePaths returns the full chain and key file locations for domain.
	CertificatePaths(domain string) (fullchain, key string)

	// RemediationCommand is the exact command an operator runs to issue by hand.
	RemediationCommand(domain, email string) string
}

// Firewall manages host firewall rules.
// Implemented by internal/platform/ufw.
type Firewall interface {
	Allowed(ctx context.Context, rule string) (bool, error)
	Allow(ctx context.Context, rule string) error
	Active(ctx context.Context) (bool, error)
	Enable(ctx context.Context) error
}

// PrivilegeChecker verifies administrative privilege on the target.
// Implemented by internal/platform/host.
type PrivilegeChecker interface {
	CheckPrivilege(ctx context.Context) error
}

// Prober checks that a URL answers from the target's point of view.
// Implemented by internal/platform/host.
type Prober interface {
	Reachable(ctx context.Context, url string) error
}

// Host bundles the adapters for one target.
type Host struct {
	Packages     PackageManager
	Orchestrator Orchestrator
	Files        FileSystem
	Proxy        ReverseProxy
	Certificates CertificateManager
	Firewall     Firewall
	Privilege    PrivilegeChecker
	Prober       Prober
}
