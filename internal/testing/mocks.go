package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/imamik/erpdeploy/internal/provisioning"
)

var (
	_ provisioning.PackageManager     = (*MockPackageManager)(nil)
	_ provisioning.Orchestrator       = (*MockOrchestrator)(nil)
	_ provisioning.ReverseProxy       = (*MockReverseProxy)(nil)
	_ provisioning.CertificateManager = (*MockCertificateManager)(nil)
	_ provisioning.Firewall           = (*MockFirewall)(nil)
	_ provisioning.Prober             = (*MockProber)(nil)
)

// MockPackageManager is a mock implementation of provisioning.PackageManager.
type MockPackageManager struct {
	mock.Mock
}

// IsInstalled implements provisioning.PackageManager.
func (m *MockPackageManager) IsInstalled(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// Install implements provisioning.PackageManager.
func (m *MockPackageManager) Install(ctx context.Context, names ...string) error {
	args := m.Called(ctx, names)
	return args.Error(0)
}

// MockOrchestrator is a mock implementation of provisioning.Orchestrator.
type MockOrchestrator struct {
	mock.Mock
}

// NetworkExists implements provisioning.Orchestrator.
func (m *MockOrchestrator) NetworkExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// CreateNetwork implements provisioning.Orchestrator.
func (m *MockOrchestrator) CreateNetwork(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// VolumeExists implements provisioning.Orchestrator.
func (m *MockOrchestrator) VolumeExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// CreateVolume implements provisioning.Orchestrator.
func (m *MockOrchestrator) CreateVolume(ctx context.Context, name string) error {
	return m.Called(ctx, name).Error(0)
}

// StackRunning implements provisioning.Orchestrator.
func (m *MockOrchestrator) StackRunning(ctx context.Context, project, descriptor string) (bool, error) {
	args := m.Called(ctx, project, descriptor)
	return args.Bool(0), args.Error(1)
}

// ApplyStack implements provisioning.Orchestrator.
func (m *MockOrchestrator) ApplyStack(ctx context.Context, project, descriptor string) error {
	return m.Called(ctx, project, descriptor).Error(0)
}

// RestartStack implements provisioning.Orchestrator.
func (m *MockOrchestrator) RestartStack(ctx context.Context, project, descriptor string) error {
	return m.Called(ctx, project, descriptor).Error(0)
}

// MockReverseProxy is a mock implementation of provisioning.ReverseProxy.
type MockReverseProxy struct {
	mock.Mock
}

// SiteEnabled implements provisioning.ReverseProxy.
func (m *MockReverseProxy) SiteEnabled(ctx context.Context, site string) (bool, error) {
	args := m.Called(ctx, site)
	return args.Bool(0), args.Error(1)
}

// EnableSite implements provisioning.ReverseProxy.
func (m *MockReverseProxy) EnableSite(ctx context.Context, site string) error {
	return m.Called(ctx, site).Error(0)
}

// ValidateConfig implements provisioning.ReverseProxy.
func (m *MockReverseProxy) ValidateConfig(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Reload implements provisioning.ReverseProxy.
func (m *MockReverseProxy) Reload(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// Active implements provisioning.ReverseProxy.
func (m *MockReverseProxy) Active(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// MockCertificateManager is a mock implementation of provisioning.CertificateManager.
type MockCertificateManager struct {
	mock.Mock
}

// Valid implements provisioning.CertificateManager.
func (m *MockCertificateManager) Valid(ctx context.Context, domain string) (bool, error) {
	args := m.Called(ctx, domain)
	return args.Bool(0), args.Error(1)
}

// Issue implements provisioning.CertificateManager.
func (m *MockCertificateManager) Issue(ctx context.Context, domain, email string) error {
	return m.Called(ctx, domain, email).Error(0)
}

// CertificatePaths implements provisioning.CertificateManager.
func (m *MockCertificateManager) CertificatePaths(domain string) (string, string) {
	args := m.Called(domain)
	return args.String(0), args.String(1)
}

// RemediationCommand implements provisioning.CertificateManager.
func (m *MockCertificateManager) RemediationCommand(domain, email string) string {
	return m.Called(domain, email).String(0)
}

// MockFirewall is a mock implementation of provisioning.Firewall.
type MockFirewall struct {
	mock.Mock
}

// Allowed implements provisioning.Firewall.
func (m *MockFirewall) Allowed(ctx context.Context, rule string) (bool, error) {
	args := m.Called(ctx, rule)
	return args.Bool(0), args.Error(1)
}

// Allow implements provisioning.Firewall.
func (m *MockFirewall) Allow(ctx context.Context, rule string) error {
	return m.Called(ctx, rule).Error(0)
}

// Active implements provisioning.Firewall.
func (m *MockFirewall) Active(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

// Enable implements provisioning.Firewall.
func (m *MockFirewall) Enable(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockProber is a mock implementation of provisioning.Prober.
type MockProber struct {
	mock.Mock
}

// Reachable implements provisioning.Prober.
func (m *MockProber) Reachable(ctx context.Context, url string) error {
	return m.Called(ctx, url).Error(0)
}
