package testing

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/platform/runner"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

// Operations recorded by FakeHost and accepted by FailOn.
const (
	OpInstall        = "Install"
	OpCreateNetwork  = "CreateNetwork"
	OpCreateVolume   = "CreateVolume"
	OpApplyStack     = "ApplyStack"
	OpRestartStack   = "RestartStack"
	OpEnableSite     = "EnableSite"
	OpValidateConfig = "ValidateConfig"
	OpReload         = "Reload"
	OpIssue          = "Issue"
	OpAllow          = "Allow"
	OpEnableFirewall = "EnableFirewall"
	OpCheckPrivilege = "CheckPrivilege"
)

// FakeLiveDir is where the fake certificate manager keeps certificates.
const FakeLiveDir = "/etc/letsencrypt/live"

// FakeHost is an in-memory host implementing every provisioning adapter.
// Files live in the embedded FakeRunner. Mutating operations are logged in
// order and can be made to fail with FailOn.
type FakeHost struct {
	*FakeRunner

	mu             sync.Mutex
	packages       map[string]bool
	networks       map[string]bool
	volumes        map[string]bool
	stacks         map[string]bool
	proxyActive    bool
	rules          []string
	firewallActive bool
	failures       map[string]error
	operations     []string

	sitesAvailable string
	sitesEnabled   string

	// NotRoot makes the privilege check fail.
	NotRoot bool
	// Unreachable makes every probe fail even when the stack runs.
	Unreachable bool
	// RejectSite, when set, is consulted for every enabled site during
	// ValidateConfig, like nginx -t refusing a directive.
	RejectSite func(content []byte) error
	// ToolError, when set, is returned by every orchestrator and firewall
	// state query, like a docker or ufw CLI that is not installed yet.
	ToolError error
}

// NewFakeHost returns an empty host using the default nginx layout.
func NewFakeHost() *FakeHost {
	return &FakeHost{
		FakeRunner:     NewFakeRunner(),
		packages:       make(map[string]bool),
		networks:       make(map[string]bool),
		volumes:        make(map[string]bool),
		stacks:         make(map[string]bool),
		failures:       make(map[string]error),
		sitesAvailable: config.DefaultSitesAvailable,
		sitesEnabled:   config.DefaultSitesEnabled,
	}
}

// FailOn makes every later call of op return err. A nil err clears the failure.
func (h *FakeHost) FailOn(op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err == nil {
		delete(h.failures, op)
		return
	}
	h.failures[op] = err
}

// Operations returns the mutating operations performed so far, e.g.
// "Install nginx ufw" or "CreateNetwork odoo-net".
func (h *FakeHost) Operations() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.operations)
}

// OperationIndex returns the position of the first operation starting with
// prefix, or -1.
func (h *FakeHost) OperationIndex(prefix string) int {
	for i, op := range h.Operations() {
		if strings.HasPrefix(op, prefix) {
			return i
		}
	}
	return -1
}

// Host bundles the fake adapters.
func (h *FakeHost) Host() *provisioning.Host {
	return &provisioning.Host{
		Packages:     fakePackages{h},
		Orchestrator: fakeOrchestrator{h},
		Files:        h.FakeRunner,
		Proxy:        fakeProxy{h},
		Certificates: fakeCertificates{h},
		Firewall:     fakeFirewall{h},
		Privilege:    fakePrivilege{h},
		Prober:       fakeProber{h},
	}
}

// StackRunning reports whether project was applied.
func (h *FakeHost) StackRunning(project string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.stacks[project]
}

// StopStack simulates containers going down.
func (h *FakeHost) StopStack(project string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.stacks, project)
}

// FirewallRules returns the allow rules in insertion order.
func (h *FakeHost) FirewallRules() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return slices.Clone(h.rules)
}

// FirewallActive reports whether the firewall was enabled.
func (h *FakeHost) FirewallActive() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.firewallActive
}

// perform logs op and returns the injected failure for it, if any.
func (h *FakeHost) perform(op string, args ...string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.failures[op]; err != nil {
		return err
	}
	h.operations = append(h.operations, strings.TrimSpace(op+" "+strings.Join(args, " ")))
	return nil
}

type fakePackages struct{ h *FakeHost }

func (f fakePackages) IsInstalled(_ context.Context, name string) (bool, error) {
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return f.h.packages[name], nil
}

func (f fakePackages) Install(ctx context.Context, names ...string) error {
	if err := f.h.perform(OpInstall, names...); err != nil {
		return err
	}
	f.h.mu.Lock()
	for _, name := range names {
		f.h.packages[name] = true
	}
	f.h.mu.Unlock()
	if slices.Contains(names, "nginx") {
		_ = f.h.MkdirAll(ctx, f.h.sitesAvailable, 0755)
		_ = f.h.MkdirAll(ctx, f.h.sitesEnabled, 0755)
	}
	return nil
}

type fakeOrchestrator struct{ h *FakeHost }

func (f fakeOrchestrator) NetworkExists(_ context.Context, name string) (bool, error) {
	if f.h.ToolError != nil {
		return false, f.h.ToolError
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return f.h.networks[name], nil
}

func (f fakeOrchestrator) CreateNetwork(_ context.Context, name string) error {
	if err := f.h.perform(OpCreateNetwork, name); err != nil {
		return err
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	f.h.networks[name] = true
	return nil
}

func (f fakeOrchestrator) VolumeExists(_ context.Context, name string) (bool, error) {
	if f.h.ToolError != nil {
		return false, f.h.ToolError
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return f.h.volumes[name], nil
}

func (f fakeOrchestrator) CreateVolume(_ context.Context, name string) error {
	if err := f.h.perform(OpCreateVolume, name); err != nil {
		return err
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	f.h.volumes[name] = true
	return nil
}

func (f fakeOrchestrator) StackRunning(_ context.Context, project, _ string) (bool, error) {
	if f.h.ToolError != nil {
		return false, f.h.ToolError
	}
	return f.h.StackRunning(project), nil
}

func (f fakeOrchestrator) ApplyStack(ctx context.Context, project, descriptor string) error {
	ok, _ := f.h.Exists(ctx, descriptor)
	if !ok {
		return fmt.Errorf("descriptor %s not found", descriptor)
	}
	if err := f.h.perform(OpApplyStack, project); err != nil {
		return err
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	f.h.stacks[project] = true
	return nil
}

func (f fakeOrchestrator) RestartStack(_ context.Context, project, _ string) error {
	if !f.h.StackRunning(project) {
		return fmt.Errorf("project %s is not running", project)
	}
	return f.h.perform(OpRestartStack, project)
}

type fakeProxy struct{ h *FakeHost }

func (f fakeProxy) SiteEnabled(ctx context.Context, site string) (bool, error) {
	return f.h.Exists(ctx, filepath.Join(f.h.sitesEnabled, site))
}

func (f fakeProxy) EnableSite(ctx context.Context, site string) error {
	target := filepath.Join(f.h.sitesAvailable, site)
	if ok, _ := f.h.Exists(ctx, target); !ok {
		return fmt.Errorf("site definition %s does not exist", target)
	}
	if err := f.h.perform(OpEnableSite, site); err != nil {
		return err
	}
	return f.h.Symlink(ctx, target, filepath.Join(f.h.sitesEnabled, site))
}

// ValidateConfig fails when an enabled link dangles, a site is empty or
// RejectSite refuses it.
func (f fakeProxy) ValidateConfig(ctx context.Context) error {
	if err := f.h.perform(OpValidateConfig); err != nil {
		return err
	}
	f.h.FakeRunner.mu.Lock()
	links := make(map[string]string, len(f.h.Links))
	for link, target := range f.h.Links {
		links[link] = target
	}
	f.h.FakeRunner.mu.Unlock()
	for link, target := range links {
		if !strings.HasPrefix(link, f.h.sitesEnabled+"/") {
			continue
		}
		data, err := f.h.ReadFile(ctx, target)
		if err != nil {
			return fmt.Errorf("nginx: open() %q failed", target)
		}
		if len(data) == 0 {
			return fmt.Errorf("nginx: empty site %s", target)
		}
		if f.h.RejectSite != nil {
			if err := f.h.RejectSite(data); err != nil {
				return err
			}
		}
	}
	return nil
}

func (f fakeProxy) Reload(_ context.Context) error {
	if err := f.h.perform(OpReload); err != nil {
		return err
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	f.h.proxyActive = true
	return nil
}

func (f fakeProxy) Active(_ context.Context) (bool, error) {
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return f.h.proxyActive, nil
}

type fakeCertificates struct{ h *FakeHost }

func (f fakeCertificates) CertificatePaths(domain string) (string, string) {
	dir := filepath.Join(FakeLiveDir, domain)
	return filepath.Join(dir, "fullchain.pem"), filepath.Join(dir, "privkey.pem")
}

func (f fakeCertificates) Valid(ctx context.Context, domain string) (bool, error) {
	chain, _ := f.CertificatePaths(domain)
	return f.h.Exists(ctx, chain)
}

// Issue needs a running proxy with an enabled site to answer the challenge.
func (f fakeCertificates) Issue(ctx context.Context, domain, email string) error {
	active, _ := fakeProxy(f).Active(ctx)
	if !active {
		return errors.New("challenge failed: nginx is not running")
	}
	if err := f.h.perform(OpIssue, domain, email); err != nil {
		return err
	}
	chain, key := f.CertificatePaths(domain)
	f.h.FakeRunner.mu.Lock()
	defer f.h.FakeRunner.mu.Unlock()
	f.h.Files[chain] = []byte("certificate for " + domain)
	f.h.Files[key] = []byte("key for " + domain)
	return nil
}

func (f fakeCertificates) RemediationCommand(domain, email string) string {
	return runner.CommandLine("certbot", "certonly", "--nginx", "-m", email, "-d", domain)
}

type fakeFirewall struct{ h *FakeHost }

func (f fakeFirewall) Allowed(_ context.Context, rule string) (bool, error) {
	if f.h.ToolError != nil {
		return false, f.h.ToolError
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return slices.Contains(f.h.rules, rule), nil
}

func (f fakeFirewall) Allow(_ context.Context, rule string) error {
	if err := f.h.perform(OpAllow, rule); err != nil {
		return err
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	if !slices.Contains(f.h.rules, rule) {
		f.h.rules = append(f.h.rules, rule)
	}
	return nil
}

func (f fakeFirewall) Active(_ context.Context) (bool, error) {
	if f.h.ToolError != nil {
		return false, f.h.ToolError
	}
	return f.h.FirewallActive(), nil
}

func (f fakeFirewall) Enable(_ context.Context) error {
	if err := f.h.perform(OpEnableFirewall); err != nil {
		return err
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	f.h.firewallActive = true
	return nil
}

type fakePrivilege struct{ h *FakeHost }

func (f fakePrivilege) CheckPrivilege(_ context.Context) error {
	if f.h.NotRoot {
		return errors.New("uid 1000 is not root")
	}
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	return f.h.failures[OpCheckPrivilege]
}

type fakeProber struct{ h *FakeHost }

// Reachable succeeds once any stack runs.
func (f fakeProber) Reachable(_ context.Context, url string) error {
	f.h.mu.Lock()
	defer f.h.mu.Unlock()
	if f.h.Unreachable || len(f.h.stacks) == 0 {
		return fmt.Errorf("%s is not reachable", url)
	}
	return nil
}
