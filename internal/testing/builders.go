package testing

import (
	"slices"

	"github.com/imamik/erpdeploy/internal/config"
)

// ConfigBuilder provides a fluent interface for constructing test configs.
// Each method returns a new builder (immutable) for chaining.
type ConfigBuilder struct {
	cfg config.Config
}

// NewConfigBuilder creates a builder seeded with ScenarioConfig.
func NewConfigBuilder() *ConfigBuilder {
	return &ConfigBuilder{cfg: *ScenarioConfig()}
}

// WithDomain sets the public domain.
func (b *ConfigBuilder) WithDomain(domain string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Domain = domain
	return newBuilder
}

// WithEmail sets the certificate contact.
func (b *ConfigBuilder) WithEmail(email string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Email = email
	return newBuilder
}

// WithRoot sets the deployment root.
func (b *ConfigBuilder) WithRoot(root string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Root = root
	return newBuilder
}

// WithCredentials sets the master password and database credentials.
func (b *ConfigBuilder) WithCredentials(master, dbUser, dbPassword string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.MasterPassword = master
	newBuilder.cfg.Database.User = dbUser
	newBuilder.cfg.Database.Password = dbPassword
	return newBuilder
}

// WithAppVersion sets the application image tag.
func (b *ConfigBuilder) WithAppVersion(version string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.App.Version = version
	return newBuilder
}

// WithTLS enables or disables certificate issuance.
func (b *ConfigBuilder) WithTLS(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.TLS.Enabled = enabled
	return newBuilder
}

// WithFirewall enables or disables the firewall steps.
func (b *ConfigBuilder) WithFirewall(enabled bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Firewall.Enabled = enabled
	return newBuilder
}

// WithFirewallRules replaces the firewall allow rules.
func (b *ConfigBuilder) WithFirewallRules(rules ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Firewall.Rules = rules
	return newBuilder
}

// WithPackages replaces the OS package list.
func (b *ConfigBuilder) WithPackages(packages ...string) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Packages = packages
	return newBuilder
}

// WithTarget points the config at a remote host.
func (b *ConfigBuilder) WithTarget(host string, sudo bool) *ConfigBuilder {
	newBuilder := b.clone()
	newBuilder.cfg.Target.Host = host
	newBuilder.cfg.Target.Sudo = sudo
	return newBuilder
}

// Build returns a copy of the built config.
func (b *ConfigBuilder) Build() *config.Config {
	return &b.clone().cfg
}

// clone creates a deep copy of the builder.
func (b *ConfigBuilder) clone() *ConfigBuilder {
	newCfg := b.cfg
	newCfg.Packages = slices.Clone(b.cfg.Packages)
	newCfg.Firewall.Rules = slices.Clone(b.cfg.Firewall.Rules)
	return &ConfigBuilder{cfg: newCfg}
}
