package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfig returns a configuration that passes validation.
func validConfig() *Config {
	return &Config{
		Domain:         "erp.example.com",
		Email:          "admin@example.com",
		MasterPassword: "master-secret",
		Root:           DefaultRoot,
		App: AppConfig{
			Image:           DefaultAppImage,
			Version:         DefaultAppVersion,
			Port:            DefaultAppPort,
			LongpollingPort: DefaultLongpollingPort,
		},
		Database: DatabaseConfig{
			Image:    DefaultDBImage,
			Version:  DefaultDBVersion,
			User:     DefaultDBUser,
			Password: "db-secret",
			Name:     DefaultDBName,
		},
		Network:  DefaultNetwork,
		Volumes:  VolumesConfig{Web: DefaultWebVolume, DB: DefaultDBVolume},
		Packages: DefaultPackages(),
		Proxy: ProxyConfig{
			Site:           DefaultSite,
			SitesAvailable: DefaultSitesAvailable,
			SitesEnabled:   DefaultSitesEnabled,
		},
		Firewall: FirewallConfig{Enabled: true, Rules: DefaultFirewallRules()},
		TLS:      TLSConfig{Enabled: true, RenewBefore: DefaultRenewBefore},
		Target:   TargetConfig{Port: DefaultSSHPort, User: DefaultSSHUser},
		Log:      LogConfig{Format: DefaultLogFormat},
	}
}

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()
	require.NoError(t, validConfig().Validate())
}

func TestValidate_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"missing domain", func(c *Config) { c.Domain = "" }, "domain is required"},
		{"bare host name", func(c *Config) { c.Domain = "localhost" }, "invalid domain"},
		{"domain with scheme", func(c *Config) { c.Domain = "https://erp.example.com" }, "invalid domain"},
		{"missing email with tls", func(c *Config) { c.Email = "" }, "email is required"},
		{"malformed email", func(c *Config) { c.Email = "not-an-email" }, "invalid email"},
		{"display name email", func(c *Config) { c.Email = "Admin <admin@example.com>" }, "invalid email"},
		{"missing master password", func(c *Config) { c.MasterPassword = "" }, "master_password is required"},
		{"missing db password", func(c *Config) { c.Database.Password = "" }, "database.password is required"},
		{"missing db user", func(c *Config) { c.Database.User = "" }, "database.user is required"},
		{"missing app version", func(c *Config) { c.App.Version = "" }, "app.version is required"},
		{"relative root", func(c *Config) { c.Root = "odoo" }, "root must be an absolute path"},
		{"filesystem root", func(c *Config) { c.Root = "/" }, "must not be the filesystem root"},
		{"port out of range", func(c *Config) { c.App.Port = 70000 }, "app.port must be between"},
		{"same ports", func(c *Config) { c.App.LongpollingPort = c.App.Port }, "must differ"},
		{"negative workers", func(c *Config) { c.App.Workers = -1 }, "app.workers"},
		{"invalid network name", func(c *Config) { c.Network = "odoo net" }, "invalid network"},
		{"same volumes", func(c *Config) { c.Volumes.DB = c.Volumes.Web }, "volumes.web and volumes.db must differ"},
		{"no packages", func(c *Config) { c.Packages = nil }, "packages must not be empty"},
		{"no firewall rules", func(c *Config) { c.Firewall.Rules = nil }, "firewall.rules must not be empty"},
		{"ssh rule not first", func(c *Config) { c.Firewall.Rules = []string{RuleWeb, RuleSSH} }, "must start with"},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }, "invalid log format"},
		{"s3 without region", func(c *Config) { c.Report.S3.Bucket = "reports" }, "report.s3.region"},
		{"remote bad port", func(c *Config) { c.Target.Host = "10.0.0.5"; c.Target.Port = 0 }, "target.port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidate_OptionalSettings(t *testing.T) {
	t.Parallel()

	t.Run("email optional without tls", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.TLS.Enabled = false
		cfg.Email = ""
		assert.NoError(t, cfg.Validate())
	})

	t.Run("firewall rules ignored when disabled", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Firewall = FirewallConfig{Enabled: false}
		assert.NoError(t, cfg.Validate())
	})

	t.Run("local target ignores port", func(t *testing.T) {
		t.Parallel()
		cfg := validConfig()
		cfg.Target.Port = 0
		assert.NoError(t, cfg.Validate())
	})
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.Domain = ""
	cfg.MasterPassword = ""
	cfg.Log.Format = "xml"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "domain is required")
	assert.Contains(t, err.Error(), "master_password is required")
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestConfigPaths(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.Equal(t, "/opt/odoo/config", cfg.ConfigDir())
	assert.Equal(t, "/opt/odoo/addons", cfg.AddonsDir())
	assert.Equal(t, "/opt/odoo/config/odoo.conf", cfg.ServiceConfigPath())
	assert.Equal(t, "/opt/odoo/docker-compose.yml", cfg.StackDescriptorPath())
	assert.Equal(t, "/etc/nginx/sites-available/odoo", cfg.SiteAvailablePath())
	assert.Equal(t, "/etc/nginx/sites-enabled/odoo", cfg.SiteEnabledPath())
	assert.Equal(t, "odoo", cfg.StackName())
	assert.Equal(t, []string{"/opt/odoo", "/opt/odoo/config", "/opt/odoo/addons"}, cfg.Directories())
	assert.Equal(t, "odoo:17.0", cfg.App.ImageRef())
	assert.Equal(t, "postgres:16", cfg.Database.ImageRef())
	assert.Equal(t, []string{"odoo-web-data", "odoo-db-data"}, cfg.Volumes.Names())
}

func TestStackName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		root string
		want string
	}{
		{"/opt/odoo", "odoo"},
		{"/srv/My ERP", "my-erp"},
		{"/srv/.hidden", "hidden"},
		{"/srv/_", "erpdeploy"},
	}
	for _, tt := range tests {
		cfg := &Config{Root: tt.root}
		assert.Equal(t, tt.want, cfg.StackName(), tt.root)
	}
}
