package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `domain: erp.example.com
email: admin@example.com
master_password: from-file
database:
  password: db-from-file
`

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "erpdeploy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// testFlags mirrors the flags registered by the apply command.
func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("domain", "", "")
	fs.String("email", "", "")
	fs.String("master-password", "", "")
	fs.String("db-password", "", "")
	fs.Bool("firewall", true, "")
	fs.Bool("tls", true, "")
	fs.String("host", "", "")
	fs.Int("port", DefaultSSHPort, "")
	fs.Bool("sudo", false, "")
	fs.String("log-format", DefaultLogFormat, "")
	return fs
}

func TestLoad_FileAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "erp.example.com", cfg.Domain)
	assert.Equal(t, "from-file", cfg.MasterPassword)
	assert.Equal(t, DefaultRoot, cfg.Root)
	assert.Equal(t, DefaultAppVersion, cfg.App.Version)
	assert.Equal(t, DefaultAppPort, cfg.App.Port)
	assert.True(t, cfg.App.ListDB)
	assert.Equal(t, DefaultDBUser, cfg.Database.User)
	assert.Equal(t, DefaultPackages(), cfg.Packages)
	assert.Equal(t, DefaultFirewallRules(), cfg.Firewall.Rules)
	assert.True(t, cfg.Firewall.Enabled)
	assert.True(t, cfg.TLS.Enabled)
	assert.Equal(t, DefaultRenewBefore, cfg.TLS.RenewBefore)
	assert.False(t, cfg.Target.IsRemote())
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, minimalYAML+`root: /srv/erp
app:
  version: "16.0"
  workers: 4
tls:
  renew_before: 240h
firewall:
  enabled: false
`)

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "/srv/erp", cfg.Root)
	assert.Equal(t, "erp", cfg.StackName())
	assert.Equal(t, "16.0", cfg.App.Version)
	assert.Equal(t, 4, cfg.App.Workers)
	assert.Equal(t, 240*time.Hour, cfg.TLS.RenewBefore)
	assert.False(t, cfg.Firewall.Enabled)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)
	t.Setenv("ERPDEPLOY_MASTER_PASSWORD", "from-env")
	t.Setenv("ERPDEPLOY_APP_VERSION", "18.0")

	cfg, err := Load(LoadOptions{Path: path})
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.MasterPassword)
	assert.Equal(t, "18.0", cfg.App.Version)
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("ERPDEPLOY_DOMAIN", "erp.example.org")
	t.Setenv("ERPDEPLOY_EMAIL", "ops@example.org")
	t.Setenv("ERPDEPLOY_MASTER_PASSWORD", "m")
	t.Setenv("ERPDEPLOY_DATABASE_PASSWORD", "d")

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "erp.example.org", cfg.Domain)
	assert.Equal(t, "d", cfg.Database.Password)
}

func TestLoad_FlagsOverrideEnv(t *testing.T) {
	path := writeConfigFile(t, minimalYAML)
	t.Setenv("ERPDEPLOY_DOMAIN", "env.example.com")

	fs := testFlags()
	require.NoError(t, fs.Parse([]string{"--domain", "flag.example.com", "--firewall=false", "--host", "10.0.0.5", "--sudo"}))

	cfg, err := Load(LoadOptions{Path: path, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "flag.example.com", cfg.Domain)
	assert.False(t, cfg.Firewall.Enabled)
	assert.True(t, cfg.Target.IsRemote())
	assert.True(t, cfg.Target.Sudo)
	assert.Equal(t, DefaultSSHPort, cfg.Target.Port)
}

func TestLoad_UnsetFlagsKeepFileValues(t *testing.T) {
	path := writeConfigFile(t, minimalYAML+"firewall:\n  enabled: false\n")

	fs := testFlags()
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(LoadOptions{Path: path, Flags: fs})
	require.NoError(t, err)

	assert.Equal(t, "erp.example.com", cfg.Domain)
	assert.False(t, cfg.Firewall.Enabled)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(LoadOptions{Path: filepath.Join(t.TempDir(), "missing.yaml")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "domain: [unclosed\n")

	_, err := Load(LoadOptions{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_ValidationFailure(t *testing.T) {
	t.Setenv("ERPDEPLOY_MASTER_PASSWORD", "")
	path := writeConfigFile(t, "domain: erp.example.com\nemail: admin@example.com\n")

	_, err := Load(LoadOptions{Path: path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration validation failed")
	assert.Contains(t, err.Error(), "master_password is required")
}

func TestLoad_DefaultFileInWorkingDirectory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultConfigFile), []byte(minimalYAML), 0600))
	t.Chdir(dir)

	cfg, err := Load(LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, "erp.example.com", cfg.Domain)
}
