package config

import (
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Config is the deployment description for a single host.
// It is produced once by Load and must be treated as read-only afterwards.
type Config struct {
	// Domain is the public host name the reverse proxy serves and the certificate covers.
	Domain string `mapstructure:"domain" yaml:"domain"`

	// Email is the contact address registered with the certificate authority.
	Email string `mapstructure:"email" yaml:"email"`

	// MasterPassword is the application's database-manager password.
	// It is written to the service config in plaintext.
	MasterPassword string `mapstructure:"master_password" yaml:"master_password"`

	// Root is the deployment directory holding config, descriptor and addons.
	Root string `mapstructure:"root" yaml:"root"`

	App      AppConfig      `mapstructure:"app" yaml:"app"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Network is the name of the isolated container network.
	Network string `mapstructure:"network" yaml:"network"`

	Volumes  VolumesConfig  `mapstructure:"volumes" yaml:"volumes"`
	Packages []string       `mapstructure:"packages" yaml:"packages"`
	Proxy    ProxyConfig    `mapstructure:"proxy" yaml:"proxy"`
	Firewall FirewallConfig `mapstructure:"firewall" yaml:"firewall"`
	TLS      TLSConfig      `mapstructure:"tls" yaml:"tls"`
	Target   TargetConfig   `mapstructure:"target" yaml:"target"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Report   ReportConfig   `mapstructure:"report" yaml:"report"`
}

// AppConfig describes the application container.
type AppConfig struct {
	Image           string `mapstructure:"image" yaml:"image"`
	Version         string `mapstructure:"version" yaml:"version"`
	Port            int    `mapstructure:"port" yaml:"port"`
	LongpollingPort int    `mapstructure:"longpolling_port" yaml:"longpolling_port"`
	Workers         int    `mapstructure:"workers" yaml:"workers"`

	// ListDB exposes the web database manager, needed to create the first database.
	ListDB bool `mapstructure:"list_db" yaml:"list_db"`
}

// ImageRef returns the image reference including the version tag.
func (a AppConfig) ImageRef() string {
	return a.Image + ":" + a.Version
}

// DatabaseConfig describes the database container and its credentials.
type DatabaseConfig struct {
	Image    string `mapstructure:"image" yaml:"image"`
	Version  string `mapstructure:"version" yaml:"version"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"password"`
	Name     string `mapstructure:"name" yaml:"name"`
}

// ImageRef returns the image reference including the version tag.
func (d DatabaseConfig) ImageRef() string {
	return d.Image + ":" + d.Version
}

// VolumesConfig names the persistent volumes of the stack.
type VolumesConfig struct {
	Web string `mapstructure:"web" yaml:"web"`
	DB  string `mapstructure:"db" yaml:"db"`
}

// Names returns the volume names in creation order.
func (v VolumesConfig) Names() []string {
	return []string{v.Web, v.DB}
}

// ProxyConfig locates the reverse proxy site definition.
type ProxyConfig struct {
	Site           string `mapstructure:"site" yaml:"site"`
	SitesAvailable string `mapstructure:"sites_available" yaml:"sites_available"`
	SitesEnabled   string `mapstructure:"sites_enabled" yaml:"sites_enabled"`
}

// FirewallConfig lists the allow rules applied before the proxy goes live.
// Rules are applied in order; the SSH rule must come first.
type FirewallConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Rules   []string `mapstructure:"rules" yaml:"rules"`
}

// TLSConfig controls certificate issuance.
type TLSConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Staging issues against the CA's staging environment.
	Staging bool `mapstructure:"staging" yaml:"staging"`

	// RenewBefore is the remaining validity under which a certificate counts as missing.
	RenewBefore time.Duration `mapstructure:"renew_before" yaml:"renew_before"`
}

// TargetConfig selects the host to provision. An empty Host means the local machine.
type TargetConfig struct {
	Host    string `mapstructure:"host" yaml:"host,omitempty"`
	Port    int    `mapstructure:"port" yaml:"port,omitempty"`
	User    string `mapstructure:"user" yaml:"user,omitempty"`
	KeyFile string `mapstructure:"key_file" yaml:"key_file,omitempty"`

	// KnownHosts enables host key verification against an OpenSSH known_hosts file.
	KnownHosts string `mapstructure:"known_hosts" yaml:"known_hosts,omitempty"`

	// Sudo runs every remote command through "sudo -n".
	Sudo bool `mapstructure:"sudo" yaml:"sudo,omitempty"`
}

// IsRemote reports whether the target is reached over SSH.
func (t TargetConfig) IsRemote() bool {
	return t.Host != ""
}

// LogConfig controls operator-facing output.
type LogConfig struct {
	Format  string `mapstructure:"format" yaml:"format"`
	Verbose bool   `mapstructure:"verbose" yaml:"verbose,omitempty"`
}

// ReportConfig controls where the run report is persisted.
type ReportConfig struct {
	JSONFile    string   `mapstructure:"json_file" yaml:"json_file,omitempty"`
	MetricsFile string   `mapstructure:"metrics_file" yaml:"metrics_file,omitempty"`
	S3          S3Config `mapstructure:"s3" yaml:"s3,omitempty"`
}

// S3Config points at an S3-compatible bucket that receives the JSON report.
type S3Config struct {
	Bucket    string `mapstructure:"bucket" yaml:"bucket,omitempty"`
	Prefix    string `mapstructure:"prefix" yaml:"prefix,omitempty"`
	Endpoint  string `mapstructure:"endpoint" yaml:"endpoint,omitempty"`
	Region    string `mapstructure:"region" yaml:"region,omitempty"`
	PathStyle bool   `mapstructure:"path_style" yaml:"path_style,omitempty"`
	AccessKey string `mapstructure:"access_key" yaml:"-"`
	SecretKey string `mapstructure:"secret_key" yaml:"-"`
}

// Enabled reports whether a report bucket is configured.
func (s S3Config) Enabled() bool {
	return s.Bucket != ""
}

// ConfigDir is the directory holding the rendered service config.
func (c *Config) ConfigDir() string {
	return filepath.Join(c.Root, "config")
}

// AddonsDir is the extension mount point.
func (c *Config) AddonsDir() string {
	return filepath.Join(c.Root, "addons")
}

// ServiceConfigPath is the rendered application config file.
func (c *Config) ServiceConfigPath() string {
	return filepath.Join(c.ConfigDir(), ServiceConfigFile)
}

// StackDescriptorPath is the rendered compose descriptor.
func (c *Config) StackDescriptorPath() string {
	return filepath.Join(c.Root, StackDescriptorFile)
}

// SiteAvailablePath is the proxy site definition file.
func (c *Config) SiteAvailablePath() string {
	return filepath.Join(c.Proxy.SitesAvailable, c.Proxy.Site)
}

// SiteEnabledPath is the link that activates the proxy site.
func (c *Config) SiteEnabledPath() string {
	return filepath.Join(c.Proxy.SitesEnabled, c.Proxy.Site)
}

var invalidProjectChars = regexp.MustCompile(`[^a-z0-9_-]+`)

// StackName is the compose project name, derived from the deployment root.
func (c *Config) StackName() string {
	name := invalidProjectChars.ReplaceAllString(strings.ToLower(filepath.Base(c.Root)), "-")
	name = strings.TrimLeft(name, "-_")
	if name == "" {
		return "erpdeploy"
	}
	return name
}

// Directories returns the deployment directories in creation order.
func (c *Config) Directories() []string {
	return []string{c.Root, c.ConfigDir(), c.AddonsDir()}
}
