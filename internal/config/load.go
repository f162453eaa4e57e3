package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// FlagBindings maps config keys to the command-line flags that override them.
var FlagBindings = map[string]string{
	"domain":              "domain",
	"email":               "email",
	"master_password":     "master-password",
	"root":                "root",
	"app.version":         "app-version",
	"database.user":       "db-user",
	"database.password":   "db-password",
	"firewall.enabled":    "firewall",
	"tls.enabled":         "tls",
	"tls.staging":         "staging",
	"target.host":         "host",
	"target.port":         "port",
	"target.user":         "user",
	"target.key_file":     "identity",
	"target.sudo":         "sudo",
	"log.format":          "log-format",
	"log.verbose":         "verbose",
	"report.json_file":    "report-json",
	"report.metrics_file": "metrics-file",
}

// LoadOptions selects the sources merged by Load.
type LoadOptions struct {
	// Path is an explicit config file. When empty, DefaultConfigFile is used if present.
	Path string

	// Flags are bound according to FlagBindings. Unset flags do not override other sources.
	Flags *pflag.FlagSet
}

// Load merges defaults, the config file, ERPDEPLOY_* environment variables and
// flags (in increasing precedence) and validates the result.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	path, err := resolveConfigPath(opts.Path)
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind environment for %s: %w", key, err)
		}
	}

	if opts.Flags != nil {
		if err := bindFlags(v, opts.Flags); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("root", DefaultRoot)
	v.SetDefault("app.image", DefaultAppImage)
	v.SetDefault("app.version", DefaultAppVersion)
	v.SetDefault("app.port", DefaultAppPort)
	v.SetDefault("app.longpolling_port", DefaultLongpollingPort)
	v.SetDefault("app.workers", 0)
	v.SetDefault("database.image", DefaultDBImage)
	v.SetDefault("database.version", DefaultDBVersion)
	v.SetDefault("database.user", DefaultDBUser)
	v.SetDefault("database.name", DefaultDBName)
	v.SetDefault("app.list_db", true)
	v.SetDefault("network", DefaultNetwork)
	v.SetDefault("volumes.web", DefaultWebVolume)
	v.SetDefault("volumes.db", DefaultDBVolume)
	v.SetDefault("packages", DefaultPackages())
	v.SetDefault("proxy.site", DefaultSite)
	v.SetDefault("proxy.sites_available", DefaultSitesAvailable)
	v.SetDefault("proxy.sites_enabled", DefaultSitesEnabled)
	v.SetDefault("firewall.enabled", true)
	v.SetDefault("firewall.rules", DefaultFirewallRules())
	v.SetDefault("tls.enabled", true)
	v.SetDefault("tls.staging", false)
	v.SetDefault("tls.renew_before", DefaultRenewBefore)
	v.SetDefault("target.port", DefaultSSHPort)
	v.SetDefault("target.user", DefaultSSHUser)
	v.SetDefault("log.format", DefaultLogFormat)
}

// envOnlyKeys have no default, so AutomaticEnv alone would not surface them on Unmarshal.
var envOnlyKeys = []string{
	"domain", "email", "master_password", "database.password",
	"target.host", "target.key_file", "target.known_hosts", "target.sudo",
	"report.json_file", "report.metrics_file",
	"report.s3.bucket", "report.s3.prefix", "report.s3.endpoint",
	"report.s3.region", "report.s3.path_style", "report.s3.access_key", "report.s3.secret_key",
}

// resolveConfigPath returns the file to read, or "" when none applies.
func resolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if _, err := os.Stat(DefaultConfigFile); err == nil {
		return DefaultConfigFile, nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("config file %s: %w", DefaultConfigFile, err)
	}
	return "", nil
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for key, name := range FlagBindings {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}
