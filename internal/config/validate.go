package config

import (
	"errors"
	"fmt"
	"net/mail"
	"path/filepath"
	"regexp"
	"strings"
)

// domainRegex accepts fully qualified host names (at least one dot, no trailing dot).
var domainRegex = regexp.MustCompile(`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)(?:\.(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?))+$`)

// nameRegex validates docker network, volume and proxy site names.
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_.-]*$`)

// ValidLogFormats lists the accepted log.format values.
var ValidLogFormats = map[string]bool{
	"text": true,
	"json": true,
}

// Validate checks the configuration and reports every problem found at once.
func (c *Config) Validate() error {
	var errs []error

	errs = append(errs, c.validateIdentity()...)
	errs = append(errs, c.validateSecrets()...)
	errs = append(errs, c.validateLayout()...)
	errs = append(errs, c.validatePorts()...)
	errs = append(errs, c.validateNames()...)
	errs = append(errs, c.validateFirewall()...)

	if len(c.Packages) == 0 {
		errs = append(errs, errors.New("packages must not be empty"))
	}
	if !ValidLogFormats[c.Log.Format] {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be text or json", c.Log.Format))
	}
	if c.TLS.Enabled && c.TLS.RenewBefore < 0 {
		errs = append(errs, errors.New("tls.renew_before must not be negative"))
	}
	if c.Report.S3.Enabled() && c.Report.S3.Region == "" {
		errs = append(errs, errors.New("report.s3.region is required when report.s3.bucket is set"))
	}

	return errors.Join(errs...)
}

func (c *Config) validateIdentity() []error {
	var errs []error

	if c.Domain == "" {
		errs = append(errs, errors.New("domain is required"))
	} else if len(c.Domain) > 253 || !domainRegex.MatchString(c.Domain) {
		errs = append(errs, fmt.Errorf("invalid domain %q", c.Domain))
	}

	if c.Email == "" {
		if c.TLS.Enabled {
			errs = append(errs, errors.New("email is required when tls is enabled"))
		}
	} else if addr, err := mail.ParseAddress(c.Email); err != nil || addr.Address != c.Email {
		errs = append(errs, fmt.Errorf("invalid email %q", c.Email))
	}

	return errs
}

func (c *Config) validateSecrets() []error {
	var errs []error
	if c.MasterPassword == "" {
		errs = append(errs, fmt.Errorf("master_password is required (or set %s_MASTER_PASSWORD)", EnvPrefix))
	}
	if c.Database.User == "" {
		errs = append(errs, errors.New("database.user is required"))
	}
	if c.Database.Password == "" {
		errs = append(errs, fmt.Errorf("database.password is required (or set %s_DATABASE_PASSWORD)", EnvPrefix))
	}
	if c.App.Version == "" {
		errs = append(errs, errors.New("app.version is required"))
	}
	if c.Database.Version == "" {
		errs = append(errs, errors.New("database.version is required"))
	}
	return errs
}

func (c *Config) validateLayout() []error {
	var errs []error
	paths := map[string]string{
		"root":                  c.Root,
		"proxy.sites_available": c.Proxy.SitesAvailable,
		"proxy.sites_enabled":   c.Proxy.SitesEnabled,
	}
	for _, key := range []string{"root", "proxy.sites_available", "proxy.sites_enabled"} {
		p := paths[key]
		if p == "" || !filepath.IsAbs(p) {
			errs = append(errs, fmt.Errorf("%s must be an absolute path, got %q", key, p))
			continue
		}
		if filepath.Clean(p) == "/" {
			errs = append(errs, fmt.Errorf("%s must not be the filesystem root", key))
		}
	}
	return errs
}

func (c *Config) validatePorts() []error {
	var errs []error
	ports := []struct {
		key  string
		port int
	}{
		{"app.port", c.App.Port},
		{"app.longpolling_port", c.App.LongpollingPort},
	}
	if c.Target.IsRemote() {
		ports = append(ports, struct {
			key  string
			port int
		}{"target.port", c.Target.Port})
	}
	for _, p := range ports {
		if p.port < 1 || p.port > 65535 {
			errs = append(errs, fmt.Errorf("%s must be between 1 and 65535, got %d", p.key, p.port))
		}
	}
	if c.App.Port == c.App.LongpollingPort {
		errs = append(errs, errors.New("app.port and app.longpolling_port must differ"))
	}
	if c.App.Workers < 0 {
		errs = append(errs, errors.New("app.workers must not be negative"))
	}
	return errs
}

func (c *Config) validateNames() []error {
	var errs []error
	names := []struct {
		key   string
		value string
	}{
		{"network", c.Network},
		{"volumes.web", c.Volumes.Web},
		{"volumes.db", c.Volumes.DB},
		{"proxy.site", c.Proxy.Site},
	}
	for _, n := range names {
		if !nameRegex.MatchString(n.value) {
			errs = append(errs, fmt.Errorf("invalid %s %q", n.key, n.value))
		}
	}
	if c.Volumes.Web != "" && c.Volumes.Web == c.Volumes.DB {
		errs = append(errs, errors.New("volumes.web and volumes.db must differ"))
	}
	return errs
}

// validateFirewall requires the SSH rule to be applied before any other rule,
// so enabling the firewall never locks the operator out.
func (c *Config) validateFirewall() []error {
	if !c.Firewall.Enabled {
		return nil
	}
	if len(c.Firewall.Rules) == 0 {
		return []error{errors.New("firewall.rules must not be empty when the firewall is enabled")}
	}
	if c.Firewall.Rules[0] != RuleSSH {
		return []error{fmt.Errorf("firewall.rules must start with %q to keep remote access, got %q",
			RuleSSH, strings.Join(c.Firewall.Rules, ", "))}
	}
	return nil
}
