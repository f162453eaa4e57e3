package provisioning

import (
	"errors"
	"fmt"
	"strings"
)

// Remediator is implemented by errors that know the manual fix for their cause.
type Remediator interface {
	Remediation() string
}

// PrivilegeError reports that the run lacks administrative privilege on the target.
type PrivilegeError struct {
	Target string
	Err    error
}

func (e *PrivilegeError) Error() string {
	return fmt.Sprintf("administrative privilege required on %s: %v", e.Target, e.Err)
}

func (e *PrivilegeError) Unwrap() error { return e.Err }

// Remediation implements Remediator.
func (e *PrivilegeError) Remediation() string {
	return "run erpdeploy as root, or set target.sudo for a user with passwordless sudo"
}

// DependencyInstallError reports a failed package installation.
type DependencyInstallError struct {
	Packages []string
	Err      error
}

func (e *DependencyInstallError) Error() string {
	return fmt.Sprintf("failed to install packages %s: %v", strings.Join(e.Packages, ", "), e.Err)
}

func (e *DependencyInstallError) Unwrap() error { return e.Err }

// StackStartError reports that the container stack could not be prepared or started.
type StackStartError struct {
	Stack string
	Err   error
}

func (e *StackStartError) Error() string {
	return fmt.Sprintf("stack %s: %v", e.Stack, e.Err)
}

func (e *StackStartError) Unwrap() error { return e.Err }

// ProxyConfigError reports an invalid or unloadable reverse proxy configuration.
type ProxyConfigError struct {
	Site string
	Err  error
}

func (e *ProxyConfigError) Error() string {
	return fmt.Sprintf("proxy site %s: %v", e.Site, e.Err)
}

func (e *ProxyConfigError) Unwrap() error { return e.Err }

// CertificateIssuanceError reports a failed certificate request.
type CertificateIssuanceError struct {
	Domain string
	Remedy string
	Err    error
}

func (e *CertificateIssuanceError) Error() string {
	return fmt.Sprintf("certificate for %s: %v", e.Domain, e.Err)
}

func (e *CertificateIssuanceError) Unwrap() error { return e.Err }

// Remediation implements Remediator.
func (e *CertificateIssuanceError) Remediation() string { return e.Remedy }

// FirewallConfigError reports a failed firewall change.
type FirewallConfigError struct {
	Rule   string
	Remedy string
	Err    error
}

func (e *FirewallConfigError) Error() string {
	if e.Rule == "" {
		return fmt.Sprintf("firewall: %v", e.Err)
	}
	return fmt.Sprintf("firewall rule %q: %v", e.Rule, e.Err)
}

func (e *FirewallConfigError) Unwrap() error { return e.Err }

// Remediation implements Remediator.
func (e *FirewallConfigError) Remediation() string { return e.Remedy }

// ConfigRenderError reports that a config file could not be rendered or written.
type ConfigRenderError struct {
	Path string
	Err  error
}

func (e *ConfigRenderError) Error() string {
	return fmt.Sprintf("config %s: %v", e.Path, e.Err)
}

func (e *ConfigRenderError) Unwrap() error { return e.Err }

// PlanError reports an invalid step list. Nothing has run when it is returned.
type PlanError struct {
	Problems []string
}

func (e *PlanError) Error() string {
	return fmt.Sprintf("invalid step plan:\n  %s", strings.Join(e.Problems, "\n  "))
}

// ProvisioningError is returned when a fatal step fails and the run aborts.
type ProvisioningError struct {
	Step  string
	Cause error
}

func (e *ProvisioningError) Error() string {
	return fmt.Sprintf("step %s failed: %v", e.Step, e.Cause)
}

func (e *ProvisioningError) Unwrap() error { return e.Cause }

// RemediationFor returns the remediation carried by err, or "".
func RemediationFor(err error) string {
	var r Remediator
	if errors.As(err, &r) {
		return r.Remediation()
	}
	return ""
}
