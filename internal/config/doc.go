// Package config defines the deployment description consumed by the
// provisioning sequence.
//
// The [Config] struct is the single, read-only record of what a run should
// produce on the host: public domain, certificate contact, application and
// database credentials and versions, deployment root, proxy and firewall
// settings, and the target host. [Load] merges built-in defaults, an optional
// YAML file, ERPDEPLOY_* environment variables and command-line flags, in
// that order of precedence, and validates the result.
package config
