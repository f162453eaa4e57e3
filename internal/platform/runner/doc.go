// Package runner executes commands and file operations on the provisioning target.
//
// [Local] acts on the machine erpdeploy runs on. [SSH] acts on a remote host
// over a single SSH connection, optionally elevating every command with
// "sudo -n". Both satisfy [Runner], so platform adapters are written once and
// work against either target.
//
// Security: host key verification is disabled unless a known_hosts file is
// configured.
package runner
