// Package ufw manages host firewall rules through the ufw frontend.
package ufw

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// Firewall implements provisioning.Firewall.
type Firewall struct {
	runner runner.Runner
}

// New returns a firewall adapter running on r.
func New(r runner.Runner) *Firewall {
	return &Firewall{runner: r}
}

// Allowed reports whether an allow rule for rule has been added. Added rules
// are listed whether or not the firewall is active.
func (f *Firewall) Allowed(ctx context.Context, rule string) (bool, error) {
	out, err := f.runner.Run(ctx, "ufw", "show", "added")
	if err != nil {
		return false, fmt.Errorf("failed to list firewall rules: %w", err)
	}
	for _, added := range parseAdded(out) {
		if added == rule {
			return true, nil
		}
	}
	return false, nil
}

// Allow adds an allow rule. ufw skips rules that already exist.
func (f *Firewall) Allow(ctx context.Context, rule string) error {
	if _, err := f.runner.Run(ctx, "ufw", "allow", rule); err != nil {
		return fmt.Errorf("failed to allow %s: %w", rule, err)
	}
	return nil
}

// Active reports whether the firewall is enabled.
func (f *Firewall) Active(ctx context.Context) (bool, error) {
	out, err := f.runner.Run(ctx, "ufw", "status")
	if err != nil {
		return false, fmt.Errorf("failed to read firewall status: %w", err)
	}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if state, ok := strings.CutPrefix(line, "Status:"); ok {
			return strings.TrimSpace(state) == "active", nil
		}
	}
	return false, fmt.Errorf("unexpected ufw status output: %q", strings.TrimSpace(out))
}

// Enable activates the firewall without the interactive SSH warning.
func (f *Firewall) Enable(ctx context.Context) error {
	if _, err := f.runner.Run(ctx, "ufw", "--force", "enable"); err != nil {
		return fmt.Errorf("failed to enable firewall: %w", err)
	}
	return nil
}

// AllowCommand is the command an operator runs to add rule by hand.
func AllowCommand(rule string) string {
	return runner.CommandLine("ufw", "allow", rule)
}

// EnableCommand is the command an operator runs to activate the firewall by hand.
func EnableCommand() string {
	return "ufw --force enable"
}

// parseAdded extracts the allow targets from "ufw show added".
// Lines look like "ufw allow OpenSSH" or "ufw allow 'Nginx Full'".
func parseAdded(out string) []string {
	var rules []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		rest, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "ufw allow ")
		if !ok {
			continue
		}
		rules = append(rules, strings.Trim(strings.TrimSpace(rest), `'"`))
	}
	return rules
}
