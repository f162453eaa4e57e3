package steps

import (
	"errors"
	"strings"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/platform/ufw"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

// firewallSteps allows every configured rule, then enables the firewall.
// Validation guarantees the SSH rule comes first.
func firewallSteps(cfg *config.Config) []provisioning.Step {
	steps := make([]provisioning.Step, 0, len(cfg.Firewall.Rules)+1)
	for _, rule := range cfg.Firewall.Rules {
		steps = append(steps, allowRule(rule))
	}
	return append(steps, enableFirewall(cfg))
}

// RuleStepName maps a firewall rule to its step name.
func RuleStepName(rule string) string {
	switch rule {
	case config.RuleSSH:
		return FirewallAllowSSH
	case config.RuleWeb:
		return FirewallAllowWeb
	}
	return "firewall-allow-" + slug(rule)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

func allowRule(rule string) provisioning.Step {
	remedy := ufw.AllowCommand(rule)
	return provisioning.Step{
		Name:        RuleStepName(rule),
		Description: "Allow " + rule + " through the firewall",
		Resource:    "ufw rule " + rule,
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Tolerant,
		DependsOn:   []string{InstallPackages},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			ok, err := ctx.Host.Firewall.Allowed(ctx, rule)
			if err != nil {
				return false, "", err
			}
			if ok {
				return true, "rule present", nil
			}
			return false, "rule missing", nil
		},
		Action: func(ctx *provisioning.Context) error {
			if err := ctx.Host.Firewall.Allow(ctx, rule); err != nil {
				return &provisioning.FirewallConfigError{Rule: rule, Remedy: remedy, Err: err}
			}
			return nil
		},
		Remediation: remedy,
	}
}

func enableFirewall(cfg *config.Config) provisioning.Step {
	sshStep := RuleStepName(cfg.Firewall.Rules[0])
	return provisioning.Step{
		Name:        FirewallEnable,
		Description: "Enable the firewall",
		Resource:    "ufw",
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Tolerant,
		DependsOn:   []string{InstallPackages},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			active, err := ctx.Host.Firewall.Active(ctx)
			if err != nil {
				return false, "", err
			}
			if active {
				return true, "firewall active", nil
			}
			return false, "firewall inactive", nil
		},
		Action: func(ctx *provisioning.Context) error {
			// enabling without the SSH rule locks a remote operator out
			if st, ok := ctx.State.Status(sshStep); !ok || st == provisioning.StatusFailed {
				return &provisioning.FirewallConfigError{
					Remedy: ufw.AllowCommand(cfg.Firewall.Rules[0]) + " && " + ufw.EnableCommand(),
					Err:    errors.New("SSH rule is not in place, refusing to enable the firewall"),
				}
			}
			if err := ctx.Host.Firewall.Enable(ctx); err != nil {
				return &provisioning.FirewallConfigError{Remedy: ufw.EnableCommand(), Err: err}
			}
			return nil
		},
		Remediation: ufw.EnableCommand(),
	}
}
