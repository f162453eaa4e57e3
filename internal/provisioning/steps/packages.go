package steps

import (
	"fmt"
	"strings"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

func installPackages(cfg *config.Config) provisioning.Step {
	return provisioning.Step{
		Name:        InstallPackages,
		Description: "Install container runtime, web server, certificate client and firewall",
		Resource:    "packages " + strings.Join(cfg.Packages, " "),
		Idempotency: provisioning.ExistenceGated,
		Policy:      provisioning.Fatal,
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			missing, err := missingPackages(ctx, cfg.Packages)
			if err != nil {
				return false, "", err
			}
			if len(missing) == 0 {
				return true, fmt.Sprintf("all %d packages installed", len(cfg.Packages)), nil
			}
			return false, "missing " + strings.Join(missing, ", "), nil
		},
		Action: func(ctx *provisioning.Context) error {
			missing, err := missingPackages(ctx, cfg.Packages)
			if err != nil {
				return &provisioning.DependencyInstallError{Packages: cfg.Packages, Err: err}
			}
			if len(missing) == 0 {
				return nil
			}
			if err := ctx.Host.Packages.Install(ctx, missing...); err != nil {
				return &provisioning.DependencyInstallError{Packages: missing, Err: err}
			}
			return nil
		},
		Remediation: "apt-get install -y " + strings.Join(cfg.Packages, " "),
	}
}

// missingPackages returns the packages of names that are not installed.
// Installing only these keeps already installed packages at their version.
func missingPackages(ctx *provisioning.Context, names []string) ([]string, error) {
	var missing []string
	for _, name := range names {
		ok, err := ctx.Host.Packages.IsInstalled(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
