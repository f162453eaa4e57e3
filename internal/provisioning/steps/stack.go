package steps

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
	"github.com/imamik/erpdeploy/internal/util/retry"
)

// stackInputs are the steps whose changes a running stack must pick up.
var stackInputs = []string{WriteServiceConfig, WriteStackDescriptor, CreateNetwork, CreateVolumes}

func createNetwork(cfg *config.Config) provisioning.Step {
	return provisioning.Step{
		Name:        CreateNetwork,
		Description: "Create the container network shared by the stack",
		Resource:    "network " + cfg.Network,
		Idempotency: provisioning.ExistenceGated,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{InstallPackages},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			ok, err := ctx.Host.Orchestrator.NetworkExists(ctx, cfg.Network)
			if err != nil {
				return false, "", err
			}
			if ok {
				return true, "network exists", nil
			}
			return false, "network does not exist", nil
		},
		Action: func(ctx *provisioning.Context) error {
			if err := ctx.Host.Orchestrator.CreateNetwork(ctx, cfg.Network); err != nil {
				return &provisioning.StackStartError{Stack: cfg.StackName(), Err: err}
			}
			return nil
		},
	}
}

func createVolumes(cfg *config.Config) provisioning.Step {
	names := cfg.Volumes.Names()
	return provisioning.Step{
		Name:        CreateVolumes,
		Description: "Create the persistent volumes for application and database data",
		Resource:    "volumes " + strings.Join(names, ", "),
		Idempotency: provisioning.ExistenceGated,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{InstallPackages},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			missing, err := missingVolumes(ctx, names)
			if err != nil {
				return false, "", err
			}
			if len(missing) == 0 {
				return true, "volumes exist", nil
			}
			return false, "missing " + strings.Join(missing, ", "), nil
		},
		Action: func(ctx *provisioning.Context) error {
			missing, err := missingVolumes(ctx, names)
			if err != nil {
				return &provisioning.StackStartError{Stack: cfg.StackName(), Err: err}
			}
			for _, name := range missing {
				if err := ctx.Host.Orchestrator.CreateVolume(ctx, name); err != nil {
					return &provisioning.StackStartError{Stack: cfg.StackName(), Err: err}
				}
			}
			return nil
		},
	}
}

func missingVolumes(ctx *provisioning.Context, names []string) ([]string, error) {
	var missing []string
	for _, name := range names {
		ok, err := ctx.Host.Orchestrator.VolumeExists(ctx, name)
		if err != nil {
			return nil, err
		}
		if !ok {
			missing = append(missing, name)
		}
	}
	return missing, nil
}

func startStack(cfg *config.Config) provisioning.Step {
	project, descriptor := cfg.StackName(), cfg.StackDescriptorPath()
	return provisioning.Step{
		Name:        StartStack,
		Description: "Start the application and database containers",
		Resource:    "compose project " + project,
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{InstallPackages, WriteServiceConfig, WriteStackDescriptor, CreateNetwork, CreateVolumes},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			if ctx.State.Changed(stackInputs...) {
				return false, "stack inputs changed", nil
			}
			running, err := ctx.Host.Orchestrator.StackRunning(ctx, project, descriptor)
			if err != nil {
				return false, "", err
			}
			if running {
				return true, "all services running", nil
			}
			return false, "services not running", nil
		},
		Action: func(ctx *provisioning.Context) error {
			wasRunning, err := ctx.Host.Orchestrator.StackRunning(ctx, project, descriptor)
			if err != nil {
				// restart anyway so a changed config is not left unloaded
				ctx.Observer.Printf("[%s] Could not query stack %s, assuming it runs: %v", StartStack, project, err)
				wasRunning = true
			}
			if err := ctx.Host.Orchestrator.ApplyStack(ctx, project, descriptor); err != nil {
				return &provisioning.StackStartError{Stack: project, Err: err}
			}
			// compose does not notice changes to bind-mounted files
			if wasRunning && ctx.State.Changed(WriteServiceConfig) {
				if err := ctx.Host.Orchestrator.RestartStack(ctx, project, descriptor); err != nil {
					return &provisioning.StackStartError{Stack: project, Err: err}
				}
			}
			return nil
		},
	}
}

func awaitApplication(cfg *config.Config) provisioning.Step {
	url := AppURL(cfg)
	return provisioning.Step{
		Name:        AwaitApplication,
		Description: "Wait until the application answers on its local port",
		Resource:    url,
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{StartStack},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			if ctx.State.Changed(StartStack) {
				return false, "stack was started in this run", nil
			}
			if err := ctx.Host.Prober.Reachable(ctx, url); err != nil {
				return false, "application not answering", nil
			}
			return true, "application answering", nil
		},
		Action: func(ctx *provisioning.Context) error {
			timeouts := ctx.Timeouts
			if timeouts == nil {
				timeouts = config.LoadTimeouts()
			}
			err := retry.Poll(ctx, timeouts.PollInterval, timeouts.StackReady, func(c context.Context) error {
				return ctx.Host.Prober.Reachable(c, url)
			})
			if err != nil {
				return &provisioning.StackStartError{
					Stack: cfg.StackName(),
					Err:   fmt.Errorf("application did not answer on %s: %w", url, err),
				}
			}
			return nil
		},
		Remediation: fmt.Sprintf("inspect the container logs with `docker compose -p %s logs web`", cfg.StackName()),
	}
}
