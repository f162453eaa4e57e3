package docker

import (
	"context"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// CLIOrchestrator implements provisioning.Orchestrator with the docker CLI.
// It is used for remote targets, where the engine socket is not reachable.
type CLIOrchestrator struct {
	runner runner.Runner
}

// NewCLIOrchestrator returns an orchestrator running docker through r.
func NewCLIOrchestrator(r runner.Runner) *CLIOrchestrator {
	return &CLIOrchestrator{runner: r}
}

// NetworkExists implements provisioning.Orchestrator.
func (o *CLIOrchestrator) NetworkExists(ctx context.Context, name string) (bool, error) {
	return o.inspect(ctx, "NetworkExists", "network", name)
}

// CreateNetwork implements provisioning.Orchestrator.
func (o *CLIOrchestrator) CreateNetwork(ctx context.Context, name string) error {
	out, err := o.runner.Run(ctx, "docker", "network", "create",
		"--driver", "bridge",
		"--label", ManagedLabel+"=true",
		name)
	if err != nil {
		if strings.Contains(out, "already exists") {
			return nil
		}
		return NewDockerError("CreateNetwork", "network", name, "docker network create failed: "+err.Error(), err)
	}
	return nil
}

// VolumeExists implements provisioning.Orchestrator.
func (o *CLIOrchestrator) VolumeExists(ctx context.Context, name string) (bool, error) {
	return o.inspect(ctx, "VolumeExists", "volume", name)
}

// CreateVolume implements provisioning.Orchestrator.
func (o *CLIOrchestrator) CreateVolume(ctx context.Context, name string) error {
	_, err := o.runner.Run(ctx, "docker", "volume", "create",
		"--label", ManagedLabel+"=true",
		name)
	if err != nil {
		return NewDockerError("CreateVolume", "volume", name, "docker volume create failed: "+err.Error(), err)
	}
	return nil
}

// StackRunning implements provisioning.Orchestrator.
func (o *CLIOrchestrator) StackRunning(ctx context.Context, project, descriptor string) (bool, error) {
	declared, err := declaredServices(ctx, o.runner, project, descriptor)
	if err != nil {
		return false, err
	}
	out, err := o.runner.Run(ctx, "docker", "compose",
		"-f", descriptor,
		"-p", project,
		"ps", "--services", "--status", "running")
	if err != nil {
		return false, NewDockerError("StackRunning", "stack", project, "docker compose ps failed: "+err.Error(), err)
	}
	running := make(map[string]bool)
	for _, name := range lines(out) {
		running[name] = true
	}
	return allRunning(declared, running), nil
}

// ApplyStack implements provisioning.Orchestrator.
func (o *CLIOrchestrator) ApplyStack(ctx context.Context, project, descriptor string) error {
	return composeUp(ctx, o.runner, project, descriptor)
}

// RestartStack implements provisioning.Orchestrator.
func (o *CLIOrchestrator) RestartStack(ctx context.Context, project, descriptor string) error {
	return composeRestart(ctx, o.runner, project, descriptor)
}

// inspect distinguishes a missing object from a failing CLI.
func (o *CLIOrchestrator) inspect(ctx context.Context, op, entity, name string) (bool, error) {
	out, err := o.runner.Run(ctx, "docker", entity, "inspect", "--format", "{{.Name}}", name)
	if err == nil {
		return true, nil
	}
	if runner.ExitCode(err) == 1 && isNoSuchObject(out) {
		return false, nil
	}
	return false, NewDockerError(op, entity, name, "docker "+entity+" inspect failed: "+err.Error(), err)
}

func isNoSuchObject(out string) bool {
	lower := strings.ToLower(out)
	return strings.Contains(lower, "no such") || strings.Contains(lower, "not found")
}
