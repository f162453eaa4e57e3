package docker

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/api/types/volume"
	"github.com/docker/docker/client"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// Engine is the subset of the Docker Engine API the orchestrator uses.
// *client.Client implements it.
type Engine interface {
	NetworkInspect(ctx context.Context, networkID string, options network.InspectOptions) (network.Inspect, error)
	NetworkCreate(ctx context.Context, name string, options network.CreateOptions) (network.CreateResponse, error)
	VolumeInspect(ctx context.Context, volumeID string) (volume.Volume, error)
	VolumeCreate(ctx context.Context, options volume.CreateOptions) (volume.Volume, error)
	ContainerList(ctx context.Context, options container.ListOptions) ([]container.Summary, error)
	Close() error
}

// SDKOrchestrator implements provisioning.Orchestrator against the local
// Docker Engine API. Compose projects are applied with the docker CLI.
type SDKOrchestrator struct {
	engine Engine
	runner runner.Runner
}

// NewEngine connects to the engine configured by the DOCKER_* environment.
func NewEngine(ctx context.Context) (*client.Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, NewDockerError("NewEngine", "", "", "failed to create client", fmt.Errorf("%w: %v", ErrConnectionFailed, err))
	}
	if _, err := cli.Ping(ctx); err != nil {
		_ = cli.Close()
		host := os.Getenv("DOCKER_HOST")
		if host == "" {
			host = client.DefaultDockerHost
		}
		return nil, NewDockerError("NewEngine", "", host, "failed to ping docker", fmt.Errorf("%w: %v", ErrConnectionFailed, err))
	}
	return cli, nil
}

// NewSDKOrchestrator returns an orchestrator using engine for state and r for compose.
func NewSDKOrchestrator(engine Engine, r runner.Runner) *SDKOrchestrator {
	return &SDKOrchestrator{engine: engine, runner: r}
}

// Close releases the engine connection.
func (o *SDKOrchestrator) Close() error {
	return o.engine.Close()
}

// NetworkExists implements provisioning.Orchestrator.
func (o *SDKOrchestrator) NetworkExists(ctx context.Context, name string) (bool, error) {
	_, err := o.engine.NetworkInspect(ctx, name, network.InspectOptions{})
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, NewDockerError("NetworkExists", "network", name, err.Error(), err)
	}
	return true, nil
}

// CreateNetwork implements provisioning.Orchestrator. An existing network of
// the same name counts as success.
func (o *SDKOrchestrator) CreateNetwork(ctx context.Context, name string) error {
	_, err := o.engine.NetworkCreate(ctx, name, network.CreateOptions{
		Driver: "bridge",
		Labels: map[string]string{ManagedLabel: "true"},
	})
	if err != nil {
		if strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return NewDockerError("CreateNetwork", "network", name, err.Error(), err)
	}
	return nil
}

// VolumeExists implements provisioning.Orchestrator.
func (o *SDKOrchestrator) VolumeExists(ctx context.Context, name string) (bool, error) {
	_, err := o.engine.VolumeInspect(ctx, name)
	if err != nil {
		if client.IsErrNotFound(err) {
			return false, nil
		}
		return false, NewDockerError("VolumeExists", "volume", name, err.Error(), err)
	}
	return true, nil
}

// CreateVolume implements provisioning.Orchestrator. The engine returns the
// existing volume when one of the same name is present.
func (o *SDKOrchestrator) CreateVolume(ctx context.Context, name string) error {
	_, err := o.engine.VolumeCreate(ctx, volume.CreateOptions{
		Name:   name,
		Driver: "local",
		Labels: map[string]string{ManagedLabel: "true"},
	})
	if err != nil {
		return NewDockerError("CreateVolume", "volume", name, err.Error(), err)
	}
	return nil
}

// StackRunning implements provisioning.Orchestrator.
func (o *SDKOrchestrator) StackRunning(ctx context.Context, project, descriptor string) (bool, error) {
	declared, err := declaredServices(ctx, o.runner, project, descriptor)
	if err != nil {
		return false, err
	}

	f := filters.NewArgs()
	f.Add("label", projectLabel+"="+project)
	f.Add("status", "running")
	containers, err := o.engine.ContainerList(ctx, container.ListOptions{Filters: f})
	if err != nil {
		return false, NewDockerError("StackRunning", "stack", project, err.Error(), err)
	}

	running := make(map[string]bool, len(containers))
	for _, c := range containers {
		if c.State == "running" {
			running[c.Labels[serviceLabel]] = true
		}
	}
	return allRunning(declared, running), nil
}

// ApplyStack implements provisioning.Orchestrator.
func (o *SDKOrchestrator) ApplyStack(ctx context.Context, project, descriptor string) error {
	return composeUp(ctx, o.runner, project, descriptor)
}

// RestartStack implements provisioning.Orchestrator.
func (o *SDKOrchestrator) RestartStack(ctx context.Context, project, descriptor string) error {
	return composeRestart(ctx, o.runner, project, descriptor)
}
