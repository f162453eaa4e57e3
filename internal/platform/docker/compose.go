package docker

import (
	"bufio"
	"context"
	"sort"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
	"github.com/imamik/erpdeploy/internal/render"
)

// Labels set on resources erpdeploy creates.
const (
	ManagedLabel = "io.erpdeploy.managed"

	// Set by docker compose on every container of a project.
	projectLabel = "com.docker.compose.project"
	serviceLabel = "com.docker.compose.service"
)

// composeUp brings project up from descriptor. Containers whose
// configuration did not change are left running.
func composeUp(ctx context.Context, r runner.Runner, project, descriptor string) error {
	_, err := r.Run(ctx, "docker", "compose",
		"-f", descriptor,
		"-p", project,
		"up", "-d", "--remove-orphans")
	if err != nil {
		return NewDockerError("ApplyStack", "stack", project, "compose up failed: "+err.Error(), err)
	}
	return nil
}

// composeRestart restarts every service of project.
func composeRestart(ctx context.Context, r runner.Runner, project, descriptor string) error {
	_, err := r.Run(ctx, "docker", "compose",
		"-f", descriptor,
		"-p", project,
		"restart")
	if err != nil {
		return NewDockerError("RestartStack", "stack", project, "compose restart failed: "+err.Error(), err)
	}
	return nil
}

// declaredServices loads descriptor from the target and returns its service names.
func declaredServices(ctx context.Context, r runner.Runner, project, descriptor string) ([]string, error) {
	content, err := r.ReadFile(ctx, descriptor)
	if err != nil {
		return nil, NewDockerError("StackRunning", "stack", project, "failed to read descriptor: "+err.Error(), err)
	}
	proj, err := render.LoadStack(ctx, project, content)
	if err != nil {
		return nil, NewDockerError("StackRunning", "stack", project, err.Error(), err)
	}
	names := make([]string, 0, len(proj.Services))
	for name := range proj.Services {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// allRunning reports whether every declared service is in running.
func allRunning(declared []string, running map[string]bool) bool {
	if len(declared) == 0 {
		return false
	}
	for _, name := range declared {
		if !running[name] {
			return false
		}
	}
	return true
}

// lines splits command output into trimmed, non-empty lines.
func lines(out string) []string {
	var result []string
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			result = append(result, line)
		}
	}
	return result
}
