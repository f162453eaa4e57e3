// Package docker manages the container network, volumes and compose project
// on the target.
//
// [SDKOrchestrator] talks to the local engine through the Docker SDK and is
// used when erpdeploy runs on the host itself. [CLIOrchestrator] drives the
// docker CLI through a runner and serves SSH targets. Both apply the compose
// project with "docker compose up", which leaves unchanged containers alone.
package docker
