// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/platform/apt"
	"github.com/imamik/erpdeploy/internal/platform/certbot"
	"github.com/imamik/erpdeploy/internal/platform/docker"
	"github.com/imamik/erpdeploy/internal/platform/host"
	"github.com/imamik/erpdeploy/internal/platform/nginx"
	"github.com/imamik/erpdeploy/internal/platform/runner"
	"github.com/imamik/erpdeploy/internal/platform/ufw"
	"github.com/imamik/erpdeploy/internal/provisioning"
	"github.com/imamik/erpdeploy/internal/util/prerequisites"
)

// target is a connected host with its adapters.
type target struct {
	runner runner.Runner
	host   *provisioning.Host
	close  func() error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// newLocalRunner runs commands on this machine.
	newLocalRunner = func() runner.Runner {
		return runner.NewLocal()
	}

	// dialSSH connects to a remote target.
	dialSSH = func(ctx context.Context, cfg runner.SSHConfig) (runner.Runner, func() error, error) {
		r, err := runner.NewSSH(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := r.Connect(ctx); err != nil {
			return nil, nil, err
		}
		return r, r.Close, nil
	}

	// newDockerEngine opens the local docker engine API.
	newDockerEngine = func(ctx context.Context) (docker.Engine, error) {
		engine, err := docker.NewEngine(ctx)
		if err != nil {
			return nil, err
		}
		return engine, nil
	}

	// readKeyFile reads the SSH private key.
	readKeyFile = os.ReadFile

	// checkDefaultPrereqs looks up the tools the sequence needs on the target.
	checkDefaultPrereqs = prerequisites.CheckDefault

	// newTarget connects to the configured host.
	newTarget = connectTarget
)

// connectTarget opens the runner for cfg.Target and builds the adapters on it.
// Local targets talk to the docker engine API; remote targets drive the
// docker CLI over the same SSH connection as every other command.
func connectTarget(ctx context.Context, cfg *config.Config, timeouts *config.Timeouts) (*target, error) {
	var (
		r       runner.Runner
		closers []func() error
	)

	if cfg.Target.IsRemote() {
		sshCfg, err := sshConfig(cfg.Target, timeouts)
		if err != nil {
			return nil, err
		}
		remote, closeFn, err := dialSSH(ctx, sshCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to %s: %w", cfg.Target.Host, err)
		}
		r = remote
		closers = append(closers, closeFn)
	} else {
		r = newLocalRunner()
	}

	var orchestrator provisioning.Orchestrator
	if cfg.Target.IsRemote() {
		orchestrator = docker.NewCLIOrchestrator(r)
	} else {
		engine, err := newDockerEngine(ctx)
		if err != nil {
			log.Printf("Docker engine API unavailable (%v), using the docker CLI", err)
			orchestrator = docker.NewCLIOrchestrator(r)
		} else {
			sdk := docker.NewSDKOrchestrator(engine, r)
			orchestrator = sdk
			closers = append(closers, sdk.Close)
		}
	}

	h := host.New(r)
	t := &target{
		runner: r,
		host: &provisioning.Host{
			Packages:     apt.New(r),
			Orchestrator: orchestrator,
			Files:        r,
			Proxy:        nginx.New(r, cfg.Proxy.SitesAvailable, cfg.Proxy.SitesEnabled),
			Certificates: certbot.New(r, certbot.Options{
				Staging:     cfg.TLS.Staging,
				RenewBefore: cfg.TLS.RenewBefore,
			}),
			Firewall:  ufw.New(r),
			Privilege: h,
			Prober:    h,
		},
		close: func() error {
			var errs []error
			for i := len(closers) - 1; i >= 0; i-- {
				errs = append(errs, closers[i]())
			}
			return errors.Join(errs...)
		},
	}
	return t, nil
}

// sshConfig builds the runner configuration for a remote target.
func sshConfig(t config.TargetConfig, timeouts *config.Timeouts) (runner.SSHConfig, error) {
	if t.KeyFile == "" {
		return runner.SSHConfig{}, fmt.Errorf("target.key_file is required for remote target %s", t.Host)
	}
	key, err := readKeyFile(t.KeyFile)
	if err != nil {
		return runner.SSHConfig{}, fmt.Errorf("failed to read SSH key %s: %w", t.KeyFile, err)
	}

	return runner.SSHConfig{
		Host:           t.Host,
		Port:           t.Port,
		User:           t.User,
		PrivateKey:     key,
		Sudo:           t.Sudo,
		KnownHostsFile: t.KnownHosts,
		MaxRetries:     timeouts.SSHMaxRetries,
		RetryDelay:     timeouts.SSHRetryDelay,
		OnRetry: func(attempt int, err error) {
			log.Printf("SSH connection to %s failed (attempt %d): %v", t.Host, attempt, err)
		},
	}, nil
}

// checkPrerequisites verifies the target has the tools the sequence relies on
// before any step changes it.
func checkPrerequisites(ctx context.Context, r runner.Runner) error {
	log.Printf("Checking prerequisites on %s...", r.Target())

	results, err := checkDefaultPrereqs(ctx, r)
	if err != nil {
		return fmt.Errorf("prerequisites check failed: %w", err)
	}
	for _, warning := range results.Warnings() {
		log.Printf("Warning: %s", warning)
	}
	if results.HasErrors() {
		return results.Error()
	}
	return nil
}
