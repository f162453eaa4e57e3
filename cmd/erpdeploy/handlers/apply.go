package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
	"github.com/imamik/erpdeploy/internal/provisioning/steps"
	"github.com/imamik/erpdeploy/internal/ui/tui"
)

// ApplyOptions carries the apply and plan command line.
type ApplyOptions struct {
	// ConfigPath is an explicit config file; empty looks for erpdeploy.yaml.
	ConfigPath string

	// Flags override file and environment values for the flags that were set.
	Flags *pflag.FlagSet

	// DryRun evaluates every check but runs no action.
	DryRun bool

	// TUI shows a live progress view when stdout is a terminal.
	TUI bool
}

var (
	// loadConfig merges defaults, file, environment and flags.
	loadConfig = config.Load

	// loadTimeouts reads the wait settings from the environment.
	loadTimeouts = config.LoadTimeouts

	// runApplyTUI wraps a run in the progress view.
	runApplyTUI = tui.RunApplyTUI

	// isTerminal reports whether stdout is an interactive terminal.
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}

	// stdout receives the final report.
	stdout io.Writer = os.Stdout

	// stderr receives JSON log lines.
	stderr io.Writer = os.Stderr
)

// Apply brings the target host to the described state.
//
// The workflow:
//  1. Loads and validates configuration (defaults, file, environment, flags)
//  2. Connects to the target, locally or over SSH
//  3. Verifies the target has the tools the sequence relies on
//  4. Runs the provisioning sequence, with a live view when requested
//  5. Prints the report and publishes it to the configured sinks
//
// The returned error is non-nil when a fatal step failed. Tolerant failures
// are listed in the report with their remediation and do not fail the run.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := loadConfig(config.LoadOptions{Path: opts.ConfigPath, Flags: opts.Flags})
	if err != nil {
		return err
	}

	timeouts := loadTimeouts()

	if opts.DryRun {
		log.Printf("Planning deployment of %s", cfg.Domain)
	} else {
		log.Printf("Deploying %s", cfg.Domain)
	}

	t, err := newTarget(ctx, cfg, timeouts)
	if err != nil {
		return err
	}
	defer func() {
		if err := t.close(); err != nil {
			log.Printf("Warning: failed to close connection to %s: %v", t.runner.Target(), err)
		}
	}()

	if err := checkPrerequisites(ctx, t.runner); err != nil {
		return err
	}

	plan := steps.Build(cfg)
	sequencer := provisioning.NewSequencer(provisioning.WithDryRun(opts.DryRun))
	run := func(ctx context.Context, obs provisioning.Observer) (*provisioning.Report, error) {
		pctx := provisioning.NewContext(ctx, cfg, t.host)
		pctx.Observer = obs
		pctx.Timeouts = timeouts
		return sequencer.Run(pctx, plan)
	}

	var report *provisioning.Report
	var runErr error
	if useTUI(opts, cfg) {
		report, runErr = runApplyTUI(ctx, run, t.runner.Target(), cfg.Domain, steps.Names(plan), opts.DryRun)
	} else {
		report, runErr = run(ctx, newObserver(cfg))
	}

	if report != nil {
		_, _ = fmt.Fprint(stdout, renderReport(report, cfg.Domain))
		publishReport(ctx, cfg, t.runner, report)
	}

	if runErr != nil {
		return runErr
	}
	printApplySuccess(cfg, report, opts.DryRun)
	return nil
}

// Plan reports which steps an apply would run, without changing the host.
func Plan(ctx context.Context, opts ApplyOptions) error {
	opts.DryRun = true
	return Apply(ctx, opts)
}

// useTUI decides whether the progress view replaces line output.
func useTUI(opts ApplyOptions, cfg *config.Config) bool {
	return opts.TUI && cfg.Log.Format != "json" && isTerminal()
}

// newObserver selects the event sink for the configured log format.
func newObserver(cfg *config.Config) provisioning.Observer {
	if cfg.Log.Format == "json" {
		verbosity := 0
		if cfg.Log.Verbose {
			verbosity = 1
		}
		return provisioning.NewJSONObserver(stderr, verbosity)
	}
	if cfg.Log.Verbose {
		return provisioning.NewVerboseConsoleObserver()
	}
	return provisioning.NewConsoleObserver()
}

// printApplySuccess outputs next steps after a completed run.
func printApplySuccess(cfg *config.Config, report *provisioning.Report, dryRun bool) {
	if dryRun {
		_, _ = fmt.Fprintf(stdout, "\nRun `erpdeploy apply` to carry out %d planned steps.\n", report.Planned())
		return
	}

	scheme := "http"
	if cfg.TLS.Enabled {
		if r, ok := report.Result(steps.ActivateTLS); ok && r.Status != provisioning.StatusFailed {
			scheme = "https"
		}
	}
	_, _ = fmt.Fprintf(stdout, "\nDeployment complete: %s://%s\n", scheme, cfg.Domain)
	if report.Failed() > 0 {
		_, _ = fmt.Fprintf(stdout, "%d steps need attention; see the fixes above and run `erpdeploy apply` again.\n", report.Failed())
	}
}
