package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/config/wizard"
)

// InitOptions carries the init command line.
type InitOptions struct {
	OutputPath string
	Advanced   bool
	Full       bool
	Force      bool

	// NonInteractive builds the file from Answers instead of asking.
	NonInteractive bool
	Answers        wizard.WizardResult
}

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = wizard.FileExists

	// confirmOverwrite asks before replacing an existing file.
	confirmOverwrite = wizard.ConfirmOverwrite

	// runWizard runs the interactive form.
	runWizard = wizard.RunWizard

	// writeConfig writes the config to a file.
	writeConfig = wizard.WriteConfig
)

// Init creates a starter configuration file, interactively or from flags.
// Secrets are never written; they are expected in the environment.
func Init(ctx context.Context, opts InitOptions) error {
	if fileExists(opts.OutputPath) && !opts.Force {
		if opts.NonInteractive {
			return fmt.Errorf("%s already exists; use --force to overwrite", opts.OutputPath)
		}
		ok, err := confirmOverwrite(opts.OutputPath)
		if err != nil {
			return fmt.Errorf("failed to confirm overwrite: %w", err)
		}
		if !ok {
			_, _ = fmt.Fprintln(stdout, "Aborted.")
			return nil
		}
	}

	var result *wizard.WizardResult
	if opts.NonInteractive {
		if opts.Answers.Domain == "" {
			return fmt.Errorf("--domain is required with --non-interactive")
		}
		answers := opts.Answers
		result = &answers
	} else {
		printWelcome()
		r, err := runWizard(ctx, opts.Advanced)
		if err != nil {
			return fmt.Errorf("wizard canceled: %w", err)
		}
		result = r
	}

	cfg := wizard.BuildConfig(result)
	if err := writeConfig(cfg, opts.OutputPath, opts.Full); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(opts.OutputPath, cfg)
	return nil
}

// printWelcome prints the welcome message.
func printWelcome() {
	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintln(stdout, "erpdeploy - Odoo with Postgres behind nginx")
	_, _ = fmt.Fprintln(stdout, "===========================================")
	_, _ = fmt.Fprintln(stdout)
	_, _ = fmt.Fprintln(stdout, "This wizard creates a deployment configuration with sensible defaults.")
	_, _ = fmt.Fprintln(stdout, "Passwords are not stored in the file; export them before running apply.")
	_, _ = fmt.Fprintln(stdout)
}

// printInitSuccess prints the success message with summary and next steps.
func printInitSuccess(outputPath string, cfg *config.Config) {
	w := stdout
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "Configuration saved!")
	_, _ = fmt.Fprintf(w, "  File: %s\n\n", outputPath)

	_, _ = fmt.Fprintln(w, "Deployment Summary")
	_, _ = fmt.Fprintln(w, "------------------")
	_, _ = fmt.Fprintf(w, "  Domain:    %s\n", cfg.Domain)
	_, _ = fmt.Fprintf(w, "  Odoo:      %s\n", cfg.App.ImageRef())
	_, _ = fmt.Fprintf(w, "  Postgres:  %s\n", cfg.Database.ImageRef())
	_, _ = fmt.Fprintf(w, "  TLS:       %s\n", enabled(cfg.TLS.Enabled))
	_, _ = fmt.Fprintf(w, "  Firewall:  %s\n", enabled(cfg.Firewall.Enabled))
	if cfg.Target.IsRemote() {
		_, _ = fmt.Fprintf(w, "  Target:    %s@%s:%d\n", cfg.Target.User, cfg.Target.Host, cfg.Target.Port)
	} else {
		_, _ = fmt.Fprintln(w, "  Target:    this machine")
	}
	_, _ = fmt.Fprintln(w)

	_, _ = fmt.Fprintln(w, "Next Steps")
	_, _ = fmt.Fprintln(w, "----------")
	_, _ = fmt.Fprintln(w, "  1. Export the passwords:")
	_, _ = fmt.Fprintln(w, "     export ERPDEPLOY_MASTER_PASSWORD=<secret>")
	_, _ = fmt.Fprintln(w, "     export ERPDEPLOY_DATABASE_PASSWORD=<secret>")
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  2. Preview the changes:")
	_, _ = fmt.Fprintf(w, "     erpdeploy plan -c %s\n", outputPath)
	_, _ = fmt.Fprintln(w)
	_, _ = fmt.Fprintln(w, "  3. Deploy:")
	_, _ = fmt.Fprintf(w, "     erpdeploy apply -c %s\n", outputPath)
	_, _ = fmt.Fprintln(w)
}

func enabled(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}
