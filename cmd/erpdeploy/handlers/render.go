package handlers

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/platform/certbot"
	"github.com/imamik/erpdeploy/internal/provisioning/steps"
)

// RenderOptions carries the render command line.
type RenderOptions struct {
	ConfigPath string
	Flags      *pflag.FlagSet

	// OutputDir receives one file per rendered artifact. Empty prints to stdout.
	OutputDir string

	// TLS renders the HTTPS proxy site as it looks after a certificate is issued.
	TLS bool
}

var (
	// mkdirAll creates the render output directory.
	mkdirAll = os.MkdirAll
)

// Render prints or writes the files a run would persist, without touching
// any host.
func Render(_ context.Context, opts RenderOptions) error {
	cfg, err := loadConfig(config.LoadOptions{Path: opts.ConfigPath, Flags: opts.Flags})
	if err != nil {
		return err
	}

	tls := opts.TLS && cfg.TLS.Enabled
	var chain, key string
	if tls {
		// paths only; nothing runs on a host
		chain, key = certbot.New(nil, certbot.Options{}).CertificatePaths(cfg.Domain)
	}

	files, err := steps.RenderFiles(cfg, tls, chain, key)
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}

	if opts.OutputDir == "" {
		for i, f := range files {
			if i > 0 {
				_, _ = fmt.Fprintln(stdout)
			}
			_, _ = fmt.Fprintf(stdout, "# %s (%04o)\n", f.Path, f.Mode)
			_, _ = stdout.Write(f.Content)
		}
		return nil
	}

	if err := mkdirAll(opts.OutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", opts.OutputDir, err)
	}
	for _, f := range files {
		dest := filepath.Join(opts.OutputDir, filepath.Base(f.Path))
		if err := writeLocalFile(dest, f.Content, f.Mode); err != nil {
			return fmt.Errorf("failed to write %s: %w", dest, err)
		}
		_, _ = fmt.Fprintf(stdout, "%s -> %s\n", f.Path, dest)
	}
	return nil
}
