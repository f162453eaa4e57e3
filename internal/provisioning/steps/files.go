package steps

import (
	"fmt"
	"strings"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
	"github.com/imamik/erpdeploy/internal/render"
)

func createDirectories(cfg *config.Config) provisioning.Step {
	dirs := cfg.Directories()
	return provisioning.Step{
		Name:        CreateDirectories,
		Description: "Create the deployment root, config and addons directories",
		Resource:    strings.Join(dirs, ", "),
		Idempotency: provisioning.ExistenceGated,
		Policy:      provisioning.Fatal,
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			var missing []string
			for _, dir := range dirs {
				ok, err := ctx.Host.Files.Exists(ctx, dir)
				if err != nil {
					return false, "", err
				}
				if !ok {
					missing = append(missing, dir)
				}
			}
			if len(missing) == 0 {
				return true, "all directories exist", nil
			}
			return false, "missing " + strings.Join(missing, ", "), nil
		},
		Action: func(ctx *provisioning.Context) error {
			for _, dir := range dirs {
				if err := ctx.Host.Files.MkdirAll(ctx, dir, DirMode); err != nil {
					return &provisioning.ConfigRenderError{Path: dir, Err: err}
				}
			}
			return nil
		},
	}
}

func writeServiceConfig(cfg *config.Config) provisioning.Step {
	path := cfg.ServiceConfigPath()
	renderFn := func(*provisioning.Context) ([]byte, error) {
		content, err := ServiceConfig(cfg)
		if err != nil {
			return nil, &provisioning.ConfigRenderError{Path: path, Err: err}
		}
		return content, nil
	}
	return provisioning.Step{
		Name:        WriteServiceConfig,
		Description: "Write the application config",
		Resource:    path,
		Idempotency: provisioning.OverwriteSafe,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{CreateDirectories},
		Check:       fileCheck(path, renderFn),
		Action: func(ctx *provisioning.Context) error {
			content, err := renderFn(ctx)
			if err != nil {
				return err
			}
			if err := ctx.Host.Files.WriteFile(ctx, path, content, ServiceConfigMode); err != nil {
				return &provisioning.ConfigRenderError{Path: path, Err: err}
			}
			// the application container reads the file as its own user
			if err := ctx.Host.Files.Chown(ctx, path, render.ContainerUID, render.ContainerGID); err != nil {
				return &provisioning.ConfigRenderError{Path: path, Err: fmt.Errorf("failed to set owner: %w", err)}
			}
			return nil
		},
	}
}

func writeStackDescriptor(cfg *config.Config) provisioning.Step {
	path := cfg.StackDescriptorPath()
	renderFn := func(*provisioning.Context) ([]byte, error) {
		content, err := StackDescriptor(cfg)
		if err != nil {
			return nil, &provisioning.ConfigRenderError{Path: path, Err: err}
		}
		return content, nil
	}
	return provisioning.Step{
		Name:        WriteStackDescriptor,
		Description: "Write the compose descriptor",
		Resource:    path,
		Idempotency: provisioning.OverwriteSafe,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{CreateDirectories},
		Check:       fileCheck(path, renderFn),
		Action: func(ctx *provisioning.Context) error {
			content, err := renderFn(ctx)
			if err != nil {
				return err
			}
			if err := ctx.Host.Files.WriteFile(ctx, path, content, StackDescriptorMode); err != nil {
				return &provisioning.ConfigRenderError{Path: path, Err: err}
			}
			return nil
		},
	}
}
