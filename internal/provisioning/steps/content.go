package steps

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
	"github.com/imamik/erpdeploy/internal/render"
)

// File modes of the persisted layout. The service config holds the admin
// password in plaintext and the descriptor the database password.
const (
	DirMode             os.FileMode = 0755
	ServiceConfigMode   os.FileMode = 0640
	StackDescriptorMode os.FileMode = 0600
	ProxySiteMode       os.FileMode = 0644
)

// File is a rendered file and where the sequence writes it.
type File struct {
	Path    string
	Mode    os.FileMode
	Content []byte
}

// RenderFiles renders the service config, stack descriptor and proxy site
// for cfg without touching a host. With tls set, the proxy site references
// chain and key.
func RenderFiles(cfg *config.Config, tls bool, chain, key string) ([]File, error) {
	serviceConfig, err := ServiceConfig(cfg)
	if err != nil {
		return nil, err
	}
	descriptor, err := StackDescriptor(cfg)
	if err != nil {
		return nil, err
	}
	site, err := ProxySite(cfg, tls, chain, key)
	if err != nil {
		return nil, err
	}
	return []File{
		{Path: cfg.ServiceConfigPath(), Mode: ServiceConfigMode, Content: serviceConfig},
		{Path: cfg.StackDescriptorPath(), Mode: StackDescriptorMode, Content: descriptor},
		{Path: cfg.SiteAvailablePath(), Mode: ProxySiteMode, Content: site},
	}, nil
}

// ServiceConfig renders the application config for cfg.
func ServiceConfig(cfg *config.Config) ([]byte, error) {
	return render.ServiceConfig(render.ServiceConfigParams{
		AdminPassword:   cfg.MasterPassword,
		DBHost:          render.DBServiceName,
		DBPort:          render.DBPort,
		DBUser:          cfg.Database.User,
		DBPassword:      cfg.Database.Password,
		AddonsPath:      render.ContainerAddonsPath,
		DataDir:         render.ContainerDataDir,
		HTTPPort:        cfg.App.Port,
		LongpollingPort: cfg.App.LongpollingPort,
		Workers:         cfg.App.Workers,
		ListDB:          cfg.App.ListDB,
	})
}

// StackDescriptor renders the compose descriptor for cfg.
func StackDescriptor(cfg *config.Config) ([]byte, error) {
	return render.StackDescriptor(render.StackParams{
		Project:         cfg.StackName(),
		AppImage:        cfg.App.ImageRef(),
		DBImage:         cfg.Database.ImageRef(),
		AppPort:         cfg.App.Port,
		LongpollingPort: cfg.App.LongpollingPort,
		DBName:          cfg.Database.Name,
		DBUser:          cfg.Database.User,
		DBPassword:      cfg.Database.Password,
		Network:         cfg.Network,
		WebVolume:       cfg.Volumes.Web,
		DBVolume:        cfg.Volumes.DB,
		ConfigDir:       cfg.ConfigDir(),
		AddonsDir:       cfg.AddonsDir(),
	})
}

// ProxySite renders the proxy site for cfg, plain or with TLS.
func ProxySite(cfg *config.Config, tls bool, chain, key string) ([]byte, error) {
	return render.ProxySite(render.ProxySiteParams{
		Site:            cfg.Proxy.Site,
		Domain:          cfg.Domain,
		AppPort:         cfg.App.Port,
		LongpollingPort: cfg.App.LongpollingPort,
		TLS:             tls,
		CertificatePath: chain,
		KeyPath:         key,
	})
}

// AppURL is the loopback address the readiness probe requests.
func AppURL(cfg *config.Config) string {
	return fmt.Sprintf("http://127.0.0.1:%d/web/login", cfg.App.Port)
}

type fileState int

const (
	fileMissing fileState = iota
	fileDiffers
	fileCurrent
)

func (s fileState) reason() string {
	switch s {
	case fileMissing:
		return "file does not exist"
	case fileDiffers:
		return "content differs"
	default:
		return "content up to date"
	}
}

// compareFile reports how the file at path relates to content.
func compareFile(ctx context.Context, fs provisioning.FileSystem, path string, content []byte) (fileState, error) {
	current, err := fs.ReadFile(ctx, path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileMissing, nil
		}
		return fileMissing, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if bytes.Equal(current, content) {
		return fileCurrent, nil
	}
	return fileDiffers, nil
}

// fileCheck builds a precondition satisfied when path already holds the rendered content.
func fileCheck(path string, renderFn func(ctx *provisioning.Context) ([]byte, error)) provisioning.CheckFunc {
	return func(ctx *provisioning.Context) (bool, string, error) {
		content, err := renderFn(ctx)
		if err != nil {
			return false, "", err
		}
		state, err := compareFile(ctx, ctx.Host.Files, path, content)
		if err != nil {
			return false, "", err
		}
		return state == fileCurrent, state.reason(), nil
	}
}
