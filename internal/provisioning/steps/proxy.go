package steps

import (
	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

// plainSite renders the proxy site without TLS.
func plainSite(cfg *config.Config) ([]byte, error) {
	content, err := ProxySite(cfg, false, "", "")
	if err != nil {
		return nil, &provisioning.ProxyConfigError{Site: cfg.Proxy.Site, Err: err}
	}
	return content, nil
}

// proxySiteCheck is satisfied by the plain site, or by the TLS site once a
// certificate is on disk. Upgrading to TLS is left to activate-tls, which
// restores the plain site when the proxy rejects it.
func proxySiteCheck(cfg *config.Config, path string) provisioning.CheckFunc {
	return func(ctx *provisioning.Context) (bool, string, error) {
		plain, err := plainSite(cfg)
		if err != nil {
			return false, "", err
		}
		state, err := compareFile(ctx, ctx.Host.Files, path, plain)
		if err != nil {
			return false, "", err
		}
		if state == fileCurrent {
			return true, state.reason(), nil
		}
		tls, chain, key, err := certificatePresent(ctx, cfg)
		if err != nil {
			return false, "", &provisioning.ProxyConfigError{Site: cfg.Proxy.Site, Err: err}
		}
		if !tls {
			return false, state.reason(), nil
		}
		secure, err := ProxySite(cfg, true, chain, key)
		if err != nil {
			return false, "", &provisioning.ProxyConfigError{Site: cfg.Proxy.Site, Err: err}
		}
		tlsState, err := compareFile(ctx, ctx.Host.Files, path, secure)
		if err != nil {
			return false, "", err
		}
		if tlsState == fileCurrent {
			return true, "site serves HTTPS", nil
		}
		return false, state.reason(), nil
	}
}

// certificatePresent reports whether TLS is enabled and both certificate files exist.
func certificatePresent(ctx *provisioning.Context, cfg *config.Config) (bool, string, string, error) {
	if !cfg.TLS.Enabled {
		return false, "", "", nil
	}
	chain, key := ctx.Host.Certificates.CertificatePaths(cfg.Domain)
	for _, path := range []string{chain, key} {
		ok, err := ctx.Host.Files.Exists(ctx, path)
		if err != nil || !ok {
			return false, "", "", err
		}
	}
	return true, chain, key, nil
}

func writeProxySite(cfg *config.Config) provisioning.Step {
	path := cfg.SiteAvailablePath()
	return provisioning.Step{
		Name:        WriteProxySite,
		Description: "Write the reverse proxy site for the domain",
		Resource:    path,
		Idempotency: provisioning.OverwriteSafe,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{InstallPackages, AwaitApplication},
		Check:       proxySiteCheck(cfg, path),
		Action: func(ctx *provisioning.Context) error {
			content, err := plainSite(cfg)
			if err != nil {
				return err
			}
			if err := ctx.Host.Files.WriteFile(ctx, path, content, ProxySiteMode); err != nil {
				return &provisioning.ProxyConfigError{Site: cfg.Proxy.Site, Err: err}
			}
			return nil
		},
	}
}

func enableProxySite(cfg *config.Config) provisioning.Step {
	site := cfg.Proxy.Site
	return provisioning.Step{
		Name:        EnableProxySite,
		Description: "Enable the proxy site",
		Resource:    cfg.SiteEnabledPath(),
		Idempotency: provisioning.ExistenceGated,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{WriteProxySite},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			ok, err := ctx.Host.Proxy.SiteEnabled(ctx, site)
			if err != nil {
				return false, "", err
			}
			if ok {
				return true, "site enabled", nil
			}
			return false, "site not enabled", nil
		},
		Action: func(ctx *provisioning.Context) error {
			if err := ctx.Host.Proxy.EnableSite(ctx, site); err != nil {
				return &provisioning.ProxyConfigError{Site: site, Err: err}
			}
			return nil
		},
	}
}

func validateProxy(cfg *config.Config) provisioning.Step {
	return provisioning.Step{
		Name:        ValidateProxy,
		Description: "Validate the proxy configuration",
		Resource:    "nginx configuration",
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{EnableProxySite},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			if ctx.State.Changed(WriteProxySite, EnableProxySite) {
				return false, "site changed in this run", nil
			}
			return true, "site unchanged", nil
		},
		Action: func(ctx *provisioning.Context) error {
			if err := ctx.Host.Proxy.ValidateConfig(ctx); err != nil {
				return &provisioning.ProxyConfigError{Site: cfg.Proxy.Site, Err: err}
			}
			return nil
		},
		Remediation: "run `nginx -t` and fix the reported file",
	}
}

func reloadProxy(cfg *config.Config) provisioning.Step {
	return provisioning.Step{
		Name:        ReloadProxy,
		Description: "Load the proxy configuration",
		Resource:    "nginx service",
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Fatal,
		DependsOn:   []string{ValidateProxy},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			if ctx.State.Changed(WriteProxySite, EnableProxySite) {
				return false, "site changed in this run", nil
			}
			active, err := ctx.Host.Proxy.Active(ctx)
			if err != nil {
				return false, "", err
			}
			if active {
				return true, "proxy running with current site", nil
			}
			return false, "proxy not running", nil
		},
		Action: func(ctx *provisioning.Context) error {
			if err := ctx.Host.Proxy.Reload(ctx); err != nil {
				return &provisioning.ProxyConfigError{Site: cfg.Proxy.Site, Err: err}
			}
			return nil
		},
	}
}
