package steps

import (
	"errors"
	"fmt"
	"os"

	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

func issueCertificate(cfg *config.Config) provisioning.Step {
	return provisioning.Step{
		Name:        IssueCertificate,
		Description: "Obtain a TLS certificate for the domain",
		Resource:    "certificate " + cfg.Domain,
		Idempotency: provisioning.NativelyIdempotent,
		Policy:      provisioning.Tolerant,
		DependsOn:   []string{ReloadProxy},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			ok, err := ctx.Host.Certificates.Valid(ctx, cfg.Domain)
			if err != nil {
				return false, "", err
			}
			if ok {
				return true, fmt.Sprintf("certificate valid for more than %s", cfg.TLS.RenewBefore), nil
			}
			return false, "certificate missing or due for renewal", nil
		},
		Action: func(ctx *provisioning.Context) error {
			if err := ctx.Host.Certificates.Issue(ctx, cfg.Domain, cfg.Email); err != nil {
				return &provisioning.CertificateIssuanceError{
					Domain: cfg.Domain,
					Remedy: ctx.Host.Certificates.RemediationCommand(cfg.Domain, cfg.Email),
					Err:    err,
				}
			}
			return nil
		},
	}
}

func activateTLS(cfg *config.Config) provisioning.Step {
	path := cfg.SiteAvailablePath()
	return provisioning.Step{
		Name:        ActivateTLS,
		Description: "Serve the site over HTTPS",
		Resource:    path,
		Idempotency: provisioning.OverwriteSafe,
		Policy:      provisioning.Tolerant,
		DependsOn:   []string{ReloadProxy},
		Check: func(ctx *provisioning.Context) (bool, string, error) {
			present, chain, key, err := certificatePresent(ctx, cfg)
			if err != nil {
				return false, "", err
			}
			if !present {
				return false, "no certificate on disk", nil
			}
			content, err := ProxySite(cfg, true, chain, key)
			if err != nil {
				return false, "", err
			}
			state, err := compareFile(ctx, ctx.Host.Files, path, content)
			if err != nil {
				return false, "", err
			}
			if state == fileCurrent {
				return true, "site serves HTTPS", nil
			}
			return false, "site serves plain HTTP only", nil
		},
		Action: func(ctx *provisioning.Context) error {
			issue := ctx.Host.Certificates.RemediationCommand(cfg.Domain, cfg.Email)
			fail := func(remedy string, err error) error {
				return &provisioning.CertificateIssuanceError{Domain: cfg.Domain, Remedy: remedy, Err: err}
			}

			present, chain, key, err := certificatePresent(ctx, cfg)
			if err != nil {
				return fail(issue, err)
			}
			if !present {
				return fail(issue+" && erpdeploy apply", errors.New("no certificate available"))
			}
			content, err := ProxySite(cfg, true, chain, key)
			if err != nil {
				return fail(issue, err)
			}

			previous, err := ctx.Host.Files.ReadFile(ctx, path)
			if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fail(issue, err)
			}
			if err := ctx.Host.Files.WriteFile(ctx, path, content, ProxySiteMode); err != nil {
				return fail(issue, err)
			}
			if err := ctx.Host.Proxy.ValidateConfig(ctx); err != nil {
				// put the plain site back so the proxy keeps serving
				if previous != nil {
					if restoreErr := ctx.Host.Files.WriteFile(ctx, path, previous, ProxySiteMode); restoreErr != nil {
						err = errors.Join(err, fmt.Errorf("failed to restore %s: %w", path, restoreErr))
					}
				}
				return fail("run `nginx -t` to inspect the HTTPS site, then erpdeploy apply", err)
			}
			if err := ctx.Host.Proxy.Reload(ctx); err != nil {
				return fail("systemctl reload nginx", err)
			}
			return nil
		},
	}
}
