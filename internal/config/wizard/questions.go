package wizard

import (
	"context"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
)

// domainRegex accepts fully qualified host names with at least one dot.
var domainRegex = regexp.MustCompile(`^(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)(?:\.(?i:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?))+$`)

// runSiteGroup prompts for the public domain and certificate contact.
func runSiteGroup(ctx context.Context, result *WizardResult) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Domain").
				Description("Public host name the site is served on").
				Placeholder("erp.example.com").
				Value(&result.Domain).
				Validate(validateDomain),
			huh.NewInput().
				Title("Email").
				Description("Contact address for certificate expiry notices").
				Placeholder("admin@example.com").
				Value(&result.Email).
				Validate(validateEmail),
		).Title("Site"),
	).RunWithContext(ctx)
}

// runApplicationGroup prompts for the release and process layout.
func runApplicationGroup(ctx context.Context, result *WizardResult) error {
	result.AppVersion = DefaultAppVersion()

	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Release").
				Options(VersionsToOptions(AppVersions)...).
				Value(&result.AppVersion),
			huh.NewSelect[int]().
				Title("Workers").
				Description("Multi-process mode for busier sites").
				Options(WorkerCountOptions...).
				Value(&result.Workers),
		).Title("Application"),
	).RunWithContext(ctx)
}

// runSecurityGroup prompts for firewall and certificate settings.
func runSecurityGroup(ctx context.Context, result *WizardResult, advanced bool) error {
	result.TLS = true
	result.Firewall = true

	fields := []huh.Field{
		huh.NewConfirm().
			Title("Obtain a TLS certificate?").
			Description("Requires the domain to resolve to this host").
			Value(&result.TLS),
		huh.NewConfirm().
			Title("Enable the firewall?").
			Description("Allows SSH and web traffic, denies the rest").
			Value(&result.Firewall),
	}
	if advanced {
		fields = append(fields, huh.NewConfirm().
			Title("Use the staging certificate authority?").
			Description("Untrusted certificates without rate limits, for testing").
			Value(&result.Staging))
	}

	return huh.NewForm(huh.NewGroup(fields...).Title("Security")).RunWithContext(ctx)
}

// runTargetGroup asks whether to provision over SSH and, if so, where.
func runTargetGroup(ctx context.Context, result *WizardResult) error {
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Provision a remote host over SSH?").
				Description("No provisions the machine erpdeploy runs on").
				Value(&result.Remote),
		).Title("Target"),
	).RunWithContext(ctx)
	if err != nil || !result.Remote {
		return err
	}

	port := "22"
	result.User = "root"
	err = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Host").
				Placeholder("203.0.113.10").
				Value(&result.Host).
				Validate(validateHost),
			huh.NewInput().
				Title("Port").
				Value(&port).
				Validate(validatePort),
			huh.NewInput().
				Title("User").
				Value(&result.User),
			huh.NewInput().
				Title("Private key file (Optional)").
				Description("Leave empty to use the SSH agent").
				Placeholder("~/.ssh/id_ed25519").
				Value(&result.KeyFile),
			huh.NewConfirm().
				Title("Use sudo?").
				Description("For users other than root with passwordless sudo").
				Value(&result.Sudo),
		).Title("Remote Host"),
	).RunWithContext(ctx)
	if err != nil {
		return err
	}

	result.Port, _ = strconv.Atoi(port)
	return nil
}

func validateDomain(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errDomainRequired
	}
	if !domainRegex.MatchString(s) {
		return errDomainInvalid
	}
	return nil
}

func validateEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return errEmailRequired
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return errEmailInvalid
	}
	return nil
}

func validateHost(s string) error {
	if strings.TrimSpace(s) == "" {
		return errHostRequired
	}
	return nil
}

func validatePort(s string) error {
	port, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || port < 1 || port > 65535 {
		return errPortInvalid
	}
	return nil
}
