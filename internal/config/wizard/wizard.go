package wizard

import (
	"context"
	"fmt"
)

// WizardResult holds all the answers from the interactive wizard.
type WizardResult struct {
	// Site
	Domain string
	Email  string

	// Application
	AppVersion string
	Workers    int

	// Security
	TLS      bool
	Staging  bool
	Firewall bool

	// Target (empty Host means the local machine)
	Remote  bool
	Host    string
	Port    int
	User    string
	KeyFile string
	Sudo    bool
}

// RunWizard runs the interactive configuration wizard.
// If advanced is true, additional configuration options are shown.
// The context is used for cancellation support (e.g., Ctrl+C).
func RunWizard(ctx context.Context, advanced bool) (*WizardResult, error) {
	result := &WizardResult{}

	if err := runSiteGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("site: %w", err)
	}

	if err := runApplicationGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("application: %w", err)
	}

	if err := runSecurityGroup(ctx, result, advanced); err != nil {
		return nil, fmt.Errorf("security: %w", err)
	}

	if err := runTargetGroup(ctx, result); err != nil {
		return nil, fmt.Errorf("target: %w", err)
	}

	return result, nil
}
