// Package prerequisites checks that the target host has the tools the
// provisioning sequence relies on before anything is changed.
package prerequisites

import (
	"context"
	"fmt"
	"strings"

	"github.com/imamik/erpdeploy/internal/platform/runner"
)

// Tool represents a host tool that may be required.
type Tool struct {
	// Name is the binary name to look for in PATH.
	Name string

	// Required indicates if this tool is mandatory.
	Required bool

	// Description explains what the tool is used for.
	Description string
}

// DefaultTools returns the tools needed before packages are installed.
// Everything else (docker, nginx, certbot, ufw) is installed by the sequence.
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:        "apt-get",
			Required:    true,
			Description: "Installs the container runtime, web server, certificate client and firewall",
		},
		{
			Name:        "dpkg-query",
			Required:    true,
			Description: "Checks which packages are already installed",
		},
		{
			Name:        "systemctl",
			Required:    true,
			Description: "Reloads and queries the nginx service",
		},
	}
}

// OptionalTools returns tools that are useful but not required.
func OptionalTools() []Tool {
	return []Tool{
		{
			Name:        "openssl",
			Required:    false,
			Description: "Reads certificate expiry; without it certificates are requested on every run",
		},
	}
}

// CheckResult contains the result of checking a single tool.
type CheckResult struct {
	Tool  Tool
	Found bool
	Path  string
}

// CheckResults contains the results of checking multiple tools.
type CheckResults struct {
	Results []CheckResult
	Missing []Tool
}

// HasErrors returns true if any required tools are missing.
func (r *CheckResults) HasErrors() bool {
	for _, tool := range r.Missing {
		if tool.Required {
			return true
		}
	}
	return false
}

// Error returns an error if any required tools are missing.
func (r *CheckResults) Error() error {
	var missing []string
	for _, tool := range r.Missing {
		if tool.Required {
			missing = append(missing, fmt.Sprintf("%s (%s)", tool.Name, tool.Description))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("missing required tools on target: %s", strings.Join(missing, ", "))
}

// Warnings describes missing optional tools.
func (r *CheckResults) Warnings() []string {
	var warnings []string
	for _, tool := range r.Missing {
		if !tool.Required {
			warnings = append(warnings, fmt.Sprintf("%s not found: %s", tool.Name, tool.Description))
		}
	}
	return warnings
}

// Check looks up each tool on the target. The error is non-nil only when
// the lookup itself could not be performed.
func Check(ctx context.Context, r runner.Runner, tools []Tool) (*CheckResults, error) {
	results := &CheckResults{}

	for _, tool := range tools {
		result := CheckResult{Tool: tool}

		out, err := r.Run(ctx, "sh", "-c", "command -v "+runner.Quote(tool.Name))
		switch {
		case err == nil:
			result.Found = true
			result.Path = strings.TrimSpace(out)
		case runner.ExitCode(err) > 0:
			results.Missing = append(results.Missing, tool)
		default:
			return nil, fmt.Errorf("failed to look up %s on %s: %w", tool.Name, r.Target(), err)
		}

		results.Results = append(results.Results, result)
	}

	return results, nil
}

// CheckDefault checks the default required tools.
func CheckDefault(ctx context.Context, r runner.Runner) (*CheckResults, error) {
	return Check(ctx, r, DefaultTools())
}

// CheckAll checks all tools (default + optional).
func CheckAll(ctx context.Context, r runner.Runner) (*CheckResults, error) {
	defaults := DefaultTools()
	optional := OptionalTools()
	all := make([]Tool, 0, len(defaults)+len(optional))
	all = append(all, defaults...)
	all = append(all, optional...)
	return Check(ctx, r, all)
}
