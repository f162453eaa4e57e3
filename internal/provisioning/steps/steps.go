package steps

import (
	"github.com/imamik/erpdeploy/internal/config"
	"github.com/imamik/erpdeploy/internal/provisioning"
)

// Build returns the provisioning sequence for cfg. Firewall steps are left
// out when the firewall is disabled, certificate steps when TLS is disabled.
func Build(cfg *config.Config) []provisioning.Step {
	steps := []provisioning.Step{
		installPackages(cfg),
		createDirectories(cfg),
		writeServiceConfig(cfg),
		writeStackDescriptor(cfg),
		createNetwork(cfg),
		createVolumes(cfg),
		startStack(cfg),
		awaitApplication(cfg),
	}
	if cfg.Firewall.Enabled {
		steps = append(steps, firewallSteps(cfg)...)
	}
	steps = append(steps,
		writeProxySite(cfg),
		enableProxySite(cfg),
		validateProxy(cfg),
		reloadProxy(cfg),
	)
	if cfg.TLS.Enabled {
		steps = append(steps,
			issueCertificate(cfg),
			activateTLS(cfg),
		)
	}
	return steps
}

// Names returns the step names of steps in order.
func Names(steps []provisioning.Step) []string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = s.Name
	}
	return names
}
