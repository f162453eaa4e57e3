package wizard

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/imamik/erpdeploy/internal/config"
)

// Function variable for dependency injection in tests.
var confirmOverwrite = defaultConfirmOverwrite

// WriteConfig writes the config to a YAML file with a descriptive header.
// If fullOutput is false, only essential non-default values are written.
// Secrets are always left out.
func WriteConfig(cfg *config.Config, outputPath string, fullOutput bool) error {
	var yamlBytes []byte
	var err error

	if fullOutput {
		yamlBytes, err = marshalWithoutSecrets(cfg)
	} else {
		yamlBytes, err = yaml.Marshal(buildMinimalConfig(cfg))
	}

	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	var sb strings.Builder
	sb.WriteString(generateHeader(outputPath, fullOutput))
	sb.WriteString("\n")
	sb.Write(yamlBytes)

	if err := os.WriteFile(outputPath, []byte(sb.String()), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	return nil
}

// marshalWithoutSecrets encodes every setting except the passwords.
func marshalWithoutSecrets(cfg *config.Config) ([]byte, error) {
	var doc yaml.Node
	if err := doc.Encode(cfg); err != nil {
		return nil, err
	}
	removeKey(&doc, "master_password")
	if db := mappingValue(&doc, "database"); db != nil {
		removeKey(db, "password")
	}
	return yaml.Marshal(&doc)
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

func removeKey(m *yaml.Node, key string) {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			m.Content = append(m.Content[:i], m.Content[i+2:]...)
			return
		}
	}
}

// MinimalConfig represents the minimal configuration for YAML output.
// Only contains fields that are essential or explicitly set by the user.
type MinimalConfig struct {
	Domain   string                `yaml:"domain"`
	Email    string                `yaml:"email,omitempty"`
	App      MinimalAppConfig      `yaml:"app"`
	TLS      MinimalTLSConfig      `yaml:"tls"`
	Firewall MinimalFirewallConfig `yaml:"firewall"`
	Target   *MinimalTargetConfig  `yaml:"target,omitempty"`
}

// MinimalAppConfig contains essential application settings.
type MinimalAppConfig struct {
	Version string `yaml:"version"`
	Workers int    `yaml:"workers,omitempty"`
}

// MinimalTLSConfig contains certificate settings.
type MinimalTLSConfig struct {
	Enabled bool `yaml:"enabled"`
	Staging bool `yaml:"staging,omitempty"`
}

// MinimalFirewallConfig contains firewall settings.
type MinimalFirewallConfig struct {
	Enabled bool `yaml:"enabled"`
}

// MinimalTargetConfig contains the remote host, if any.
type MinimalTargetConfig struct {
	Host    string `yaml:"host"`
	Port    int    `yaml:"port,omitempty"`
	User    string `yaml:"user,omitempty"`
	KeyFile string `yaml:"key_file,omitempty"`
	Sudo    bool   `yaml:"sudo,omitempty"`
}

// buildMinimalConfig creates a minimal config from the full config.
func buildMinimalConfig(cfg *config.Config) *MinimalConfig {
	minCfg := &MinimalConfig{
		Domain: cfg.Domain,
		Email:  cfg.Email,
		App: MinimalAppConfig{
			Version: cfg.App.Version,
			Workers: cfg.App.Workers,
		},
		TLS: MinimalTLSConfig{
			Enabled: cfg.TLS.Enabled,
			Staging: cfg.TLS.Staging,
		},
		Firewall: MinimalFirewallConfig{Enabled: cfg.Firewall.Enabled},
	}

	if cfg.Target.IsRemote() {
		minCfg.Target = &MinimalTargetConfig{
			Host:    cfg.Target.Host,
			KeyFile: cfg.Target.KeyFile,
			Sudo:    cfg.Target.Sudo,
		}
		if cfg.Target.Port != config.DefaultSSHPort {
			minCfg.Target.Port = cfg.Target.Port
		}
		if cfg.Target.User != config.DefaultSSHUser {
			minCfg.Target.User = cfg.Target.User
		}
	}

	return minCfg
}

// generateHeader creates the YAML file header comment.
func generateHeader(outputPath string, fullOutput bool) string {
	mode := "minimal"
	note := "\n# Note: This is a minimal config. Use --full flag for all options."
	if fullOutput {
		mode = "full"
		note = ""
	}
	return fmt.Sprintf(`# erpdeploy configuration
# Generated by: erpdeploy init
# Generated at: %s
# Output mode: %s%s
#
# Required environment variables:
#   ERPDEPLOY_MASTER_PASSWORD   - database manager password
#   ERPDEPLOY_DATABASE_PASSWORD - database user password
#
# Usage:
#   export ERPDEPLOY_MASTER_PASSWORD=<secret> ERPDEPLOY_DATABASE_PASSWORD=<secret>
#   erpdeploy apply -c %s
`, time.Now().Format(time.RFC3339), mode, note, outputPath)
}

// FileExists checks if a file exists at the given path.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// ConfirmOverwrite prompts the user to confirm overwriting an existing file.
func ConfirmOverwrite(path string) (bool, error) {
	return confirmOverwrite(path)
}

// defaultConfirmOverwrite is the default implementation that prompts via stdin.
func defaultConfirmOverwrite(path string) (bool, error) {
	fmt.Printf("\nFile already exists: %s\n", path)
	fmt.Print("Overwrite? (y/n): ")

	var response string
	if _, err := fmt.Scanln(&response); err != nil {
		return false, err
	}

	response = strings.ToLower(strings.TrimSpace(response))
	return response == "y" || response == "yes", nil
}
