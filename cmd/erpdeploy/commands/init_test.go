package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/imamik/erpdeploy/internal/config"
)

func TestInit(t *testing.T) {
	cmd := Init()

	require.NotNil(t, cmd)
	assert.Equal(t, "init", cmd.Use)
	assert.Equal(t, "Create a deployment configuration", cmd.Short)
	assert.NotNil(t, cmd.RunE)
}

func TestInit_Flags(t *testing.T) {
	cmd := Init()

	tests := []struct {
		name      string
		shorthand string
		defValue  string
	}{
		{"output", "o", config.DefaultConfigFile},
		{"advanced", "a", "false"},
		{"full", "f", "false"},
		{"force", "", "false"},
		{"non-interactive", "", "false"},
		{"app-version", "", "17.0"},
		{"tls", "", "true"},
		{"firewall", "", "true"},
		{"port", "", "22"},
		{"identity", "i", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.defValue, flag.DefValue)
		})
	}
}
