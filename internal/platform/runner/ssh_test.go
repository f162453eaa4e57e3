package runner

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"
)

// generateTestKey returns a PEM-encoded OpenSSH private key.
func generateTestKey(t *testing.T) []byte {
	t.Helper()
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	block, err := ssh.MarshalPrivateKey(priv, "")
	require.NoError(t, err)
	return pem.EncodeToMemory(block)
}

func TestNewSSH_Defaults(t *testing.T) {
	t.Parallel()

	r, err := NewSSH(SSHConfig{Host: "192.0.2.10", User: "deploy", PrivateKey: generateTestKey(t)})
	require.NoError(t, err)

	assert.Equal(t, defaultPort, r.config.Port)
	assert.Equal(t, defaultDialTimeout, r.config.DialTimeout)
	assert.Equal(t, defaultMaxRetries, r.config.MaxRetries)
	assert.Equal(t, defaultRetryDelay, r.config.RetryDelay)
	assert.InDelta(t, defaultBackoff, r.config.RetryBackoff, 0.001)
	assert.Equal(t, "192.0.2.10:22", r.Target())
}

func TestNewSSH_Validation(t *testing.T) {
	t.Parallel()
	key := generateTestKey(t)

	tests := []struct {
		name    string
		cfg     SSHConfig
		wantErr string
	}{
		{"empty host", SSHConfig{User: "root", PrivateKey: key}, "host cannot be empty"},
		{"empty user", SSHConfig{Host: "h", PrivateKey: key}, "user cannot be empty"},
		{"empty key", SSHConfig{Host: "h", User: "root"}, "private key cannot be empty"},
		{"invalid key", SSHConfig{Host: "h", User: "root", PrivateKey: []byte("invalid key")}, "failed to parse private key"},
		{"missing known hosts", SSHConfig{Host: "h", User: "root", PrivateKey: key, KnownHostsFile: "/nonexistent/known_hosts"}, "failed to load known hosts"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewSSH(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSSH_CommandLine(t *testing.T) {
	t.Parallel()
	key := generateTestKey(t)

	plain, err := NewSSH(SSHConfig{Host: "h", User: "root", PrivateKey: key})
	require.NoError(t, err)
	assert.Equal(t, "ufw allow 'Nginx Full'", plain.commandLine("ufw", "allow", "Nginx Full"))

	elevated, err := NewSSH(SSHConfig{Host: "h", User: "deploy", PrivateKey: key, Sudo: true})
	require.NoError(t, err)
	assert.Equal(t, "sudo -n ufw allow 'Nginx Full'", elevated.commandLine("ufw", "allow", "Nginx Full"))
}

func TestSSH_RunRequiresConnection(t *testing.T) {
	t.Parallel()

	r, err := NewSSH(SSHConfig{Host: "h", User: "root", PrivateKey: generateTestKey(t)})
	require.NoError(t, err)

	_, err = r.Run(context.Background(), "true")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
	assert.NoError(t, r.Close())
}

func TestSSH_ConnectCancelled(t *testing.T) {
	t.Parallel()

	r, err := NewSSH(SSHConfig{
		Host:       "127.0.0.1",
		Port:       1,
		User:       "root",
		PrivateKey: generateTestKey(t),
		MaxRetries: 3,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = r.Connect(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
