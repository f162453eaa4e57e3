package config

import (
	"os"
	"strconv"
	"time"
)

// Timeouts holds the few waits the sequence performs itself.
// Everything else is bounded by the external tool being invoked.
type Timeouts struct {
	StackReady    time.Duration // How long await-application polls the app port
	PollInterval  time.Duration // Interval between readiness probes
	SSHMaxRetries int           // Connection attempts before a remote target is given up
	SSHRetryDelay time.Duration // Initial delay between connection attempts
}

// LoadTimeouts loads timeout configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
//
// Environment Variables:
//   - ERPDEPLOY_TIMEOUT_STACK_READY (default: 5m)
//   - ERPDEPLOY_POLL_INTERVAL (default: 5s)
//   - ERPDEPLOY_SSH_MAX_RETRIES (default: 10)
//   - ERPDEPLOY_SSH_RETRY_DELAY (default: 2s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		StackReady:    parseDuration("ERPDEPLOY_TIMEOUT_STACK_READY", 5*time.Minute),
		PollInterval:  parseDuration("ERPDEPLOY_POLL_INTERVAL", 5*time.Second),
		SSHMaxRetries: parseInt("ERPDEPLOY_SSH_MAX_RETRIES", 10),
		SSHRetryDelay: parseDuration("ERPDEPLOY_SSH_RETRY_DELAY", 2*time.Second),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}

	return d
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}

	return i
}
