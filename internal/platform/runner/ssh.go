package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/imamik/erpdeploy/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 10
	defaultRetryDelay  = 2 * time.Second
	defaultMaxDelay    = 10 * time.Second
	defaultBackoff     = 1.5
)

// SSHConfig holds SSH client configuration.
type SSHConfig struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// Sudo prefixes every command with "sudo -n" for non-root users.
	Sudo bool

	// KnownHostsFile enables host key verification. When empty,
	// ssh.InsecureIgnoreHostKey() is used.
	KnownHostsFile string

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// RetryBackoff multiplies the delay after each failed attempt.
	// If zero, defaultBackoff is used.
	RetryBackoff float64

	// OnRetry is called when a connection attempt fails and will be retried.
	OnRetry func(attempt int, err error)
}

// SSH runs commands on a remote host over one shared connection.
// A session is opened per command.
type SSH struct {
	config   SSHConfig
	signer   ssh.Signer
	hostKeys ssh.HostKeyCallback

	mu     sync.Mutex
	client *ssh.Client
}

// NewSSH validates the configuration and parses the private key.
// No connection is made until Connect.
func NewSSH(cfg SSHConfig) (*SSH, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.DialTimeout == 0 {
		cfg.DialTimeout = defaultDialTimeout
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = defaultRetryDelay
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = defaultBackoff
	}

	signer, err := ssh.ParsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	hostKeys := ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in verification via KnownHostsFile
	if cfg.KnownHostsFile != "" {
		hostKeys, err = knownhosts.New(cfg.KnownHostsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load known hosts %s: %w", cfg.KnownHostsFile, err)
		}
	}

	return &SSH{config: cfg, signer: signer, hostKeys: hostKeys}, nil
}

// Target implements Runner.
func (s *SSH) Target() string {
	return s.addr()
}

func (s *SSH) addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Connect dials the host with exponential backoff. Authentication failures
// are not retried.
func (s *SSH) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client != nil {
		return nil
	}

	clientConfig := &ssh.ClientConfig{
		User:            s.config.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(s.signer)},
		HostKeyCallback: s.hostKeys,
		Timeout:         s.config.DialTimeout,
	}

	addr := s.addr()
	err := retry.WithExponentialBackoff(ctx, func() error {
		client, dialErr := ssh.Dial("tcp", addr, clientConfig)
		if dialErr != nil {
			if isAuthError(dialErr) {
				return retry.Fatal(dialErr)
			}
			return dialErr
		}
		s.client = client
		return nil
	},
		retry.WithMaxRetries(s.config.MaxRetries),
		retry.WithInitialDelay(s.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
		retry.WithMultiplier(s.config.RetryBackoff),
		retry.WithOnRetry(s.config.OnRetry),
	)
	if err != nil {
		return fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}
	return nil
}

// Close releases the connection.
func (s *SSH) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func isAuthError(err error) bool {
	var keyErr *knownhosts.KeyError
	if errors.As(err, &keyErr) {
		return true
	}
	return strings.Contains(err.Error(), "unable to authenticate")
}

// Run implements Runner.
func (s *SSH) Run(ctx context.Context, name string, args ...string) (string, error) {
	out := &combinedBuffer{}
	err := s.exec(ctx, s.commandLine(name, args...), nil, out, out)
	return out.String(), err
}

// ReadFile implements Runner.
func (s *SSH) ReadFile(ctx context.Context, p string) ([]byte, error) {
	var stdout, stderr combinedBuffer
	if err := s.exec(ctx, s.commandLine("cat", p), nil, &stdout, &stderr); err != nil {
		if ExitCode(err) == 1 && strings.Contains(stderr.String(), "No such file") {
			return nil, fmt.Errorf("read %s: %w", p, os.ErrNotExist)
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

// WriteFile implements Runner. Data is streamed to a temporary file next to
// path, which is then renamed over it.
func (s *SSH) WriteFile(ctx context.Context, p string, data []byte, perm os.FileMode) error {
	tmp := path.Join(path.Dir(p), "."+path.Base(p)+".erpdeploy-tmp")
	script := fmt.Sprintf("umask 077 && cat > %s && chmod %o %s && mv -f %s %s",
		Quote(tmp), perm.Perm(), Quote(tmp), Quote(tmp), Quote(p))

	out := &combinedBuffer{}
	if err := s.exec(ctx, s.commandLine("sh", "-c", script), bytes.NewReader(data), out, out); err != nil {
		return fmt.Errorf("failed to write %s: %w", p, err)
	}
	return nil
}

// MkdirAll implements Runner.
func (s *SSH) MkdirAll(ctx context.Context, p string, perm os.FileMode) error {
	_, err := s.Run(ctx, "mkdir", "-p", "-m", strconv.FormatUint(uint64(perm.Perm()), 8), p)
	return err
}

// Exists implements Runner.
func (s *SSH) Exists(ctx context.Context, p string) (bool, error) {
	script := fmt.Sprintf("test -e %s || test -L %s", Quote(p), Quote(p))
	_, err := s.Run(ctx, "sh", "-c", script)
	if err == nil {
		return true, nil
	}
	if ExitCode(err) == 1 {
		return false, nil
	}
	return false, err
}

// Symlink implements Runner.
func (s *SSH) Symlink(ctx context.Context, target, link string) error {
	_, err := s.Run(ctx, "ln", "-sfn", target, link)
	return err
}

// Chown implements Runner.
func (s *SSH) Chown(ctx context.Context, p string, uid, gid int) error {
	_, err := s.Run(ctx, "chown", fmt.Sprintf("%d:%d", uid, gid), p)
	return err
}

// commandLine renders the remote command, elevated when configured.
func (s *SSH) commandLine(name string, args ...string) string {
	if s.config.Sudo {
		return CommandLine("sudo", append([]string{"-n", name}, args...)...)
	}
	return CommandLine(name, args...)
}

// exec runs cmd in a new session. The session is closed if ctx is cancelled.
func (s *SSH) exec(ctx context.Context, cmd string, stdin io.Reader, stdout, stderr *combinedBuffer) error {
	s.mu.Lock()
	client := s.client
	s.mu.Unlock()
	if client == nil {
		return fmt.Errorf("ssh runner for %s is not connected", s.addr())
	}

	session, err := client.NewSession()
	if err != nil {
		return fmt.Errorf("failed to create SSH session on %s: %w", s.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	if stdin != nil {
		session.Stdin = stdin
	}
	session.Stdout = stdout
	session.Stderr = stderr

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = session.Close()
		case <-done:
		}
	}()

	if err := session.Run(cmd); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		exitCode := -1
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			exitCode = exitErr.ExitStatus()
		}
		return &CommandError{Cmd: cmd, Output: stderr.String(), ExitCode: exitCode, Err: err}
	}
	return nil
}

// combinedBuffer is safe for concurrent writes from the session's stdout and
// stderr copiers.
type combinedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *combinedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *combinedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func (b *combinedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}
