// Package shell maintains the SSH channel to the room controller's API shell.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/zrctl/internal/logging"
)

var (
	// ErrNotConnected is returned by Send before Connect succeeds.
	ErrNotConnected = errors.New("shell not connected")
	// ErrLoginRejected is returned when the shell refuses the credentials.
	ErrLoginRejected = errors.New("login rejected")
)

// Banners the shell prints once a login completes or fails.
var (
	loginSuccess = []string{"** end", "Login successful"}
	loginFailure = []string{"Permission denied"}
)

// Config holds SSH connection settings
type Config struct {
	Host       string
	Port       int
	Username   string
	Password   string
	KnownHosts string // known_hosts file; empty accepts any host key

	ConnectTimeout time.Duration // TCP dial, handshake and login banner
	ReadTimeout    time.Duration // wait for a response to start
	IdleTimeout    time.Duration // quiet gap that ends a response
	LineEnding     string

	Logger *slog.Logger
}

// DefaultConfig returns default connection settings
func DefaultConfig() Config {
	return Config{
		Port:           2244,
		Username:       "zoom",
		ConnectTimeout: 10 * time.Second,
		ReadTimeout:    5 * time.Second,
		IdleTimeout:    300 * time.Millisecond,
		LineEnding:     "\r",
	}
}

// Client is a line-oriented SSH shell session. It reconnects only when asked.
type Client struct {
	config  Config
	hostKey ssh.HostKeyCallback
	logger  *slog.Logger

	mu      sync.Mutex
	client  *ssh.Client
	session *ssh.Session
	stdin   io.WriteCloser
	out     *stream
}

// New creates a client. No connection is made until Connect.
func New(cfg Config) (*Client, error) {
	defaults := DefaultConfig()
	if cfg.Port == 0 {
		cfg.Port = defaults.Port
	}
	if cfg.Username == "" {
		cfg.Username = defaults.Username
	}
	if cfg.ConnectTimeout == 0 {
		cfg.ConnectTimeout = defaults.ConnectTimeout
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = defaults.ReadTimeout
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = defaults.IdleTimeout
	}
	if cfg.LineEnding == "" {
		cfg.LineEnding = defaults.LineEnding
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.With("component", "shell")
	}
	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}

	hostKey, err := hostKeyCallback(cfg.KnownHosts)
	if err != nil {
		return nil, err
	}
	if cfg.KnownHosts == "" {
		cfg.Logger.Warn("No known_hosts configured, accepting any host key", logging.Host(cfg.Host, cfg.Port)...)
	}

	return &Client{
		config:  cfg,
		hostKey: hostKey,
		logger:  cfg.Logger,
	}, nil
}

// Addr returns host:port
func (c *Client) Addr() string {
	return net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
}

// IsConnected reports whether the shell session is open
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.out != nil && !c.out.closed()
}

// Connect opens a fresh SSH session, closing any previous one, and waits for
// the login banner.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closeLocked()
	start := time.Now()

	dialer := net.Dialer{Timeout: c.config.ConnectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", c.Addr())
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.Addr(), err)
	}

	sshConfig := &ssh.ClientConfig{
		User: c.config.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(c.config.Password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = c.config.Password
				}
				return answers, nil
			}),
		},
		HostKeyCallback: c.hostKey,
		Timeout:         c.config.ConnectTimeout,
	}

	_ = conn.SetDeadline(time.Now().Add(c.config.ConnectTimeout))
	sc, chans, reqs, err := ssh.NewClientConn(conn, c.Addr(), sshConfig)
	if err != nil {
		conn.Close()
		return fmt.Errorf("ssh handshake: %w", err)
	}
	_ = conn.SetDeadline(time.Time{})
	client := ssh.NewClient(sc, chans, reqs)

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return fmt.Errorf("open session: %w", err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		client.Close()
		return fmt.Errorf("stdin pipe: %w", err)
	}
	stdout, err := session.StdoutPipe()
	if err != nil {
		client.Close()
		return fmt.Errorf("stdout pipe: %w", err)
	}
	if err := session.Shell(); err != nil {
		client.Close()
		return fmt.Errorf("start shell: %w", err)
	}

	out := newStream(stdout)
	if _, err := out.collect(ctx, c.config.ConnectTimeout, 0, loginComplete); err != nil {
		client.Close()
		if errors.Is(err, errReadTimeout) {
			return fmt.Errorf("login: no banner within %v", c.config.ConnectTimeout)
		}
		return fmt.Errorf("login: %w", err)
	}

	c.client = client
	c.session = session
	c.stdin = stdin
	c.out = out

	c.logger.Info("Connected", append(logging.Host(c.config.Host, c.config.Port),
		logging.Duration("elapsed", time.Since(start)))...)
	return nil
}

func loginComplete(banner string) (bool, error) {
	for _, literal := range loginFailure {
		if strings.Contains(banner, literal) {
			return false, ErrLoginRejected
		}
	}
	for _, literal := range loginSuccess {
		if strings.Contains(banner, literal) {
			return true, nil
		}
	}
	return false, nil
}

// Send writes one command and returns everything the shell printed until it
// went quiet. An empty response is not an error.
func (c *Client) Send(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.out == nil {
		return "", ErrNotConnected
	}

	c.out.discard()
	line := strings.TrimRight(command, "\r\n") + c.config.LineEnding
	if _, err := io.WriteString(c.stdin, line); err != nil {
		c.closeLocked()
		return "", fmt.Errorf("write failed: %w", err)
	}

	resp, err := c.out.collect(ctx, c.config.ReadTimeout, c.config.IdleTimeout, nil)
	switch {
	case err == nil, errors.Is(err, errReadTimeout):
		return resp, nil
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resp, err
	default:
		c.logger.Warn("Shell closed", logging.Err(err))
		c.closeLocked()
		return resp, fmt.Errorf("read failed: %w", err)
	}
}

// Close ends the session
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Client) closeLocked() error {
	if c.client == nil {
		return nil
	}
	if c.session != nil {
		_ = c.session.Close()
	}
	err := c.client.Close()
	c.client = nil
	c.session = nil
	c.stdin = nil
	c.out = nil
	return err
}
