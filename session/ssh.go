package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// SSHConfig describes how to reach a MikroTik router whose LTE interface
// fronts the modem.
type SSHConfig struct {
	Host     string
	Port     int // 0 means 22
	Username string
	Password string
	// Interface is the RouterOS LTE interface name the at-chat command
	// targets, e.g. "lte1".
	Interface string
	// Timeout bounds the TCP/SSH handshake. Zero means 10 seconds.
	Timeout time.Duration

	// HostKeyCallback overrides host key verification. When nil the key
	// is not verified, matching how these routers are provisioned on
	// private management networks.
	HostKeyCallback ssh.HostKeyCallback
}

// SSHSession is a Runner that relays AT commands through the RouterOS
// at-chat wrapper over an established SSH connection. A single SSH
// connection carries one ssh.Session per command.
type SSHSession struct {
	client *ssh.Client
	iface  string
}

// DialSSH connects to the router and returns a command runner bound to
// its LTE interface.
func DialSSH(cfg SSHConfig) (*SSHSession, error) {
	if cfg.Host == "" {
		return nil, errors.New("session: ssh host is required")
	}
	if cfg.Username == "" {
		return nil, errors.New("session: ssh username is required")
	}

	port := cfg.Port
	if port == 0 {
		port = 22
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	iface := cfg.Interface
	if iface == "" {
		iface = "lte1"
	}
	hostKey := cfg.HostKeyCallback
	if hostKey == nil {
		hostKey = ssh.InsecureIgnoreHostKey()
	}

	client, err := ssh.Dial("tcp", net.JoinHostPort(cfg.Host, strconv.Itoa(port)), &ssh.ClientConfig{
		User:            cfg.Username,
		Auth:            []ssh.AuthMethod{ssh.Password(cfg.Password)},
		HostKeyCallback: hostKey,
		Timeout:         timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("dial %s:%d: %w", cfg.Host, port, err)
	}

	return &SSHSession{client: client, iface: iface}, nil
}

// Run executes one AT command through the router's at-chat wrapper and
// returns its combined output. The session honoring the context is
// closed on cancellation, which aborts the remote command.
func (s *SSHSession) Run(ctx context.Context, command string) (string, error) {
	sess, err := s.client.NewSession()
	if err != nil {
		return "", fmt.Errorf("open ssh session: %w", err)
	}
	defer sess.Close()

	type result struct {
		out []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := sess.CombinedOutput(chatCommand(s.iface, command))
		done <- result{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		sess.Close()
		return "", fmt.Errorf("command %q: %w", command, ctx.Err())
	case r := <-done:
		if r.err != nil {
			return string(r.out), fmt.Errorf("run %q on %s: %w", command, s.iface, r.err)
		}
		return string(r.out), nil
	}
}

// chatCommand renders the RouterOS CLI invocation that relays one AT
// command to the named LTE interface.
func chatCommand(iface, command string) string {
	return fmt.Sprintf("/interface/lte/at-chat %s input=%s wait=yes", iface, strconv.Quote(command))
}

// Interface returns the RouterOS LTE interface this session targets.
func (s *SSHSession) Interface() string { return s.iface }

// Close tears down the SSH connection.
func (s *SSHSession) Close() error {
	return s.client.Close()
}
