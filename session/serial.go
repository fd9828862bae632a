package session

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.bug.st/serial"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
)

// defaultCommandTimeout bounds a single command exchange when the caller's
// context carries no deadline.
const defaultCommandTimeout = 10 * time.Second

// SerialDialer opens a modem over a local serial port using
// go.bug.st/serial.
type SerialDialer struct {
	// PortName is the device path, e.g. /dev/ttyUSB2.
	PortName string
	// Mode holds the port parameters. When nil, 115200 8N1 is used.
	Mode *serial.Mode
}

// Dial opens the serial port and returns it as a Transport.
func (d SerialDialer) Dial(ctx context.Context) (Transport, error) {
	if ctx == nil {
		return nil, errors.New("session: context is nil")
	}
	if d.PortName == "" {
		return nil, errors.New("session: serial port name is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mode := d.Mode
	if mode == nil {
		mode = &serial.Mode{BaudRate: 115200}
	}
	port, err := serial.Open(d.PortName, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", d.PortName, err)
	}
	return port, nil
}

// Device is a Runner backed by a directly attached modem. All commands
// flow through a single request/response exchange on the transport; a
// mutex serializes callers so responses cannot interleave.
type Device struct {
	mu        sync.Mutex
	transport Transport
	scanner   *bufio.Scanner
	closed    bool

	// Timeout bounds each command when the caller's context has no
	// deadline. Zero means defaultCommandTimeout.
	Timeout time.Duration
}

// NewDevice dials the transport and verifies the modem responds,
// disabling command echo so responses parse uniformly.
func NewDevice(ctx context.Context, dialer Dialer) (*Device, error) {
	if dialer == nil {
		return nil, ErrNoDialer
	}
	transport, err := dialer.Dial(ctx)
	if err != nil {
		return nil, err
	}

	d := &Device{
		transport: transport,
		scanner:   bufio.NewScanner(transport),
	}
	d.scanner.Split(at.Splitter)

	if _, err := d.Run(ctx, at.CmdAT); err != nil {
		transport.Close()
		return nil, fmt.Errorf("modem not responding: %w", err)
	}
	if _, err := d.Run(ctx, at.CmdEchoOff); err != nil {
		transport.Close()
		return nil, fmt.Errorf("disable echo: %w", err)
	}
	return d, nil
}

// Run writes one AT command and collects response lines until a final
// result token arrives. The returned text includes the terminal OK or
// ERROR line so the parser can classify the outcome.
func (d *Device) Run(ctx context.Context, command string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return "", ErrAlreadyClosed
	}

	if _, ok := ctx.Deadline(); !ok {
		timeout := d.Timeout
		if timeout == 0 {
			timeout = defaultCommandTimeout
		}
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	wire := strings.TrimSpace(command) + "\r"
	if _, err := d.transport.Write([]byte(wire)); err != nil {
		return "", fmt.Errorf("write command %q: %w", command, err)
	}

	var lines []string
	for {
		select {
		case <-ctx.Done():
			return strings.Join(lines, at.CRLF), ctx.Err()
		default:
		}

		if !d.scanner.Scan() {
			if err := d.scanner.Err(); err != nil {
				return strings.Join(lines, at.CRLF), fmt.Errorf("read response: %w", err)
			}
			return strings.Join(lines, at.CRLF), fmt.Errorf("transport closed mid-response for %q", command)
		}

		line := d.scanner.Text()
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if at.Classify(line) == at.TypeFinal {
			return strings.Join(lines, at.CRLF), nil
		}
	}
}

// Close shuts the device down and releases the transport. After Close
// the device cannot be reused.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return ErrAlreadyClosed
	}
	d.closed = true
	return d.transport.Close()
}
