package session

import "context"

//go:generate go tool mockgen -destination=mock_runner.go -package=session -source=runner.go

// Runner executes one AT command against a modem and delivers the
// complete response text, including the terminal OK or ERROR token. It
// is the input contract feeding telemetry.Parse: implementations hide
// whether the modem sits behind a local serial port (Device) or a
// MikroTik router reached over SSH (SSHSession).
type Runner interface {
	Run(ctx context.Context, command string) (string, error)
}
