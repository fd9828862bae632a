package session

import "errors"

var (
	// ErrNoDialer is returned when a Device is constructed without a Dialer.
	//
	// This indicates a configuration error. A Dialer is required in order to
	// establish a connection to the modem.
	ErrNoDialer = errors.New("no dialer configured")

	// ErrAlreadyClosed is returned when Close is called on a Device or
	// session that has already been closed.
	ErrAlreadyClosed = errors.New("session already closed")

	// ErrNotFound is returned when a session token does not resolve to a
	// live session, either because it never existed or because the session
	// was removed by Cleanup.
	ErrNotFound = errors.New("session not found")
)
