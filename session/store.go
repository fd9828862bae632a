package session

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/telemetry"
)

// Entry is one live session in the Store: a Runner plus the connection
// metadata it was created with and the most recent telemetry reading.
type Entry struct {
	Token     string
	Host      string
	Username  string
	Interface string
	Port      int

	runner   Runner
	created  time.Time
	lastUsed time.Time
	record   *telemetry.TelemetryRecord
}

// Runner returns the command runner bound to this session.
func (e *Entry) Runner() Runner { return e.runner }

// Reading pairs a session's identity with its most recent telemetry
// record, for consumers that walk all sessions (the metrics collector).
type Reading struct {
	Host      string
	Interface string
	Record    *telemetry.TelemetryRecord
}

// Store holds live sessions keyed by opaque URL-safe tokens. All methods
// are safe for concurrent use.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Entry

	// now is stubbed in tests.
	now func() time.Time
}

// NewStore returns an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Entry),
		now:      time.Now,
	}
}

// Add registers a runner under a fresh token and returns its entry.
func (s *Store) Add(r Runner, host, username, iface string, port int) (*Entry, error) {
	token, err := newToken()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := &Entry{
		Token:     token,
		Host:      host,
		Username:  username,
		Interface: iface,
		Port:      port,
		runner:    r,
		created:   now,
		lastUsed:  now,
	}
	s.sessions[token] = e
	return e, nil
}

// Get resolves a token and marks the session as used.
func (s *Store) Get(token string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	e.lastUsed = s.now()
	return e, nil
}

// Remove deletes a session and closes its runner if the runner owns a
// connection. Removing an unknown token is a no-op.
func (s *Store) Remove(token string) {
	s.mu.Lock()
	e, ok := s.sessions[token]
	delete(s.sessions, token)
	s.mu.Unlock()

	if ok {
		closeRunner(e.runner)
	}
}

// SetRecord attaches the most recent telemetry reading to a session.
func (s *Store) SetRecord(token string, rec *telemetry.TelemetryRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return ErrNotFound
	}
	e.record = rec
	return nil
}

// Record returns the most recent telemetry reading for a session, which
// may be nil when nothing has been polled yet.
func (s *Store) Record(token string) (*telemetry.TelemetryRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return e.record, nil
}

// Readings snapshots the latest record of every session that has one.
func (s *Store) Readings() []Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Reading, 0, len(s.sessions))
	for _, e := range s.sessions {
		if e.record == nil {
			continue
		}
		out = append(out, Reading{Host: e.Host, Interface: e.Interface, Record: e.record})
	}
	return out
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Cleanup removes and closes sessions idle longer than maxAge, returning
// how many were dropped.
func (s *Store) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	cutoff := s.now().Add(-maxAge)
	var stale []*Entry
	for token, e := range s.sessions {
		if e.lastUsed.Before(cutoff) {
			stale = append(stale, e)
			delete(s.sessions, token)
		}
	}
	s.mu.Unlock()

	for _, e := range stale {
		closeRunner(e.runner)
	}
	return len(stale)
}

func closeRunner(r Runner) {
	if c, ok := r.(io.Closer); ok {
		c.Close()
	}
}

// newToken produces a 256-bit URL-safe session token.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
