package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/at"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/monitor"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/session"
	"github.com/Brazzo978/RemoteSignalMonitor-Mikrotik/telemetry"
)

// Server handles incoming HTTP requests for managing modem sessions and
// reading telemetry through them
type Server struct {
	Logger  *slog.Logger
	Store   *session.Store
	Metrics http.Handler

	// dialSSH is swapped out in tests
	dialSSH func(session.SSHConfig) (session.Runner, error)
}

func (s *Server) dial(cfg session.SSHConfig) (session.Runner, error) {
	if s.dialSSH != nil {
		return s.dialSSH(cfg)
	}
	return session.DialSSH(cfg)
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /connect", s.handleConnect)
	mux.HandleFunc("POST /send", s.handleSend)
	mux.HandleFunc("POST /disconnect", s.handleDisconnect)
	mux.HandleFunc("GET /telemetry", s.handleTelemetry)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.Metrics != nil {
		mux.Handle("GET /metrics", s.Metrics)
	}
	mux.ServeHTTP(w, r)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	resp := ErrorResponse{Message: message}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(resp)

}

func (s *Server) sendJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// handleConnect opens an SSH session to a router, verifies the modem
// answers, and returns the session token plus an identification preview
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	type ConnectRequest struct {
		Host      string `json:"host"`
		Port      int    `json:"port"`
		Username  string `json:"username"`
		Password  string `json:"password"`
		Interface string `json:"interface"`
	}

	var req ConnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Host == "" || req.Username == "" {
		s.sendError(w, "both 'host' and 'username' fields are required", http.StatusBadRequest)
		return
	}
	iface := req.Interface
	if iface == "" {
		iface = "lte1"
	}

	runner, err := s.dial(session.SSHConfig{
		Host:      req.Host,
		Port:      req.Port,
		Username:  req.Username,
		Password:  req.Password,
		Interface: iface,
	})
	if err != nil {
		s.Logger.Error("SSH connection failed", "host", req.Host, "error", err)
		s.sendError(w, err.Error(), http.StatusBadGateway)
		return
	}

	// Probe with the identification command so a dead modem is caught
	// at connect time rather than on the first poll.
	preview, err := runner.Run(r.Context(), at.CmdIdentify)
	if err != nil {
		if c, ok := runner.(interface{ Close() error }); ok {
			c.Close()
		}
		s.Logger.Error("identification probe failed", "host", req.Host, "error", err)
		s.sendError(w, err.Error(), http.StatusBadGateway)
		return
	}

	entry, err := s.Store.Add(runner, req.Host, req.Username, iface, req.Port)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusInternalServerError)
		return
	}

	s.Logger.Info("session established",
		"host", req.Host, "username", req.Username, "interface", iface)

	type ConnectResponse struct {
		Token   string `json:"token"`
		Preview string `json:"preview"`
	}
	s.sendJSON(w, ConnectResponse{Token: entry.Token, Preview: preview})
}

// handleSend relays one raw AT command through a session and returns
// its output, with the parsed record attached when the response belongs
// to a recognized command family
func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	type SendRequest struct {
		Token   string `json:"token"`
		Command string `json:"command"`
	}

	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Token == "" || req.Command == "" {
		s.sendError(w, "both 'token' and 'command' fields are required", http.StatusBadRequest)
		return
	}

	entry, err := s.Store.Get(req.Token)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusNotFound)
		return
	}

	output, err := entry.Runner().Run(r.Context(), req.Command)
	if err != nil {
		s.Logger.Error("command failed", "command", req.Command, "error", err)
		s.sendError(w, err.Error(), http.StatusBadGateway)
		return
	}

	type SendResponse struct {
		Output     string                     `json:"output"`
		Record     *telemetry.TelemetryRecord `json:"record,omitempty"`
		ParseError string                     `json:"parse_error,omitempty"`
	}
	resp := SendResponse{Output: output}

	rec, perr := telemetry.Parse(telemetry.RawResponse{Command: req.Command, Text: output})
	switch {
	case perr == nil:
		resp.Record = rec
		if len(rec.ServingCells) > 0 {
			s.Store.SetRecord(req.Token, rec)
		}
	default:
		resp.ParseError = perr.Error()
	}

	s.Logger.Info("command completed", "command", req.Command)
	s.sendJSON(w, resp)
}

// handleTelemetry runs a full poll cycle on the session and returns the
// merged record
func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		s.sendError(w, "'token' query parameter is required", http.StatusBadRequest)
		return
	}

	entry, err := s.Store.Get(token)
	if err != nil {
		s.sendError(w, err.Error(), http.StatusNotFound)
		return
	}

	poller := monitor.New(entry.Runner(), s.Logger)
	rec, err := poller.Poll(r.Context())
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, telemetry.ErrNoService) {
			status = http.StatusServiceUnavailable
		}
		s.Logger.Error("telemetry poll failed", "error", err)
		s.sendError(w, err.Error(), status)
		return
	}

	s.Store.SetRecord(token, rec)
	s.sendJSON(w, rec)
}

// handleDisconnect closes a session and forgets its token
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	type DisconnectRequest struct {
		Token string `json:"token"`
	}

	var req DisconnectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Token == "" {
		s.sendError(w, "'token' field is required", http.StatusBadRequest)
		return
	}

	s.Store.Remove(req.Token)
	s.Logger.Info("session closed")
	w.WriteHeader(http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type HealthResponse struct {
		Status   string    `json:"status"`
		Sessions int       `json:"sessions"`
		Time     time.Time `json:"time"`
	}
	s.sendJSON(w, HealthResponse{
		Status:   "ok",
		Sessions: s.Store.Len(),
		Time:     time.Now().UTC(),
	})
}
