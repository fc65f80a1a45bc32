// ABOUTME: HTTP server for the oracle: chat submission, health, and metrics endpoints.
// ABOUTME: Run blocks until the context is canceled, then shuts down gracefully.

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/degov-labs/degov-oracle/internal/canister"
	"github.com/degov-labs/degov-oracle/internal/chat"
	"github.com/degov-labs/degov-oracle/internal/metrics"
)

// maxSubmitBytes bounds the request body read on /submit.
const maxSubmitBytes = 64 * 1024

// Config holds the server's wiring.
type Config struct {
	Addr        string
	AgentName   string
	Endpoint    canister.Endpoint
	MetricsPath string // empty disables the scrape endpoint
}

// Server serves the oracle's HTTP API.
type Server struct {
	config     Config
	chat       *chat.Service
	metrics    *metrics.Metrics
	logger     *slog.Logger
	httpServer *http.Server
}

// SubmitRequest is the JSON request body for POST /submit.
type SubmitRequest struct {
	Sender  string       `json:"sender"`
	Message chat.Message `json:"message"`
}

// SubmitResponse is the JSON response for POST /submit. Reply is omitted for
// duplicate deliveries.
type SubmitResponse struct {
	Acknowledgement chat.Acknowledgement `json:"acknowledgement"`
	Reply           *chat.Message        `json:"reply,omitempty"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status     string `json:"status"`
	Agent      string `json:"agent"`
	CanisterID string `json:"canister_id"`
	Origin     string `json:"origin"`
	Mode       string `json:"mode"`
}

// New builds a server. The metrics set may be nil; the scrape endpoint is
// only mounted when both the set and the configured path are present.
func New(cfg Config, chatSvc *chat.Service, m *metrics.Metrics, logger *slog.Logger) *Server {
	s := &Server{
		config:  cfg,
		chat:    chatSvc,
		metrics: m,
		logger:  logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/submit", s.handleSubmit)
	mux.HandleFunc("/health", s.handleHealth)
	if m != nil && cfg.MetricsPath != "" {
		mux.Handle(cfg.MetricsPath, m.Handler())
	}

	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the server's route table.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// Run starts the server and blocks until the context is canceled.
// Returns nil on graceful shutdown, or an error if the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listening on HTTP address: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", "addr", ln.Addr().String())
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server: %w", err)
		}
	}()

	var serverErr error
	select {
	case <-ctx.Done():
		s.logger.Info("context canceled, initiating shutdown")
	case serverErr = <-errCh:
		s.logger.Error("server error", "error", serverErr)
	}

	shutdownErr := s.gracefulShutdown()
	if serverErr != nil {
		return serverErr
	}
	return shutdownErr
}

// gracefulShutdown performs shutdown with a fresh context and timeout.
// Uses context.Background() intentionally since the original context is already canceled.
func (s *Server) gracefulShutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// handleSubmit handles POST /submit requests.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	req, err := parseSubmitRequest(r.Body)
	if err != nil {
		s.sendJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	ack, reply := s.chat.HandleMessage(r.Context(), req.Sender, req.Message)
	if s.metrics != nil {
		if reply == nil {
			s.metrics.MessageHandled("duplicate")
		} else {
			s.metrics.MessageHandled("replied")
		}
	}

	s.sendJSON(w, http.StatusOK, SubmitResponse{Acknowledgement: ack, Reply: reply})
}

// handleHealth handles GET /health requests.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	s.sendJSON(w, http.StatusOK, HealthResponse{
		Status:     "ok",
		Agent:      s.config.AgentName,
		CanisterID: s.config.Endpoint.CanisterID,
		Origin:     s.config.Endpoint.Origin,
		Mode:       string(s.config.Endpoint.Mode),
	})
}

// parseSubmitRequest parses and validates a SubmitRequest from the given reader.
// Returns an error if the JSON is invalid or required fields are missing.
func parseSubmitRequest(r io.Reader) (*SubmitRequest, error) {
	var req SubmitRequest
	if err := json.NewDecoder(io.LimitReader(r, maxSubmitBytes)).Decode(&req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	if req.Sender == "" {
		return nil, errors.New("sender is required")
	}
	if len(req.Message.Content) == 0 {
		return nil, errors.New("message content is required")
	}
	return &req, nil
}

// sendJSON writes a JSON response body.
func (s *Server) sendJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("failed to encode response", "error", err)
	}
}

// sendJSONError writes a JSON error response.
func (s *Server) sendJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		s.logger.Error("failed to encode error response", "error", err)
	}
}
