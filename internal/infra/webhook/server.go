package webhook

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"voice-relay/internal/application"
	"voice-relay/internal/domain"
)

// SecretTokenHeader carries the secret registered through setWebhook.
const SecretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"

const maxBodyBytes = 1 << 20

// EventHandler is implemented by application.Relay.
type EventHandler interface {
	Handle(ctx context.Context, ev domain.InboundEvent) (application.Outcome, error)
}

type Options struct {
	Addr         string
	Path         string
	SecretToken  string
	RateLimit    int // requests per minute per client, 0 disables
	WriteTimeout time.Duration
}

type Server struct {
	opts        Options
	handler     EventHandler
	server      *http.Server
	logger      *slog.Logger
	mu          sync.Mutex
	running     bool
	mux         *http.ServeMux
	rateLimiter *RateLimiter
}

func NewServer(opts Options, handler EventHandler, logger *slog.Logger) *Server {
	if opts.Path == "" {
		opts.Path = "/webhook"
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 2 * time.Minute
	}

	s := &Server{
		opts:        opts,
		handler:     handler,
		logger:      logger,
		mux:         http.NewServeMux(),
		rateLimiter: NewRateLimiter(opts.RateLimit, time.Minute),
	}
	// Method is checked in the handler so every verb gets the same 405 body.
	s.mux.HandleFunc(opts.Path, s.rateLimiter.Middleware(s.handleWebhook))
	s.mux.HandleFunc("GET /health", s.handleHealth)
	return s
}

func (s *Server) Start(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil
	}

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.opts.Addr, err)
	}

	s.server = &http.Server{
		Handler:      s.mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("webhook server listening", "addr", ln.Addr().String(), "path", s.opts.Path)

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err)
		}
	}()

	s.running = true
	return nil
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.server.Shutdown(ctx); err != nil {
			s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
			if err := s.server.Close(); err != nil {
				return fmt.Errorf("closing server: %w", err)
			}
		}
	}

	s.running = false
	return nil
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	logger := s.logger.With("request_id", uuid.NewString())

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("panic handling update", "panic", rec)
			writeText(w, http.StatusInternalServerError, fmt.Sprintf("Error processing request: %v", rec))
		}
	}()

	if s.opts.SecretToken != "" && r.Header.Get(SecretTokenHeader) != s.opts.SecretToken {
		logger.Warn("webhook secret mismatch", "remote_addr", r.RemoteAddr)
		writeText(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	defer r.Body.Close()
	ev, err := decodeEvent(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		logger.Error("reading update", "error", err)
		writeText(w, http.StatusInternalServerError, "Error processing request: "+err.Error())
		return
	}

	logger.Debug("update received", "update_id", ev.UpdateID, "chat_id", ev.ChatID, "media", ev.HasMedia())

	outcome, err := s.handler.Handle(r.Context(), ev)
	if err != nil {
		logger.Error("handling update", "outcome", outcome, "error", err)
		writeText(w, http.StatusInternalServerError, "Error processing request: "+err.Error())
		return
	}

	logger.Info("update handled", "chat_id", ev.ChatID, "outcome", outcome)

	switch outcome {
	case application.OutcomeMissingChat:
		writeText(w, http.StatusBadRequest, "Missing chat ID")
	case application.OutcomeUnauthorized:
		writeText(w, http.StatusForbidden, "Unauthorized")
	default:
		writeText(w, http.StatusOK, "OK")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := "ok"
	statusCode := http.StatusOK

	if !running {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, `{"status":"%s","running":%t}`, status, running)
}

func writeText(w http.ResponseWriter, code int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	io.WriteString(w, body)
}
