package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/reportdash/realtime/internal/batch"
	"github.com/reportdash/realtime/internal/config"
	"github.com/reportdash/realtime/internal/connection"
	"github.com/reportdash/realtime/internal/dispatch"
	"github.com/reportdash/realtime/internal/notify"
)

// Server binds the websocket session lifecycle and the batch HTTP API to
// one listener.
type Server struct {
	cfg        *config.DashboardConfig
	reg        *connection.Registry
	notifier   *notify.Notifier
	dispatcher *dispatch.Dispatcher
	sup        *batch.Supervisor
	logger     *slog.Logger

	upgrader websocket.Upgrader
	httpSrv  *http.Server

	// Lifecycle
	mu      sync.Mutex
	cancel  context.CancelFunc
	baseCtx context.Context
	done    chan struct{}
}

// New creates a Server wired to the given components.
func New(
	cfg *config.DashboardConfig,
	reg *connection.Registry,
	notifier *notify.Notifier,
	dispatcher *dispatch.Dispatcher,
	sup *batch.Supervisor,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:        cfg,
		reg:        reg,
		notifier:   notifier,
		dispatcher: dispatcher,
		sup:        sup,
		logger:     logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The dashboard frontend is served from another origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start begins serving. It returns once the listener goroutine is running.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errors.New("server already started")
	}

	// Background jobs started from HTTP handlers outlive the request and
	// are cancelled at Stop, not at request end.
	s.baseCtx, s.cancel = context.WithCancel(context.WithoutCancel(ctx))
	s.done = make(chan struct{})

	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	s.httpSrv = &http.Server{
		Addr:    addr,
		Handler: s.routes(),
	}

	go func() {
		defer close(s.done)
		s.logger.Info("server listening", "addr", addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts the listener down and cancels background jobs.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	srv := s.httpSrv
	done := s.done
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	var err error
	if srv != nil {
		err = srv.Shutdown(ctx)
	}
	cancel()

	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.logger.Info("server stopped")
	return err
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{client_id}", s.handleWebsocket)
	mux.HandleFunc("POST /api/reports/batch/generate", s.handleBatchGenerate)
	mux.HandleFunc("GET /api/reports/batch/{batch_id}/status", s.handleBatchStatus)
	mux.HandleFunc("GET /api/ws/stats", s.handleStats)
	mux.HandleFunc("GET /health", s.handleHealth)
	return mux
}
