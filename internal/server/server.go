// Package server exposes the orchestration backend over HTTP: a JSON
// API plus SSE and WebSocket streams for live session and clone events.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ralphtown/ralphtown/internal/logging"
)

const shutdownTimeout = 30 * time.Second

// Server wraps the HTTP listener serving the orchestration API
type Server struct {
	baseCancel context.CancelFunc
	httpServer *http.Server
}

// NewServer creates an HTTP server for the given handler set
func NewServer(host, port string, handler *Handler) *Server {
	baseCtx, baseCancel := context.WithCancel(context.Background())

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(host, port),
		Handler:           withRequestLog(withCORS(handler.routes())),
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from baseCtx so long-lived SSE and
		// WebSocket handlers unblock when shutdown begins.
		BaseContext: func(net.Listener) context.Context { return baseCtx },
	}
	httpServer.RegisterOnShutdown(baseCancel)

	return &Server{
		baseCancel: baseCancel,
		httpServer: httpServer,
	}
}

// Start starts the HTTP server and blocks until shutdown
func (s *Server) Start() error {
	// Handle graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	logging.Logger.Info("Starting HTTP server", "address", s.httpServer.Addr)
	fmt.Printf("HTTP server listening on %s\n", s.httpServer.Addr)

	// Start server in background
	listenErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Logger.Error("HTTP server error", "error", err)
			listenErr <- err
		}
	}()

	// Wait for shutdown signal or listener failure
	select {
	case err := <-listenErr:
		s.baseCancel()
		return fmt.Errorf("http server failed: %w", err)
	case <-done:
	}

	logging.Logger.Info("Shutting down HTTP server")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}

	logging.Logger.Info("HTTP server stopped")
	return nil
}

// routes builds the API route table
func (h *Handler) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", h.health)

	mux.HandleFunc("GET /api/repos", h.listRepos)
	mux.HandleFunc("POST /api/repos", h.addRepo)
	mux.HandleFunc("GET /api/repos/scan", h.scanRepos)
	mux.HandleFunc("POST /api/repos/clone", h.cloneRepo)
	mux.HandleFunc("GET /api/repos/{id}", h.getRepo)
	mux.HandleFunc("DELETE /api/repos/{id}", h.deleteRepo)

	mux.HandleFunc("GET /api/repos/{id}/git/status", h.gitStatus)
	mux.HandleFunc("GET /api/repos/{id}/git/log", h.gitLog)
	mux.HandleFunc("GET /api/repos/{id}/git/branches", h.gitBranches)
	mux.HandleFunc("POST /api/repos/{id}/git/branches", h.gitCreateBranch)
	mux.HandleFunc("GET /api/repos/{id}/git/diff", h.gitDiff)
	mux.HandleFunc("POST /api/repos/{id}/git/checkout", h.gitCheckout)
	mux.HandleFunc("POST /api/repos/{id}/git/pull", h.gitPull)
	mux.HandleFunc("POST /api/repos/{id}/git/push", h.gitPush)
	mux.HandleFunc("POST /api/repos/{id}/git/commit", h.gitCommit)
	mux.HandleFunc("POST /api/repos/{id}/git/reset", h.gitReset)

	mux.HandleFunc("GET /api/sessions", h.listSessions)
	mux.HandleFunc("POST /api/sessions", h.createSession)
	mux.HandleFunc("GET /api/sessions/active", h.activeSessions)
	mux.HandleFunc("GET /api/sessions/{id}", h.getSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.deleteSession)
	mux.HandleFunc("POST /api/sessions/{id}/run", h.runSession)
	mux.HandleFunc("POST /api/sessions/{id}/cancel", h.cancelSession)
	mux.HandleFunc("GET /api/sessions/{id}/messages", h.listMessages)
	mux.HandleFunc("POST /api/sessions/{id}/messages", h.addMessage)
	mux.HandleFunc("GET /api/sessions/{id}/logs", h.sessionLogs)
	mux.HandleFunc("GET /api/sessions/{id}/stream", h.streamSession)

	mux.HandleFunc("GET /api/ws", h.sessionSocket)

	mux.HandleFunc("GET /api/config", h.listConfig)
	mux.HandleFunc("GET /api/config/{key}", h.getConfig)
	mux.HandleFunc("PUT /api/config/{key}", h.setConfig)
	mux.HandleFunc("DELETE /api/config/{key}", h.deleteConfig)

	mux.HandleFunc("GET /api/service/status", h.serviceStatus)

	return mux
}
