// Package web exposes the evaluation pipeline over HTTP: a streaming
// submission endpoint, history reads, and a dev-only reset.
package web

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/podiumlab/podium/internal/domain"
	"github.com/podiumlab/podium/internal/ports"
	"github.com/podiumlab/podium/internal/stream"
)

// Evaluator runs one submission and closes the stream when done.
type Evaluator interface {
	Run(ctx context.Context, sub *domain.Submission, st *stream.Stream) error
}

// HistoryResetter wipes all persisted history. Wired only in dev mode.
type HistoryResetter interface {
	ResetAll(ctx context.Context) error
}

// Server is the podium HTTP server.
type Server struct {
	evaluator   Evaluator
	history     ports.HistoryStore
	transcriber ports.Transcriber
	resetter    HistoryResetter
	port        int
	devMode     bool
	log         *slog.Logger
}

// NewServer wires a Server. resetter may be nil outside dev mode.
func NewServer(evaluator Evaluator, history ports.HistoryStore,
	transcriber ports.Transcriber, resetter HistoryResetter,
	port int, devMode bool, log *slog.Logger) *Server {
	return &Server{
		evaluator:   evaluator,
		history:     history,
		transcriber: transcriber,
		resetter:    resetter,
		port:        port,
		devMode:     devMode,
		log:         log,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/evaluate", s.handleEvaluate)
	mux.HandleFunc("/history/", s.handleHistory)
	mux.HandleFunc("/history", s.handleReset)
	mux.HandleFunc("/healthz", s.handleHealthz)
	return mux
}

// Start listens until the listener fails.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.log.Info("podium listening", "addr", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// userIDFromPath extracts the trailing path segment of /history/{user_id}.
func userIDFromPath(path string) string {
	rest := strings.TrimPrefix(path, "/history/")
	return strings.Trim(rest, "/")
}
