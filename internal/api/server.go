// Package api serves the practice catalog over HTTP, including the
// emotion-driven next-practice advisory.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/abhisek/fluentz/internal/emotion"
	"github.com/abhisek/fluentz/internal/practice"
	"github.com/abhisek/fluentz/internal/session"
)

// Catalog is the read side the server needs.
type Catalog interface {
	practice.Catalog
	practice.Lookup
}

// Server holds the handler dependencies.
type Server struct {
	catalog Catalog
	advisor session.Advisor
	log     *slog.Logger
	origins string
}

// New creates a Server. advisor answers FindNextPractice; origins is the
// comma-separated CORS allow list.
func New(cat Catalog, advisor session.Advisor, origins string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	if origins == "" {
		origins = "*"
	}
	return &Server{catalog: cat, advisor: advisor, log: log.With("component", "api"), origins: origins}
}

// RegisterRoutes sets up all HTTP routes on the given mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.health)
	mux.HandleFunc("GET /api/practices", s.listPractices)
	mux.HandleFunc("GET /api/practices/difficulty/{difficulty}", s.listByDifficulty)
	mux.HandleFunc("GET /api/practices/{id}", s.getPractice)
	mux.HandleFunc("POST /api/practices/FindNextPractice", s.findNextPractice)
}

// Handler returns the routed mux wrapped in the middleware chain:
// Recovery → RequestID → Logger → CORS → mux.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return Chain(
		Recovery(s.log),
		RequestID,
		Logger(s.log),
		CORS(s.origins),
	)(mux)
}

// ListenAndServe serves h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler, log *slog.Logger) error {
	if log == nil {
		log = slog.Default()
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("catalog API listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listPractices(w http.ResponseWriter, r *http.Request) {
	items, err := s.catalog.FetchAll(r.Context())
	if err != nil {
		s.log.ErrorContext(r.Context(), "list practices", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list practices")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

// listByDifficulty answers an unknown difficulty with an empty list, as
// a filter that matches nothing.
func (s *Server) listByDifficulty(w http.ResponseWriter, r *http.Request) {
	d, err := practice.ParseDifficulty(r.PathValue("difficulty"))
	if err != nil {
		writeJSON(w, http.StatusOK, []practice.Item{})
		return
	}
	items, err := s.catalog.FetchByDifficulty(r.Context(), d)
	if err != nil {
		s.log.ErrorContext(r.Context(), "list practices by difficulty", "difficulty", d, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list practices")
		return
	}
	writeJSON(w, http.StatusOK, nonNil(items))
}

func (s *Server) getPractice(w http.ResponseWriter, r *http.Request) {
	it, err := s.catalog.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, practice.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		s.log.ErrorContext(r.Context(), "get practice", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get practice")
		return
	}
	writeJSON(w, http.StatusOK, it)
}

// findNextPractice moves one difficulty step in the direction of the
// emotion and returns a random item at that level. A payload carrying only
// an ID is completed from the catalog.
func (s *Server) findNextPractice(w http.ResponseWriter, r *http.Request) {
	var req practice.NextRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid practice payload")
		return
	}

	current := req.Practice
	if !current.Difficulty.Valid() && current.ID != "" {
		it, err := s.catalog.Get(r.Context(), current.ID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "current practice not found")
			return
		}
		current = *it
	}
	if !current.Difficulty.Valid() {
		writeError(w, http.StatusBadRequest, "invalid practice payload")
		return
	}

	next, err := s.advisor.Suggest(r.Context(), current, emotion.FromLabel(string(req.Emotion)), "")
	if err != nil {
		s.log.ErrorContext(r.Context(), "find next practice", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to find next practice")
		return
	}
	if next == nil {
		writeError(w, http.StatusNotFound, "no next practice")
		return
	}
	writeJSON(w, http.StatusOK, next)
}

func nonNil(items []practice.Item) []practice.Item {
	if items == nil {
		return []practice.Item{}
	}
	return items
}
