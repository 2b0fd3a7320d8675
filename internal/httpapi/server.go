// Package httpapi exposes the toast registry over HTTP: a small JSON API to
// push, list and remove toasts, plus health and Prometheus endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jmylchreest/toasty/internal/model"
)

// Backend is the registry surface the API serves. *registry.Registry
// satisfies it.
type Backend interface {
	Push(opts model.Options) string
	Remove(id string)
	Clear()
	Items() []model.Item
	Get(id string) (model.Item, bool)
	Remaining(id string) (time.Duration, bool)
	Paused(id string) bool
	Max() int
}

// Options configures a Server.
type Options struct {
	Logger *slog.Logger

	// Gatherer serves /metrics. Default: prometheus.DefaultGatherer
	Gatherer prometheus.Gatherer
}

// Server routes HTTP requests to a Backend.
type Server struct {
	backend Backend
	logger  *slog.Logger
	router  chi.Router
}

// NewServer creates a Server.
func NewServer(backend Backend, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		backend: backend,
		logger:  opts.Logger,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))

	r.Route("/v1/toasts", func(r chi.Router) {
		r.Post("/", s.handleCreate)
		r.Get("/", s.handleList)
		r.Delete("/", s.handleClear)
		r.Get("/{id}", s.handleGet)
		r.Delete("/{id}", s.handleDelete)
	})

	s.router = r
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	s.logger.Info("http api listening", "addr", ln.Addr().String())

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	opts, err := req.Options()
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err)
		return
	}

	id := s.backend.Push(opts)
	if id == "" {
		s.writeError(w, http.StatusServiceUnavailable, errors.New("toast registry is closed"))
		return
	}

	w.Header().Set("Location", "/v1/toasts/"+id)
	s.writeJSON(w, http.StatusCreated, CreateResponse{ID: id})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	items := s.backend.Items()
	views := make([]ToastView, 0, len(items))
	for _, item := range items {
		views = append(views, s.view(item))
	}
	s.writeJSON(w, http.StatusOK, ListResponse{
		Toasts: views,
		Count:  len(views),
		Max:    s.backend.Max(),
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	item, ok := s.backend.Get(chi.URLParam(r, "id"))
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("toast not found"))
		return
	}
	s.writeJSON(w, http.StatusOK, s.view(item))
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, ok := s.backend.Get(id); !ok {
		s.writeError(w, http.StatusNotFound, errors.New("toast not found"))
		return
	}
	s.backend.Remove(id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClear(w http.ResponseWriter, _ *http.Request) {
	s.backend.Clear()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) view(item model.Item) ToastView {
	v := ToastView{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Variant:     item.Variant,
		DurationMs:  item.Duration.Milliseconds(),
		Dismissible: item.Dismissible,
		CreatedAt:   item.CreatedAt,
		AppName:     item.AppName,
		Paused:      s.backend.Paused(item.ID),
	}
	if item.Action != nil {
		v.ActionLabel = item.Action.Label
	}
	if remaining, ok := s.backend.Remaining(item.ID); ok {
		v.RemainingMs = remaining.Milliseconds()
	}
	return v
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("failed to write response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, ErrorResponse{Error: err.Error()})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
