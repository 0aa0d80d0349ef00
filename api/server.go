package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Zeyadhatem391/Weather/logger"
	"github.com/Zeyadhatem391/Weather/metrics"
	"github.com/Zeyadhatem391/Weather/models"
	"github.com/Zeyadhatem391/Weather/widget"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Options configures the HTTP surface
type Options struct {
	Port           int
	StaticDir      string // serves /video/* and /images/*, skipped when empty
	AllowedOrigins []string
	CountryLabel   string       // used in the search placeholder
	Metrics        http.Handler // mounted at /metrics when set
	Now            func() time.Time
}

// Server represents the API server
type Server struct {
	widget      *widget.Widget
	broadcaster *Broadcaster
	view        *view
	logger      *slog.Logger
	server      *http.Server
}

// NewServer creates a new API server for w
func NewServer(w *widget.Widget, opts Options, log *slog.Logger, m *metrics.AppMetrics) (*Server, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	v, err := newView(opts.CountryLabel, opts.Now)
	if err != nil {
		return nil, err
	}

	s := &Server{
		widget:      w,
		broadcaster: NewBroadcaster(w.Store(), v.renderEvent, log, m),
		view:        v,
		logger:      log,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", opts.Port),
		Handler:           s.routes(opts),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.StructuredLogger(s.logger))
	r.Use(middleware.Recoverer)

	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "Last-Event-ID"},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", s.handleSearch)
		r.Post("/select", s.handleSelect)
		r.Get("/state", s.handleState)
		r.Get("/events", s.handleEvents)
		r.Get("/health", s.handleHealthCheck)
	})

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics)
	}

	if opts.StaticDir != "" {
		files := http.FileServer(http.Dir(opts.StaticDir))
		r.Handle("/video/*", files)
		r.Handle("/images/*", files)
	}

	return r
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start begins the API server. It returns nil after Shutdown.
func (s *Server) Start() error {
	s.logger.Info("Starting API server", slog.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown ends the event streams and stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	s.broadcaster.Close()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := s.view.renderPage(s.widget.Store().Snapshot())
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to render page", slog.Any("error", err))
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(page)
}

// handleSearch runs a geocoding search for ?q=. Lookup failures are not
// surfaced: the response carries whatever suggestions are visible.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	// the lookup outlives a client that navigates away
	ctx := context.WithoutCancel(r.Context())
	s.widget.Search(ctx, r.URL.Query().Get("q"))
	s.writeJSON(w, http.StatusOK, s.widget.Store().Snapshot())
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var candidate models.CityCandidate
	if err := json.NewDecoder(r.Body).Decode(&candidate); err != nil {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if candidate.Name == "" {
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	ctx := context.WithoutCancel(r.Context())
	s.widget.Select(ctx, candidate)
	s.writeJSON(w, http.StatusOK, s.widget.Store().Snapshot())
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.widget.Store().Snapshot())
}

// handleEvents streams a "render" event with fresh markup after every state
// change, starting with the current state.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	frames, last, leave := s.broadcaster.Join()
	defer leave()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if last != nil {
		writeEvent(w, last)
	}
	flusher.Flush()

	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				return
			}
			writeEvent(w, frame)
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}

func writeEvent(w http.ResponseWriter, frame []byte) {
	fmt.Fprintf(w, "event: render\ndata: %s\n\n", frame)
}

// handleHealthCheck provides a simple health check endpoint
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"version":   s.widget.Store().Snapshot().Version,
		"streams":   s.broadcaster.Clients(),
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", slog.Any("error", err))
	}
}
