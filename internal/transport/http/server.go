package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	sloghttp "github.com/samber/slog-http"

	chat "github.com/reshetovitsme/tgfeed/internal/modules/chat/repository"
	feedService "github.com/reshetovitsme/tgfeed/internal/modules/feed/service"
	mediaService "github.com/reshetovitsme/tgfeed/internal/modules/media/service"
	"github.com/reshetovitsme/tgfeed/internal/shared/config"
	"github.com/reshetovitsme/tgfeed/internal/shared/metrics"
)

// Server serves feeds, media and avatars over HTTP
type Server struct {
	cfg     *config.Config
	chat    chat.Repository
	session chat.Session
	feeds   *feedService.Service
	media   *mediaService.Service
	metrics *metrics.Metrics
	logger  *slog.Logger

	server *http.Server
}

// New creates a new HTTP server
func New(
	cfg *config.Config,
	chat chat.Repository,
	session chat.Session,
	feeds *feedService.Service,
	media *mediaService.Service,
	m *metrics.Metrics,
) *Server {
	s := &Server{
		cfg:     cfg,
		chat:    chat,
		session: session,
		feeds:   feeds,
		media:   media,
		metrics: m,
		logger:  slog.Default(),
	}

	s.server = &http.Server{
		Addr:              cfg.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
		// no WriteTimeout: media downloads stream for as long as they take
	}

	return s
}

// SetLogger sets the logger
func (s *Server) SetLogger(logger *slog.Logger) {
	s.logger = logger
	s.server.Handler = s.Handler()
}

// Handler builds the router with logging and recovery middleware
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(sloghttp.Recovery)
	r.Use(sloghttp.New(s.logger))

	r.NotFound(s.handleNotFound)
	for _, pattern := range []string{"/", "/rss/favicon.ico"} {
		r.Get(pattern, s.handleNotFound)
		r.Head(pattern, s.handleNotFound)
	}

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())

	// HEAD answers feed reader liveness checks without touching the client
	for _, pattern := range []string{
		"/rss/{handle}", "/rss/{handle}/{offset}",
		"/rss/i/{peerID}", "/rss/i/{peerID}/{offset}",
	} {
		r.Head(pattern, s.handleFeedHead)
	}

	r.Group(func(r chi.Router) {
		r.Use(s.ensureConnected)

		r.Get("/rss/{handle}", s.handleFeed(s.peerByHandle))
		r.Get("/rss/{handle}/{offset}", s.handleFeed(s.peerByHandle))
		r.Get("/rss/i/{peerID}", s.handleFeed(s.peerByID))
		r.Get("/rss/i/{peerID}/{offset}", s.handleFeed(s.peerByID))

		r.Get("/media/{handle}/{msg}", s.handleMedia(s.peerByHandle))
		r.Get("/media/{handle}/{msg}/{size}", s.handleMedia(s.peerByHandle))
		r.Get("/media/i/{peerID}/{msg}", s.handleMedia(s.peerByID))
		r.Get("/media/i/{peerID}/{msg}/{size}", s.handleMedia(s.peerByID))

		for _, suffix := range []string{"", "/icon.jpg", "/favicon.ico"} {
			r.Get("/profile/{handle}"+suffix, s.handleProfile(s.peerByHandle))
			r.Get("/profile/i/{peerID}"+suffix, s.handleProfile(s.peerByID))
		}
	})

	return r
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("HTTP server starting", "addr", s.server.Addr, "public_url", s.cfg.PublicURL)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// ensureConnected reconnects and resyncs the client before any request
// that needs it.
func (s *Server) ensureConnected(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.session.IsConnected() {
			s.logger.WarnContext(r.Context(), "Client disconnected, reconnecting", "path", r.URL.Path)
		}
		if err := s.session.EnsureConnected(r.Context()); err != nil {
			s.writeError(w, r, err)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Error", http.StatusNotFound)
}
