package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jarvis/internal/application"
)

// Responder is the part of the assistant the HTTP layer drives.
type Responder interface {
	Respond(ctx context.Context, text string) (application.Response, error)
	Transcribe(ctx context.Context, audio []byte) (string, error)
	Status() string
	Mode() application.LLMMode
}

type Options struct {
	Addr      string
	StaticDir string
	RateLimit int
	// AnnouncementBacklog is how many fired reminders are kept for polling clients.
	AnnouncementBacklog int
}

type Server struct {
	addr      string
	staticDir string
	server    *http.Server
	mux       *http.ServeMux
	handler   http.Handler
	logger    *slog.Logger

	assistant Responder
	relay     application.Relay
	notes     application.NoteStore
	reminders application.ReminderStore

	rateLimiter   *RateLimiter
	announcements *Announcements

	mu      sync.Mutex
	running bool
}

// New wires the routes. relay may be nil, in which case /api/chat reports
// the server as misconfigured.
func New(
	opts Options,
	assistant Responder,
	relay application.Relay,
	notes application.NoteStore,
	reminders application.ReminderStore,
	logger *slog.Logger,
) *Server {
	s := &Server{
		addr:        opts.Addr,
		staticDir:   opts.StaticDir,
		mux:         http.NewServeMux(),
		logger:      logger,
		assistant:   assistant,
		relay:       relay,
		notes:       notes,
		reminders:   reminders,
		rateLimiter: NewRateLimiter(opts.RateLimit, time.Minute),
	}
	s.announcements = NewAnnouncements(opts.AnnouncementBacklog)

	s.mux.HandleFunc("POST /api/chat", s.rateLimiter.Middleware(s.handleChat))
	s.mux.HandleFunc("POST /api/command", s.rateLimiter.Middleware(s.handleCommand))
	s.mux.HandleFunc("POST /api/voice", s.rateLimiter.Middleware(s.handleVoice))
	s.mux.HandleFunc("GET /api/notes", s.handleNotes)
	s.mux.HandleFunc("GET /api/reminders", s.handleReminders)
	s.mux.HandleFunc("GET /api/reminders/fired", s.handleFired)
	s.mux.HandleFunc("GET /health", s.handleHealth)
	if s.staticDir != "" {
		s.mux.HandleFunc("GET /", s.handleStatic)
	}

	s.handler = withRequestLog(logger, withCORS(s.mux))
	return s
}

// Announcements is the notifier that feeds GET /api/reminders/fired.
func (s *Server) Announcements() *Announcements {
	return s.announcements
}

func (s *Server) Handler() http.Handler {
	return s.handler
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("server already running")
	}
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	s.running = true
	s.mu.Unlock()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server starting", "addr", s.addr, "static_dir", s.staticDir)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		s.setRunning(false)
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		return s.Stop()
	}
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		s.logger.Warn("graceful shutdown failed, forcing close", "error", err)
		if err := s.server.Close(); err != nil {
			return fmt.Errorf("closing server: %w", err)
		}
	}
	return nil
}

func (s *Server) setRunning(v bool) {
	s.mu.Lock()
	s.running = v
	s.mu.Unlock()
}

// handleStatic serves files from the static dir and falls back to
// index.html for unknown paths.
func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	clean := filepath.Clean("/" + r.URL.Path)
	path := filepath.Join(s.staticDir, filepath.FromSlash(clean))

	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		http.ServeFile(w, r, path)
		return
	}

	index := filepath.Join(s.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, index)
}
