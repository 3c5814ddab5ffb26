// Package server exposes the course graph over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/syllabus-viz/sylgraph/internal/catalog"
	"github.com/syllabus-viz/sylgraph/internal/config"
	"github.com/syllabus-viz/sylgraph/internal/hub"
	"github.com/syllabus-viz/sylgraph/internal/loader"
	"github.com/syllabus-viz/sylgraph/internal/storage"
	"github.com/syllabus-viz/sylgraph/internal/watcher"
)

const shutdownTimeout = 10 * time.Second

// Server holds the state for the HTTP server.
type Server struct {
	config *config.Config
	router *gin.Engine
	logger zerolog.Logger

	catalog *catalog.Holder
	index   *storage.DB
	hub     *hub.Hub
	loader  *loader.Loader

	reloadMu sync.Mutex
}

// New creates a server with an empty catalog. Call Reload or Run to load the sources.
func New(cfg *config.Config, lgr zerolog.Logger) (*Server, error) {
	index, err := storage.OpenDB(storage.MemoryPath)
	if err != nil {
		return nil, fmt.Errorf("opening search index: %w", err)
	}

	s := &Server{
		config:  cfg,
		logger:  lgr,
		catalog: catalog.NewHolder(catalog.Empty()),
		index:   index,
		hub:     hub.New(lgr),
		loader: loader.New(
			loader.WithTimeout(cfg.FetchTimeout),
			loader.WithLogger(lgr),
		),
	}
	s.router = s.setupRouter()
	return s, nil
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Catalog returns the currently published catalog.
func (s *Server) Catalog() *catalog.Catalog {
	return s.catalog.Load()
}

// Reload loads both sources, publishes a new catalog, rebuilds the search index
// and tells connected pages to refresh. Concurrent calls are serialized.
func (s *Server) Reload(ctx context.Context) loader.Dataset {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	ds := s.loader.LoadDataset(ctx, s.config.Syllabus, s.config.Relations)
	cat := catalog.New(ds.Courses, ds.Relations)
	s.catalog.Store(cat)

	if _, err := s.index.RebuildFromCatalog(cat); err != nil {
		s.logger.Error().Err(err).Msg("search index rebuild failed")
	}

	delivered := s.hub.Broadcast(hub.Event{
		Name: hub.EventReload,
		Data: newHealthResponse(cat),
	})
	s.logger.Debug().Int("clients", delivered).Msg("reload broadcast")
	return ds
}

// Run loads the sources, serves HTTP on the configured address and shuts down
// gracefully when ctx is cancelled or the process receives SIGINT or SIGTERM.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	s.Reload(ctx)

	if s.config.Watch {
		s.startWatcher(ctx)
	}

	// Streaming handlers outlive Shutdown unless their contexts end with it.
	streamCtx, cancelStreams := context.WithCancel(context.Background())
	defer cancelStreams()

	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return streamCtx },
	}
	srv.RegisterOnShutdown(cancelStreams)

	listener, err := net.Listen("tcp", s.config.Addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.config.Addr, err)
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", listener.Addr().String()).Msg("HTTP server listening")
		serverErrors <- srv.Serve(listener)
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}
		return nil
	case <-ctx.Done():
		s.logger.Info().Msg("shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	s.logger.Info().Msg("HTTP server stopped")
	return nil
}

// startWatcher reloads on local source changes until ctx ends. A watcher that
// cannot start is logged and skipped.
func (s *Server) startWatcher(ctx context.Context) {
	w, err := watcher.New(
		[]string{s.config.Syllabus, s.config.Relations},
		watcher.WithOnChange(func() {
			s.logger.Info().Msg("source changed, reloading")
			s.Reload(ctx)
		}),
		watcher.WithOnError(func(err error) {
			s.logger.Warn().Err(err).Msg("source watcher error")
		}),
	)
	if err != nil {
		s.logger.Warn().Err(err).Msg("source watching disabled")
		return
	}
	if len(w.Paths()) == 0 {
		s.logger.Info().Msg("no local sources to watch")
		w.Close()
		return
	}

	s.logger.Info().Strs("paths", w.Paths()).Msg("watching sources")
	go func() {
		defer w.Close()
		if err := w.Start(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("source watcher stopped")
		}
	}()
}

// Close releases the search index.
func (s *Server) Close() error {
	return s.index.Close()
}
