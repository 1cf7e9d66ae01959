// Package api implements the read-only HTTP API over the snapshot
// reconstructor. Reads run concurrently with merges; the store's batch
// atomicity guarantees a consistent view.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foerderdata/fundwatch/internal/config"
	"github.com/foerderdata/fundwatch/internal/domain"
	"github.com/foerderdata/fundwatch/internal/logger"
)

// SnapshotProvider reconstructs snapshot rows on demand.
type SnapshotProvider interface {
	Snapshot(ctx context.Context, state domain.SnapshotState) ([]domain.SnapshotRow, error)
}

// RunLister lists recent crawl runs.
type RunLister interface {
	ListRecent(ctx context.Context, limit int) ([]*domain.CrawlRun, error)
}

// Server is the API server.
type Server struct {
	cfg       config.ServerConfig
	log       logger.Interface
	snapshots SnapshotProvider
	runs      RunLister
	httpSrv   *http.Server
}

// NewServer creates a new API server. runs may be nil when no crawl-run
// store is configured; the runs endpoint then reports 404.
func NewServer(cfg config.ServerConfig, log logger.Interface, snapshots SnapshotProvider, runs RunLister) *Server {
	s := &Server{
		cfg:       cfg,
		log:       log.WithComponent("api"),
		snapshots: snapshots,
		runs:      runs,
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s.registerRoutes(router)

	s.httpSrv = &http.Server{
		Addr:         cfg.Address,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// registerRoutes wires the handler functions.
func (s *Server) registerRoutes(router *gin.Engine) {
	router.GET("/healthz", s.handleHealth)

	v1 := router.Group("/api/v1")
	v1.GET("/snapshot", s.handleSnapshot)
	v1.GET("/runs", s.handleRuns)
}

// Start runs the server until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.log.Info("starting API server", "address", s.cfg.Address)
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down API server")
		return s.httpSrv.Shutdown(context.Background())
	}
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.httpSrv.Handler
}
