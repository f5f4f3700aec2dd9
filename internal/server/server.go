// Package server exposes neighbour lookups over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/stahnma/gh-starneighbours/internal/cache"
	"github.com/stahnma/gh-starneighbours/internal/logging"
	"github.com/stahnma/gh-starneighbours/internal/neighbours"
)

// Config wires the server's collaborators.
type Config struct {
	// APIToken is the bearer token every API request must carry.
	APIToken string
	Lookup   neighbours.Lookup
	// Cache holds responses; nil disables response caching.
	Cache cache.Store
	Debug bool
}

// Server serves the neighbours API.
type Server struct {
	engine *gin.Engine
	log    zerolog.Logger
}

// New builds the gin engine and registers all routes.
func New(cfg Config) *Server {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	logger := logging.NewLogger("server")

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(logger))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := &handler{lookup: cfg.Lookup, cache: cfg.Cache, log: logger}
	repos := engine.Group("/repos", bearerAuth(cfg.APIToken))
	repos.GET("/:owner/repo/:repo/starneighbours", h.starNeighbours)

	return &Server{engine: engine, log: logger}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is cancelled, then drains in-flight
// requests for up to ten seconds.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("Listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
