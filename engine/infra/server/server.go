// Package server wires the migration engine into an HTTP service: mapper
// and adapter registration, the workflow runner, routing, and graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/testbridge/testbridge/engine/adapter"
	"github.com/testbridge/testbridge/engine/core"
	"github.com/testbridge/testbridge/engine/mapper"
	"github.com/testbridge/testbridge/engine/mapper/qtest"
	"github.com/testbridge/testbridge/engine/mapper/zephyr"
	"github.com/testbridge/testbridge/engine/migration"
	"github.com/testbridge/testbridge/engine/transform"
	"github.com/testbridge/testbridge/engine/workflow"
	wfrouter "github.com/testbridge/testbridge/engine/workflow/router"
	"github.com/testbridge/testbridge/pkg/config"
	"github.com/testbridge/testbridge/pkg/logger"
	"github.com/testbridge/testbridge/pkg/version"
)

// Server owns the HTTP listener and the engine wiring behind it.
type Server struct {
	cfg    *config.Config
	engine *workflow.Engine
	runner *workflow.Runner
	router *gin.Engine
}

// BuildEngine assembles the engine stack shared by the HTTP service and the
// one-shot CLI: a frozen mapper registry, one adapter per recognized system,
// the transformation service, and the workflow engine.
func BuildEngine() (*workflow.Engine, error) {
	mappers := mapper.NewRegistry()
	if err := zephyr.Register(mappers); err != nil {
		return nil, fmt.Errorf("register zephyr mappers: %w", err)
	}
	if err := qtest.Register(mappers); err != nil {
		return nil, fmt.Errorf("register qtest mappers: %w", err)
	}
	mappers.Freeze()

	adapters := adapter.NewRegistry()
	for _, system := range core.RecognizedSystems {
		if err := adapters.Register(adapter.NewMock(system)); err != nil {
			return nil, fmt.Errorf("register %s adapter: %w", system, err)
		}
	}

	service := migration.NewService(transform.New(mappers))
	return workflow.NewEngine(adapters, service), nil
}

// New assembles the full service: engine stack, workflow runner, and routes.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	engine, err := BuildEngine()
	if err != nil {
		return nil, err
	}
	runner := workflow.NewRunner(ctx, engine, cfg.Runner.Executors)

	s := &Server{
		cfg:    cfg,
		engine: engine,
		runner: runner,
	}
	s.router = s.buildRouter()
	return s, nil
}

func (s *Server) buildRouter() *gin.Engine {
	g := gin.New()
	g.Use(gin.Recovery())
	g.GET("/health", s.health)
	api := g.Group("/api")
	wfrouter.New(s.engine, s.runner).Register(api)
	return g
}

func (s *Server) health(c *gin.Context) {
	info := version.Get()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   info.Version,
		"workflows": s.engine.Registry().Len(),
	})
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until the context is cancelled, then shuts down gracefully
// within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	log := logger.FromContext(ctx)
	addr := fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: s.router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	if err := s.runner.Wait(); err != nil {
		return fmt.Errorf("drain workflow runner: %w", err)
	}
	log.Info("server stopped")
	return nil
}
