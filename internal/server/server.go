package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"towerdeck/internal/config"
	"towerdeck/internal/handler"
	"towerdeck/internal/middleware"
	"towerdeck/internal/stream"
	"towerdeck/pkg/logger"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

type Handlers struct {
	Aircraft *handler.AircraftHandler
	Event    *handler.EventHandler
	Health   *handler.HealthHandler
	Brain    *handler.BrainHandler
	Stream   *stream.Gateway
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.Server.Environment == logger.ProductionMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.Server.Port),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) SetupRoutes(handlers *Handlers) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/health", handlers.Health.Check)

	aircraft := s.engine.Group("/aircraft")
	{
		aircraft.GET("", handlers.Aircraft.List)
		aircraft.GET("/:id", handlers.Aircraft.Get)
		aircraft.PUT("/:id", handlers.Aircraft.Update)
		aircraft.DELETE("", middleware.AdminGuard(s.config.Auth.AdminSecret), handlers.Aircraft.ClearAll)
	}

	events := s.engine.Group("/events")
	{
		events.GET("", handlers.Event.List)
		events.POST("", handlers.Event.Create)
		events.GET("/stream", handlers.Stream.ServeSSE)
		events.GET("/ws", handlers.Stream.ServeWS)
	}

	s.engine.POST("/brain/start", handlers.Brain.Start)
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
