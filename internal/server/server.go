package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cipher-chat/internal/auth"
	"cipher-chat/internal/config"
	"cipher-chat/internal/handler"
	"cipher-chat/internal/middleware"
	"cipher-chat/internal/websocket"
	"cipher-chat/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

type Handlers struct {
	Messages  *handler.MessageHandler
	Users     *handler.UserHandler
	Health    *handler.HealthHandler
	WebSocket *websocket.Handler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	switch cfg.Server.Environment {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

// Engine exposes the router, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// SetupRoutes registers every route. limiter may be nil to disable message
// rate limiting.
func (s *Server) SetupRoutes(handlers *Handlers, verifier *auth.TokenVerifier, limiter middleware.MessageLimiter) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", handlers.Health.Ping)
	s.engine.GET("/health", handlers.Health.Health)
	s.engine.GET("/ws", handlers.WebSocket.Connect)

	requireAuth := middleware.AuthMiddleware(verifier, s.config.Auth.CookieName)

	send := []gin.HandlerFunc{}
	if limiter != nil {
		send = append(send, middleware.MessageRateLimitMiddleware(limiter))
	}
	send = append(send, handlers.Messages.Send)

	api := s.engine.Group("/api", requireAuth)
	{
		messages := api.Group("/messages")
		messages.GET("/users", handlers.Users.Sidebar)
		messages.GET("/:id", handlers.Messages.List)
		messages.POST("/send/:id", send...)

		api.GET("/users/online", handlers.Users.Online)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("Starting the server on port %s...", s.config.Server.Port)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Infof("Quitting signal received.. Shutting down within %s", s.config.Server.ShutdownTimeout)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.Server.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Errorf("Error in the graceful shutdown of the server: %s", err)
		return err
	}

	s.logger.Infof("Server stopped gracefully")
	return nil
}
