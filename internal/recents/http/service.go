// Package http serves the conversation list to local consumers: a JSON
// API, a change stream, and MCP endpoints for assistant tooling.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/mosaicdim/recents/internal/backfill"
	"github.com/mosaicdim/recents/internal/convindex"
	"github.com/mosaicdim/recents/internal/errors"
)

type Config interface {
	GetHTTPAddr() string
}

type Service struct {
	conf   Config
	index  *convindex.Index
	engine *backfill.Engine

	router *gin.Engine
	server *http.Server

	mcpServer           *server.MCPServer
	mcpSSEServer        *server.SSEServer
	mcpStreamableServer *server.StreamableHTTPServer
}

func NewService(conf Config, ix *convindex.Index, engine *backfill.Engine) *Service {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	if err := router.SetTrustedProxies(nil); err != nil {
		log.Err(err).Msg("Failed to set trusted proxies")
	}

	router.Use(
		errors.RecoveryMiddleware(),
		errors.ErrorHandlerMiddleware(),
		gin.LoggerWithWriter(log.Logger, "/health"),
	)

	s := &Service{
		conf:   conf,
		index:  ix,
		engine: engine,
		router: router,
	}

	s.initMCPServer()
	s.initRouter()
	return s
}

func (s *Service) initRouter() {
	s.router.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := s.router.Group("/api/v1")
	{
		api.GET("/conversations", s.handleConversations)
		api.GET("/updates", s.handleUpdates)

		bf := api.Group("/backfill")
		bf.GET("/status", s.handleBackfillStatus)
		bf.POST("/older", s.handleBackfillOlder)
	}

	s.router.Any("/mcp", func(c *gin.Context) { s.mcpStreamableServer.ServeHTTP(c.Writer, c.Request) })
	s.router.Any("/sse", func(c *gin.Context) { s.mcpSSEServer.ServeHTTP(c.Writer, c.Request) })
	s.router.Any("/message", func(c *gin.Context) { s.mcpSSEServer.ServeHTTP(c.Writer, c.Request) })
}

func (s *Service) Start() error {
	s.server = &http.Server{
		Addr:    s.conf.GetHTTPAddr(),
		Handler: s.router,
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Err(err).Msg("Failed to start HTTP server")
		}
	}()

	log.Info().Msg("Starting HTTP server on " + s.conf.GetHTTPAddr())
	return nil
}

func (s *Service) Stop() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		log.Debug().Err(err).Msg("Failed to shutdown HTTP server")
		return nil
	}

	log.Info().Msg("HTTP server stopped")
	return nil
}

func (s *Service) GetRouter() *gin.Engine {
	return s.router
}
