// Package server exposes the background-analysis engine over HTTP.
//
// The API is thin plumbing around the engine: it validates uploads, shapes
// requests and responses, and maps engine errors onto a consistent
// {success, error: {code, message}} envelope. All analysis semantics live in
// the engine package.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rejRoky/image-processing-photo-background-check/internal/config"
	"github.com/rejRoky/image-processing-photo-background-check/internal/engine"
)

// NewRouter builds the gin router with all middleware and routes attached.
func NewRouter(cfg *config.Config, eng *engine.Engine, logger *zap.Logger, version string) *gin.Engine {
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(RequestID(), Logger(logger), gin.Recovery())

	handler := NewHandler(cfg, eng, logger)

	router.GET("/healthz", handler.Health)
	router.GET("/version", func(c *gin.Context) {
		c.JSON(200, gin.H{"version": version})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/photos/check", handler.Check)
		api.POST("/photos/check/batch", handler.CheckBatch)
	}

	return router
}
