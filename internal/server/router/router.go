package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kayoni-co/stocklog/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(items *handlers.ItemsHandler, reports *handlers.ReportsHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	api := r.Group("/api")
	{
		api.POST("/items", items.RecordMovement)
		api.POST("/items/register", items.RegisterItem)
		api.GET("/items", items.ListItems)

		api.GET("/reports/summary", reports.Summary)
		api.GET("/reports/monthly", reports.Monthly)
		api.GET("/reports/yearly", reports.Yearly)
		api.GET("/reports/period", reports.Period)
		api.GET("/reports/daily", reports.Daily)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
