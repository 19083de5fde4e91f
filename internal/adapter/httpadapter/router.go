package httpadapter

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
)

// NewRouter wires the Gin engine with the dashboard API routes.
func NewRouter(h *Handler, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))

	v1 := r.Group("/api/v1")

	v1.POST("/sessions", h.CreateSession)
	v1.GET("/sessions/:id", h.GetSession)
	v1.DELETE("/sessions/:id", h.ClearSession)

	v1.POST("/predictions/flood", h.PredictFlood)
	v1.POST("/predictions/earthquake", h.PredictEarthquake)
	v1.GET("/earthquakes/category", h.EarthquakeCategory)

	v1.GET("/stock", h.ListStock)
	v1.GET("/stock/nearest", h.NearestStock)
	v1.POST("/stock/allocations", h.Allocate)

	return r
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
			"client_ip", c.ClientIP(),
		)
	}
}
