package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type Handlers struct {
	Airlines    *AirlineHandler
	Flights     *FlightHandler
	Oracles     *OracleHandler
	Operational *OperationalHandler
}

// NewRouter mounts every handler under /api. gatherer may be nil to leave
// /metrics out.
func NewRouter(h Handlers, gatherer prometheus.Gatherer, logger *zap.Logger) *gin.Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger))

	root := router.Group("/api")
	root.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "operational": h.Operational.gate.IsOperational()})
	})

	h.Airlines.Register(root.Group("/airlines"))
	h.Flights.Register(root.Group("/flights"))
	h.Oracles.Register(root.Group("/oracles"), root.Group("/requests"))
	h.Operational.Register(root.Group("/operational"))

	if gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}
	return router
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
