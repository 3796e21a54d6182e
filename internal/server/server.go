// Package server exposes the opt-in status/metrics HTTP sidecar. It only
// runs when a listen address is configured; the default uartctl process
// stays fully single-threaded.
package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danmuck/uartctl/internal/observability"
)

// StatusServer serves /health and /metrics for one uartctl process.
type StatusServer struct {
	addr      string
	router    *gin.Engine
	startedAt time.Time
	state     func() string
}

// New builds the sidecar. state reports the current session state for
// /health; it must be safe to call from the HTTP goroutine.
func New(addr string, state func() string) *StatusServer {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Middleware: keep it lean
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"http://localhost:3000"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
		MaxAge:       12 * time.Hour,
	}))

	s := &StatusServer{
		addr:      addr,
		router:    r,
		startedAt: time.Now(),
		state:     state,
	}
	s.registerRoutes()
	return s
}

func (s *StatusServer) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.startedAt).String(),
			"service": "uartctl",
			"session": s.state(),
		})
	})

	observability.RegisterMetrics()
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Run blocks serving HTTP on the configured address.
func (s *StatusServer) Run() error {
	return s.router.Run(s.addr)
}

// Handler exposes the router for tests.
func (s *StatusServer) Handler() http.Handler {
	return s.router
}
