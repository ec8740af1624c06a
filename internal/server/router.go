// Package server wires the HTTP routes and runs the listener.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Zachkp/contact-relay/internal/config"
	"github.com/Zachkp/contact-relay/internal/health"
	"github.com/Zachkp/contact-relay/internal/relay"
)

// Deps are the collaborators mounted on the router.
type Deps struct {
	Relay  *relay.Handler
	Checks health.Checks
	Logger *zap.Logger
}

// NewRouter builds the gin engine.
func NewRouter(cfg config.ServerConfig, deps Deps) *gin.Engine {
	r := gin.New()
	// Client IPs come from the socket, never from forwarding headers.
	_ = r.SetTrustedProxies(nil)

	r.Use(gin.Recovery(), requestID(), accessLog(deps.Logger), observeDuration())

	r.GET("/healthz", health.Liveness)
	r.HEAD("/healthz", health.Liveness)
	r.GET("/readyz", health.Readiness(deps.Checks,
		health.WithTimeout(cfg.ReadyTimeout),
		health.WithLogger(deps.Logger),
	))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	deps.Relay.Register(r)

	if cfg.SiteDir != "" {
		files := http.FileServer(gin.Dir(cfg.SiteDir, false))
		r.NoRoute(func(c *gin.Context) {
			if c.Request.Method != http.MethodGet && c.Request.Method != http.MethodHead {
				c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
				return
			}
			files.ServeHTTP(c.Writer, c.Request)
		})
	}

	return r
}
