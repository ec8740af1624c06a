// Package health serves liveness and readiness probes.
//
// Readiness runs every named check in parallel under a shared timeout and
// answers 503 when any of them fails. Failure causes are logged, never
// returned, since they can name internal hosts:
//
//	{
//	  "status": "unhealthy",
//	  "checks": {
//	    "smtp":  {"status": "unhealthy", "error": "check failed"},
//	    "audit": {"status": "healthy"}
//	  }
//	}
package health

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 3 * time.Second

	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"

	// CheckFailed is the error reported for every failing check.
	CheckFailed = "check failed"
)

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checks maps check names to check functions.
type Checks map[string]CheckFunc

// Response is the readiness payload.
type Response struct {
	Checks map[string]Check `json:"checks,omitempty"`
	Status string           `json:"status"`
}

// Check is the result of one named check.
type Check struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

type config struct {
	logger  *zap.Logger
	timeout time.Duration
}

// Option configures the readiness handler.
type Option func(*config)

// WithTimeout sets the timeout shared by all checks.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger logs failing checks to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Liveness always answers 200 while the process is serving.
func Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, &Response{Status: StatusHealthy})
}

// Readiness returns a handler that runs checks on every request.
func Readiness(checks Checks, opts ...Option) gin.HandlerFunc {
	cfg := &config{timeout: defaultTimeout, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *gin.Context) {
		resp := Run(c.Request.Context(), checks, cfg.timeout, cfg.logger)

		status := http.StatusOK
		if resp.Status == StatusUnhealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, resp)
	}
}

// Run executes all checks in parallel and aggregates the result.
func Run(ctx context.Context, checks Checks, timeout time.Duration, logger *zap.Logger) *Response {
	if len(checks) == 0 {
		return &Response{Status: StatusHealthy}
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		results  = make(map[string]Check, len(checks))
		hasError bool
	)

	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()

			result := Check{Status: StatusHealthy}
			if err := check(ctx); err != nil {
				result = Check{Status: StatusUnhealthy, Error: CheckFailed}
				logger.Warn("health check failed", zap.String("check", name), zap.Error(err))
			}

			mu.Lock()
			defer mu.Unlock()
			results[name] = result
			if result.Status == StatusUnhealthy {
				hasError = true
			}
		}(name, check)
	}

	wg.Wait()

	status := StatusHealthy
	if hasError {
		status = StatusUnhealthy
	}
	return &Response{Status: status, Checks: results}
}
