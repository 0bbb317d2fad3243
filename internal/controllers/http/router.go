package http

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/Eldesouky97/home-craft/internal/metrics"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

type RouterConfig struct {
	ServiceName    string
	Tracing        bool
	Sentry         bool
	ImagesDir      string
	MaxUploadBytes int64
	HealthChecks   map[string]HealthCheck
}

// NewRouter builds the engine with the ambient middleware stack and mounts
// h's routes under /api.
func NewRouter(cfg RouterConfig, h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.Sentry {
		r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	if cfg.Tracing {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(RequestID(), RequestLogger(h.resp.log), metrics.Middleware())
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics", "/uploads"})))

	if cfg.MaxUploadBytes > 0 {
		// one extra MiB for the multipart framing around the file
		r.MaxMultipartMemory = cfg.MaxUploadBytes + 1<<20
	}

	r.GET("/health", h.health(cfg.HealthChecks))
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	if cfg.ImagesDir != "" {
		r.Static("/uploads/images", cfg.ImagesDir)
	}

	h.RegisterRoutes(r)

	r.NoRoute(func(c *gin.Context) {
		h.resp.FailKey(c, http.StatusNotFound, "route.not_found")
	})
	return r
}

func (h *Handler) health(checks map[string]HealthCheck) gin.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		body := HealthResponse{Status: "ok", Services: make(map[string]string, len(names))}
		status := http.StatusOK
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				h.resp.log.Warn("health check failed", zap.String("service", name), zap.Error(err))
				body.Services[name] = "down"
				body.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			body.Services[name] = "up"
		}

		if status != http.StatusOK {
			c.JSON(status, Envelope{Success: false, Data: body, Error: h.resp.message(c, "health.unhealthy")})
			return
		}
		c.JSON(status, Envelope{Success: true, Data: body})
	}
}
