package http

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Eldesouky97/home-craft/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	actorKey        = "actor"
	requestIDKey    = "request_id"
	requestIDHeader = "X-Request-ID"
)

// Authenticator resolves a bearer token to the calling actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.Actor, error)
}

// ActorFrom returns the authenticated actor of the request, or nil for
// anonymous callers.
func ActorFrom(c *gin.Context) *domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(*domain.Actor); ok {
			return a
		}
	}
	return nil
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// Authenticate attaches the actor when a bearer token is present and lets
// anonymous requests through. An invalid token is still rejected.
func Authenticate(auth Authenticator, resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			resp.Fail(c, err)
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth(resp *Responder) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ActorFrom(c) == nil {
			resp.Fail(c, domain.Unauthenticated("auth.token_missing"))
			return
		}
		c.Next()
	}
}

// RequireRole admits only actors with one of roles.
func RequireRole(resp *Responder, roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil {
			resp.Fail(c, domain.Unauthenticated("auth.token_missing"))
			return
		}
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		resp.Fail(c, domain.Forbidden("auth.role_required"))
	}
}

// RequestID propagates or assigns an X-Request-ID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

// RequestLogger logs one line per request.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString(requestIDKey)),
			zap.String("client_ip", c.ClientIP()),
		}
		if actor := ActorFrom(c); actor != nil {
			fields = append(fields, zap.Uint64("user_id", actor.UserID))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			log.Error("request", fields...)
		case status >= http.StatusBadRequest:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}

// RateLimiter keeps one token bucket per client key.
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
	resp     *Responder
}

func NewRateLimiter(rps float64, burst int, resp *Responder) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(rps),
		burst:    burst,
		resp:     resp,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	l, ok := rl.limiters[key]
	if !ok {
		// TODO: evict idle limiters; the map grows with every distinct client.
		l = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Handler limits by authenticated user when known, otherwise by client IP.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if actor := ActorFrom(c); actor != nil {
			key = "user:" + strconv.FormatUint(actor.UserID, 10)
		}
		if !rl.limiter(key).Allow() {
			c.Header("Retry-After", "1")
			rl.resp.FailKey(c, http.StatusTooManyRequests, "request.rate_limited")
			return
		}
		c.Next()
	}
}
