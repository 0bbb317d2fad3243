package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Eldesouky97/home-craft/internal/domain"
	"github.com/Eldesouky97/home-craft/internal/i18n"
	"github.com/Eldesouky97/home-craft/internal/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Envelope is the body of every JSON response.
type Envelope struct {
	Success    bool               `json:"success"`
	Data       any                `json:"data,omitempty"`
	Message    string             `json:"message,omitempty"`
	Error      string             `json:"error,omitempty"`
	Violations []domain.Violation `json:"violations,omitempty"`
	Pagination *Pagination        `json:"pagination,omitempty"`
}

type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int   `json:"pages"`
}

// Responder renders envelopes and maps service errors to status codes and
// localised messages.
type Responder struct {
	tr         *i18n.Translator
	production bool
	log        *zap.Logger
}

func NewResponder(tr *i18n.Translator, production bool, log *zap.Logger) *Responder {
	return &Responder{tr: tr, production: production, log: log}
}

func (r *Responder) message(c *gin.Context, key string, args ...any) string {
	return r.tr.Sprintf(r.tr.Match(c.GetHeader("Accept-Language")), key, args...)
}

func (r *Responder) OK(c *gin.Context, status int, data any, key string) {
	env := Envelope{Success: true, Data: data}
	if key != "" {
		env.Message = r.message(c, key)
	}
	c.JSON(status, env)
}

func writePage[T any](c *gin.Context, p *services.Page[T]) {
	c.JSON(http.StatusOK, Envelope{
		Success: true,
		Data:    p.Items,
		Pagination: &Pagination{
			Page:  p.Page,
			Limit: p.Limit,
			Total: p.Total,
			Pages: p.Pages,
		},
	})
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrInsufficientStock):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAuthorization):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Fail writes err as a failure envelope. Causes of persistence errors only
// reach the client outside production.
func (r *Responder) Fail(c *gin.Context, err error) {
	status := StatusFor(err)
	env := Envelope{Success: false}

	de, ok := domain.AsError(err)
	if !ok {
		r.log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		env.Error = r.message(c, "internal.error")
		if !r.production {
			env.Error += ": " + err.Error()
		}
		c.AbortWithStatusJSON(status, env)
		return
	}

	env.Error = r.message(c, de.Key, de.Args...)
	env.Violations = de.Violations
	if errors.Is(err, domain.ErrPersistence) {
		_ = c.Error(err)
		if !r.production && de.Err != nil {
			env.Error = fmt.Sprintf("%s: %v", env.Error, de.Err)
		}
	}
	c.AbortWithStatusJSON(status, env)
}

// FailKey writes a failure envelope for a catalogue key without a service
// error behind it.
func (r *Responder) FailKey(c *gin.Context, status int, key string, args ...any) {
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: r.message(c, key, args...)})
}
