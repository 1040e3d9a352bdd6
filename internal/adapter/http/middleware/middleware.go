package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"ledger-api/internal/core/domain"
	"ledger-api/internal/core/ports"
	"ledger-api/pkg/apperror"
	"ledger-api/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	HeaderAPIKey         = "X-API-Key"
	HeaderRequestID      = "X-Request-ID"
	HeaderIdempotencyKey = "Idempotency-Key"

	// AdminActorID names the actor behind the admin API key.
	AdminActorID = "admin"

	// Context keys
	CtxActor      = "actor"
	CtxRequestID  = "request_id"
	CtxResourceID = "audit_resource_id"

	maxRequestIDLen = 64
)

// AuthConfig configures actor resolution.
type AuthConfig struct {
	AdminAPIKey  string // empty disables X-API-Key access
	TokenSvc     ports.TokenService
	RequireActor bool // false lets anonymous requests through without an actor
}

// Authenticate resolves the request's actor from X-API-Key (admin) or a
// Bearer session token and stores it under CtxActor.
func Authenticate(cfg AuthConfig, log zerolog.Logger) gin.HandlerFunc {
	adminKey := []byte(cfg.AdminAPIKey)

	return func(c *gin.Context) {
		if key := c.GetHeader(HeaderAPIKey); key != "" {
			if len(adminKey) == 0 || subtle.ConstantTimeCompare([]byte(key), adminKey) != 1 {
				log.Warn().Str("client_ip", c.ClientIP()).Msg("rejected api key")
				response.Error(c, apperror.ErrInvalidCredentials())
				c.Abort()
				return
			}
			c.Set(CtxActor, &domain.Actor{ID: AdminActorID, Role: domain.RoleAdmin})
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			if cfg.RequireActor {
				response.Error(c, apperror.ErrUnauthorized())
				c.Abort()
				return
			}
			c.Next()
			return
		}

		tokenStr, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenStr == "" || cfg.TokenSvc == nil {
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		claims, err := cfg.TokenSvc.Validate(tokenStr)
		if err != nil {
			log.Debug().Err(err).Msg("token validation failed")
			response.Error(c, apperror.ErrInvalidToken())
			c.Abort()
			return
		}

		c.Set(CtxActor, &domain.Actor{ID: claims.Subject, Role: claims.Role})
		c.Next()
	}
}

// ActorFrom returns the actor resolved by Authenticate, or nil.
func ActorFrom(c *gin.Context) *domain.Actor {
	if v, ok := c.Get(CtxActor); ok {
		if actor, ok := v.(*domain.Actor); ok {
			return actor
		}
	}
	return nil
}

// RequestID propagates a client-supplied X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLen || !domain.ValidAccountID(id) {
			id = uuid.New().String()
		}
		c.Set(CtxRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}

// RequestLogger creates a middleware that logs every HTTP request.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		if status >= http.StatusInternalServerError {
			event = log.Error()
		} else if status >= http.StatusBadRequest {
			event = log.Warn()
		}

		if actor := ActorFrom(c); actor != nil {
			event = event.Str("actor", actor.ID)
		}
		if len(c.Errors) > 0 {
			event = event.Str("errors", c.Errors.String())
		}

		event.
			Str("request_id", c.GetString(CtxRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery creates a panic recovery middleware.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().
					Interface("panic", r).
					Str("request_id", c.GetString(CtxRequestID)).
					Str("path", c.Request.URL.Path).
					Msg("panic recovered")
				response.Error(c, apperror.InternalError(nil))
				c.Abort()
			}
		}()
		c.Next()
	}
}
