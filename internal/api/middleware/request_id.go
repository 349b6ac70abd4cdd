package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"plantkeeper.io/plantkeeper/internal/policy"
)

type contextKey string

const (
	// RequestIDHeader is the HTTP header for request tracing.
	RequestIDHeader = "X-Request-ID"

	ctxKeyRequestID contextKey = "request_id"
	ctxKeyActor     contextKey = "actor"
)

// RequestID injects a unique request ID into the context and response header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(RequestIDHeader)
		if rid == "" {
			id, _ := uuid.NewV7()
			rid = id.String()
		}
		c.Set(string(ctxKeyRequestID), rid)
		c.Writer.Header().Set(RequestIDHeader, rid)
		c.Request = c.Request.WithContext(
			context.WithValue(c.Request.Context(), ctxKeyRequestID, rid),
		)
		c.Next()
	}
}

// GetRequestID extracts the request ID from context.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

// SetActor stores the authenticated actor in the context. The actor is an
// explicit value passed into every service operation; there is no ambient
// current-user state anywhere in the system.
func SetActor(ctx context.Context, actor policy.Actor) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actor)
}

// GetActor extracts the authenticated actor from the context. The zero
// Actor carries no role and passes no policy check.
func GetActor(ctx context.Context) policy.Actor {
	if v, ok := ctx.Value(ctxKeyActor).(policy.Actor); ok {
		return v
	}
	return policy.Actor{}
}
