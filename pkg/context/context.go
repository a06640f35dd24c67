// Package context carries request-scoped correlation data across the
// handler, service, and repository layers without dragging fiber types
// below the transport.
package context

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

type ctxKey int

const requestIDKey ctxKey = iota

const headerRequestID = "X-Request-ID"

// unknownRequestID is what repositories log when a context never passed
// through the HTTP layer, such as cron jobs and shutdown flushes.
const unknownRequestID = "unknown"

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func GetRequestID(ctx context.Context) string {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return unknownRequestID
	}
	return requestID
}

// FromFiberCtx lifts the correlation id out of the fiber request. The
// returned context is rooted in context.Background because fiber recycles
// its request contexts after the handler returns.
func FromFiberCtx(c *fiber.Ctx) context.Context {
	requestID, ok := c.Locals(headerRequestID).(string)
	if !ok || requestID == "" {
		requestID = c.Get(headerRequestID)
	}
	if requestID == "" {
		requestID = unknownRequestID
	}

	return WithRequestID(context.Background(), requestID)
}
