package middleware

import (
	"KalaVaani/pkg/utils"
	"time"

	"github.com/gofiber/fiber/v2"
)

const RequestIDKey = "X-Request-ID"

// maxInboundRequestIDLen caps client-supplied correlation ids. Oversized
// values are replaced with a fresh id, not truncated.
const maxInboundRequestIDLen = 64

// NewRequestIDMiddleware tags every request with a correlation id. The
// mobile client reuses its id when it retries an audio upload, so an
// inbound value is kept as long as it fits the length gate.
func NewRequestIDMiddleware() fiber.Handler {
	utilsInstance := utils.New()

	return func(c *fiber.Ctx) error {
		requestID := c.Get(RequestIDKey)
		if len(requestID) > maxInboundRequestIDLen {
			requestID = ""
		}

		if requestID == "" {
			requestID, _ = utilsInstance.NewULIDFromTimestamp(time.Now())
		}

		c.Locals(RequestIDKey, requestID)
		c.Set(RequestIDKey, requestID)

		return c.Next()
	}
}
