package voiceHandler

import (
	"KalaVaani/pkg/handlerUtil"
	"KalaVaani/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// GetMetrics reports aggregate usage numbers. The optional since query
// parameter (RFC 3339) narrows the window; without it every recorded
// event counts.
func (h *VoiceHandler) GetMetrics(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing get voice metrics request")

	var since time.Time
	if raw := ctx.Query("since"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
		since = parsed
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, h.voiceService.GetMetrics(since))
}
