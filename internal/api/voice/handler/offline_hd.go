package voiceHandler

import (
	"KalaVaani/internal/api/voice"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/handlerUtil"
	"KalaVaani/pkg/log"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *VoiceHandler) MatchOffline(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing offline match request")

	var req voice.OfflineMatchRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result := h.voiceService.MatchOffline(req)

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func (h *VoiceHandler) CacheOfflineCommand(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing cache offline command request")

	var req voice.CacheCommandRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.voiceService.CacheOfflineCommand(c, req); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "cache_offline_command")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, fiber.Map{
			"message": "Command cached for offline matching",
		})
	}
}
