package voiceHandler

import (
	"KalaVaani/internal/api/voice"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/handlerUtil"
	"KalaVaani/pkg/log"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *VoiceHandler) CreatePattern(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create intent pattern request")

	var req voice.PatternRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	pattern, err := h.voiceService.CreatePattern(c, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_intent_pattern")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusCreated, pattern)
	}
}

func (h *VoiceHandler) UpdatePattern(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing update intent pattern request")

	patternID := ctx.Params("pattern_id")
	if patternID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("pattern_id is required"), ctx.Path())
	}

	var req voice.PatternRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	pattern, err := h.voiceService.UpdatePattern(c, patternID, req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_intent_pattern")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, pattern)
	}
}

func (h *VoiceHandler) DeactivatePattern(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 30*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing deactivate intent pattern request")

	patternID := ctx.Params("pattern_id")
	if patternID == "" {
		return errHandler.HandleValidationError(ctx, requestID,
			errors.New("pattern_id is required"), ctx.Path())
	}

	if err := h.voiceService.DeactivatePattern(c, patternID); err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "deactivate_intent_pattern")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"message": "Pattern deactivated",
		})
	}
}

func (h *VoiceHandler) TestPattern(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing test intent pattern request")

	var req voice.PatternTestRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	result, err := h.voiceService.TestPattern(req)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "test_intent_pattern")
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func (h *VoiceHandler) ListPatterns(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing list intent patterns request")

	language := ctx.Query("language")

	patterns, err := h.voiceService.ListPatterns(c, language)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_intent_patterns")
	}

	select {
	case <-c.Done():
		return errHandler.HandleRequestTimeout(ctx)
	default:
		return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
			"patterns": patterns,
		})
	}
}
