package voiceHandler

import (
	voiceService "KalaVaani/internal/api/voice/service"
	"KalaVaani/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type VoiceHandler struct {
	log          *logrus.Logger
	validator    *validator.Validate
	middleware   middleware.Middleware
	voiceService voiceService.IVoiceService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	vs voiceService.IVoiceService,
) *VoiceHandler {
	return &VoiceHandler{
		log:          log,
		validator:    validate,
		middleware:   middleware,
		voiceService: vs,
	}
}

func (h *VoiceHandler) Start(srv fiber.Router) {
	voice := srv.Group("/voice")

	// All voice endpoints require authentication
	voice.Use(h.middleware.NewTokenMiddleware)
	voice.Use(h.middleware.NewRateLimiter)

	// Session lifecycle. /sessions/active must be registered before the
	// :session_id routes so it is not swallowed as an id.
	voice.Post("/sessions", h.StartSession)
	voice.Get("/sessions", h.GetSessionHistory)
	voice.Get("/sessions/active", h.GetActiveSession)
	voice.Get("/sessions/:session_id", h.GetSession)
	voice.Post("/sessions/:session_id/end", h.EndSession)
	voice.Get("/sessions/:session_id/stats", h.GetSessionStats)

	// Command processing
	voice.Post("/sessions/:session_id/commands", h.ResolveCommand)
	voice.Post("/sessions/:session_id/audio", h.ProcessAudioCommand)
	voice.Post("/sessions/:session_id/confirm", h.ProcessConfirmation)

	// Continuous listening stream
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}
	voice.Use("/sessions/:session_id/listen", wsMiddleware)
	voice.Get("/sessions/:session_id/listen", websocket.New(h.handleListenStream))

	// Language switching on a live session
	voice.Post("/sessions/:session_id/language", h.SwitchLanguage)
	voice.Post("/sessions/:session_id/language/auto", h.AutoSwitch)

	// Command history and suggestions
	voice.Get("/history", h.GetCommandHistory)
	voice.Get("/suggestions", h.GetSuggestions)

	// Language coordination
	language := voice.Group("/language")
	language.Get("/supported", h.GetSupportedLanguages)
	language.Post("/detect", h.DetectLanguage)
	language.Get("/preference", h.GetPreference)
	language.Put("/preference", h.UpdatePreference)
	language.Get("/switches", h.GetSwitchHistory)

	// Degradation control
	fallback := voice.Group("/fallback")
	fallback.Get("/status", h.GetFallbackStatus)
	fallback.Post("/mode", h.SwitchMode)
	fallback.Post("/capability", h.ReportCapability)
	fallback.Post("/reset", h.ResetFallback)

	// Offline command cache
	offline := voice.Group("/offline")
	offline.Post("/match", h.MatchOffline)
	offline.Post("/cache", h.CacheOfflineCommand)

	// Intent pattern administration
	voice.Get("/patterns", h.ListPatterns)
	voice.Post("/patterns", h.CreatePattern)
	voice.Post("/patterns/test", h.TestPattern)
	voice.Put("/patterns/:pattern_id", h.UpdatePattern)
	voice.Delete("/patterns/:pattern_id", h.DeactivatePattern)

	// Usage metrics
	voice.Get("/metrics", h.GetMetrics)
}
