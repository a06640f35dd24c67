package handlerUtil

import (
	"KalaVaani/internal/api/voice"
	"KalaVaani/pkg/log"
	"KalaVaani/pkg/response"
	"errors"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

type ErrorHandler struct {
	logger *logrus.Logger
}

func New(logger *logrus.Logger) *ErrorHandler {
	return &ErrorHandler{
		logger: logger,
	}
}

func (h *ErrorHandler) Handle(c *fiber.Ctx, requestID string, err error, path string, operation string) error {
	// Session errors
	if errors.Is(err, voice.ErrSessionNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Voice session not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Voice session not found",
			"code":    "SESSION_NOT_FOUND",
		})
	}

	if errors.Is(err, voice.ErrSessionAlreadyActive) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("User already has an active voice session")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "An active voice session already exists, end it before starting a new one",
			"code":    "SESSION_ALREADY_ACTIVE",
		})
	}

	if errors.Is(err, voice.ErrSessionNotActive) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Voice session is not active")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Voice session has already ended",
			"code":    "SESSION_NOT_ACTIVE",
		})
	}

	if errors.Is(err, voice.ErrCommandInProgress) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Command already in flight for session")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Another command is still being processed",
			"code":    "COMMAND_IN_PROGRESS",
		})
	}

	if errors.Is(err, voice.ErrNothingToConfirm) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("No command awaiting confirmation")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "No command is awaiting confirmation",
			"code":    "NOTHING_TO_CONFIRM",
		})
	}

	if errors.Is(err, voice.ErrUnauthorizedAccess) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Session belongs to another user")
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "You do not have access to this session",
			"code":    "FORBIDDEN",
		})
	}

	// Audio errors
	if errors.Is(err, voice.ErrInvalidAudioFile) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Invalid audio file")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid audio file. Supported formats: wav, mp3, ogg, webm, m4a.",
		})
	}

	if errors.Is(err, voice.ErrAudioFileTooLarge) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Audio file too large")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Audio file too large",
		})
	}

	if errors.Is(err, voice.ErrTranscriptionFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Audio transcription failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not transcribe the audio",
			"code":    "TRANSCRIPTION_FAILED",
		})
	}

	if errors.Is(err, voice.ErrTTSGenerationFailed) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Speech synthesis failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not generate audio feedback",
			"code":    "TTS_FAILED",
		})
	}

	// Command and language errors
	if errors.Is(err, voice.ErrCommandNotRecognized) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Command not recognized")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Command not recognized",
			"code":    "COMMAND_NOT_RECOGNIZED",
		})
	}

	if errors.Is(err, voice.ErrLanguageNotSupported) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Language not supported")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Language is not supported",
			"code":    "LANGUAGE_NOT_SUPPORTED",
		})
	}

	if errors.Is(err, voice.ErrPreferenceNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Language preference not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Language preference not found",
			"code":    "PREFERENCE_NOT_FOUND",
		})
	}

	// Pattern errors
	if errors.Is(err, voice.ErrPatternNotFound) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Intent pattern not found")
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"message": "Intent pattern not found",
			"code":    "PATTERN_NOT_FOUND",
		})
	}

	if errors.Is(err, voice.ErrInvalidPattern) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Invalid intent pattern")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Pattern template could not be compiled",
			"code":    "INVALID_PATTERN",
		})
	}

	// Engine and mode errors
	if errors.Is(err, voice.ErrEngineNotReady) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Error("Speech engine not ready")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"message": "Speech engine is not available",
			"code":    "ENGINE_NOT_READY",
		})
	}

	if errors.Is(err, voice.ErrListeningInProgress) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Listening already in progress")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "A listening stream is already open for this session",
			"code":    "LISTENING_IN_PROGRESS",
		})
	}

	if errors.Is(err, voice.ErrUnknownFallbackMode) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Unknown fallback mode")
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Unknown fallback mode",
			"code":    "UNKNOWN_MODE",
		})
	}

	if errors.Is(err, voice.ErrModeNotAvailable) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"path":       path,
			"operation":  operation,
		}).Warn("Fallback mode not available")
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"message": "Requested mode is not available on this device",
			"code":    "MODE_NOT_AVAILABLE",
		})
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		h.logger.WithFields(log.Fields{
			"request_id": requestID,
			"error":      err.Error(),
			"code":       respErr.Code,
			"path":       path,
			"operation":  operation,
		}).Warn("Operation failed with error response")
		return c.Status(respErr.Code).JSON(fiber.Map{"error": err.Error()})
	}

	traceID := requestID
	if traceID == "" || traceID == "unknown" {
		if id, uuidErr := uuid.NewRandom(); uuidErr == nil {
			traceID = id.String()
		}
	}

	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"trace_id":   traceID,
		"error":      err.Error(),
		"path":       path,
		"operation":  operation,
	}).Error("Unexpected error")

	// The trace id gives support staff something to grep for when an
	// artisan reports a failure over the phone.
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":    "An unexpected error occurred",
		"trace_id": traceID,
	})
}

func (h *ErrorHandler) HandleValidationError(c *fiber.Ctx, requestID string, err error, path string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"error":      err.Error(),
		"path":       path,
	}).Warn("Validation failed")

	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "Validation failed: " + err.Error(),
		"code":  "VALIDATION_ERROR",
	})
}

func (h *ErrorHandler) HandleRequestTimeout(c *fiber.Ctx) error {
	return c.Status(fiber.StatusRequestTimeout).JSON(utils.StatusMessage(fiber.StatusRequestTimeout))
}

func (h *ErrorHandler) HandleUnauthorized(c *fiber.Ctx, requestID string, message string) error {
	h.logger.WithFields(log.Fields{
		"request_id": requestID,
		"path":       c.Path(),
		"message":    message,
	}).Warn("Unauthorized access")

	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": message,
		"code":  "UNAUTHORIZED",
	})
}

func (h *ErrorHandler) HandleSuccess(c *fiber.Ctx, statusCode int, data interface{}) error {
	if data == nil {
		return c.SendStatus(statusCode)
	}
	return c.Status(statusCode).JSON(data)
}
