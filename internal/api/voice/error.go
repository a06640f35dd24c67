package voice

import "KalaVaani/pkg/response"

var (
	ErrInvalidAudioFile     = response.NewError(400, "invalid audio file")
	ErrAudioFileTooLarge    = response.NewError(400, "audio file too large")
	ErrTranscriptionFailed  = response.NewError(500, "failed to transcribe audio")
	ErrTTSGenerationFailed  = response.NewError(500, "failed to generate speech")
	ErrSessionNotFound      = response.NewError(404, "voice session not found")
	ErrSessionAlreadyActive = response.NewError(409, "an active voice session already exists")
	ErrSessionNotActive     = response.NewError(400, "voice session has already ended")
	ErrCommandInProgress    = response.NewError(409, "another command is still being processed")
	ErrNothingToConfirm     = response.NewError(400, "no command is awaiting confirmation")
	ErrCommandNotRecognized = response.NewError(400, "command not recognized")
	ErrLanguageNotSupported = response.NewError(400, "language not supported")
	ErrPatternNotFound      = response.NewError(404, "intent pattern not found")
	ErrInvalidPattern       = response.NewError(400, "invalid intent pattern")
	ErrPreferenceNotFound   = response.NewError(404, "language preference not found")
	ErrEngineNotReady       = response.NewError(503, "voice engine is not initialized")
	ErrListeningInProgress  = response.NewError(409, "a listening session is already open")
	ErrUnknownFallbackMode  = response.NewError(400, "unknown fallback mode")
	ErrModeNotAvailable     = response.NewError(409, "fallback mode requirements not met")
	ErrUnauthorizedAccess   = response.NewError(403, "unauthorized access to voice features")
)
