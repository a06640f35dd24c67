package voice

import (
	"mime/multipart"
	"time"

	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/fallback"
)

type ResolveTextRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=500"`
	Language string `json:"language,omitempty" validate:"omitempty,max=8"`
}

type ProcessAudioRequest struct {
	AudioFile *multipart.FileHeader `json:"audio_file" validate:"required"`
	Language  string                `json:"language,omitempty"`
}

type ConfirmationRequest struct {
	Text string `json:"text" validate:"required,min=1,max=100"`
}

// CommandResponse is what every resolve/confirm call returns. Success=false
// with a Message still means the request itself worked; the engine just has
// an answer other than navigation.
type CommandResponse struct {
	Transcript    string            `json:"transcript"`
	Intent        string            `json:"intent,omitempty"`
	Confidence    float64           `json:"confidence"`
	Parameters    map[string]string `json:"parameters,omitempty"`
	Route         string            `json:"route,omitempty"`
	Success       bool              `json:"success"`
	Message       string            `json:"message,omitempty"`
	AudioFeedback string            `json:"audio_feedback,omitempty"`
	AudioURL      string            `json:"audio_url,omitempty"`
	Language      string            `json:"language"`
	Mode          string            `json:"mode"`
	Offline       bool              `json:"offline,omitempty"`
	NeedsConfirm  bool              `json:"needs_confirmation,omitempty"`
	ErrorKind     string            `json:"error_kind,omitempty"`
	Suggestions   []string          `json:"suggestions,omitempty"`
	DurationMs    int64             `json:"duration_ms"`
}

type StartSessionRequest struct {
	Language string `json:"language,omitempty" validate:"omitempty,max=8"`
}

type SessionResponse struct {
	ID                 string     `json:"id"`
	UserID             string     `json:"user_id"`
	Language           string     `json:"language"`
	StartedAt          time.Time  `json:"started_at"`
	EndedAt            *time.Time `json:"ended_at,omitempty"`
	Active             bool       `json:"active"`
	TotalCommands      int        `json:"total_commands"`
	SuccessfulCommands int        `json:"successful_commands"`
	SuccessRate        float64    `json:"success_rate"`
	AverageConfidence  float64    `json:"average_confidence"`
}

type DetectLanguageRequest struct {
	Text string `json:"text" validate:"required,min=1,max=500"`
}

type DetectLanguageResponse struct {
	Language   string `json:"language"`
	Confidence float64 `json:"confidence"`
}

type SwitchLanguageRequest struct {
	Language string `json:"language" validate:"required,max=8"`
}

type SwitchLanguageResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message"`
	Previous string `json:"previous_language"`
	Current  string `json:"current_language"`
	Trigger  string `json:"trigger,omitempty"`
}

type AutoSwitchRequest struct {
	Text      string  `json:"text" validate:"required,min=1,max=500"`
	Threshold float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
}

type PreferenceRequest struct {
	PrimaryLanguage     string `json:"primary_language" validate:"required,max=8"`
	AutoSwitch          bool   `json:"auto_switch"`
	RequireConfirmation bool   `json:"require_confirmation"`
}

type LanguageInfo struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name"`
}

type FallbackStatusResponse struct {
	Mode         fallback.Mode                    `json:"mode"`
	Level        fallback.Level                   `json:"level"`
	Capabilities map[string]capability.Capability `json:"capabilities"`
}

type SwitchModeRequest struct {
	Mode string `json:"mode" validate:"required,max=32"`
}

type ReportCapabilityRequest struct {
	Name      string `json:"name" validate:"required,max=64"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

type PatternRequest struct {
	Intent   string   `json:"intent" validate:"required,max=64"`
	Language string   `json:"language" validate:"required,max=8"`
	Template string   `json:"template" validate:"required,max=255"`
	Variants []string `json:"variants,omitempty" validate:"omitempty,dive,max=255"`
	Register string   `json:"register,omitempty" validate:"omitempty,oneof=formal informal"`
	Weight   float64  `json:"weight,omitempty" validate:"omitempty,gt=0,lte=1"`
	Route    string   `json:"route,omitempty" validate:"omitempty,max=128"`
}

type PatternTestRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=500"`
	Language string `json:"language,omitempty" validate:"omitempty,max=8"`
}

// PatternTestResponse reports what the resolver would do with an input
// without touching any session. Used by the pattern admin screens.
type PatternTestResponse struct {
	Input          string            `json:"input"`
	NormalizedText string            `json:"normalized_text"`
	Language       string            `json:"language"`
	Matched        bool              `json:"matched"`
	Intent         string            `json:"intent,omitempty"`
	Confidence     float64           `json:"confidence"`
	Parameters     map[string]string `json:"parameters,omitempty"`
	Route          string            `json:"route,omitempty"`
	ProcessingMs   int64             `json:"processing_ms"`
}

type CacheCommandRequest struct {
	Pattern  string `json:"pattern" validate:"required,min=1,max=255"`
	Intent   string `json:"intent" validate:"required,max=64"`
	Route    string `json:"route,omitempty" validate:"omitempty,max=128"`
	Language string `json:"language" validate:"required,max=8"`
}

type OfflineMatchRequest struct {
	Text     string `json:"text" validate:"required,min=1,max=500"`
	Language string `json:"language,omitempty" validate:"omitempty,max=8"`
}

type OfflineMatchResponse struct {
	Matched    bool    `json:"matched"`
	Pattern    string  `json:"pattern,omitempty"`
	Intent     string  `json:"intent,omitempty"`
	Route      string  `json:"route,omitempty"`
	Confidence float64 `json:"confidence"`
}

type CommandHistoryEntry struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id"`
	Transcript string            `json:"transcript"`
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Parameters map[string]string `json:"parameters,omitempty"`
	Success    bool              `json:"success"`
	Route      string            `json:"route,omitempty"`
	ErrorKind  string            `json:"error_kind,omitempty"`
	AudioURL   string            `json:"audio_url,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	CreatedAt  time.Time         `json:"created_at"`
}

type MetricsResponse struct {
	Metrics  analytics.Metrics `json:"metrics"`
	Insights []string          `json:"insights"`
}

type SuggestionsResponse struct {
	Language    string   `json:"language"`
	Suggestions []string `json:"suggestions"`
}

func NewSessionResponse(s entity.VoiceSession) SessionResponse {
	return SessionResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		Language:           s.Language,
		StartedAt:          s.StartedAt,
		EndedAt:            s.EndedAt,
		Active:             s.Active(),
		TotalCommands:      s.TotalCommands,
		SuccessfulCommands: s.SuccessfulCommands,
		SuccessRate:        s.SuccessRate,
		AverageConfidence:  s.AverageConfidence,
	}
}

func NewCommandHistoryEntry(c entity.VoiceCommand) CommandHistoryEntry {
	return CommandHistoryEntry{
		ID:         c.ID,
		SessionID:  c.SessionID,
		Transcript: c.Transcript,
		Intent:     c.Intent,
		Confidence: c.Confidence,
		Parameters: c.Parameters,
		Success:    c.Success,
		Route:      c.Route,
		ErrorKind:  c.ErrorKind,
		AudioURL:   c.AudioURL,
		DurationMs: c.DurationMs,
		CreatedAt:  c.CreatedAt,
	}
}
