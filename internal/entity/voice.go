package entity

import (
	"time"
)

// VoiceSession is one user's voice navigation session. At most one session
// per user may be active at a time; EndedAt is nil while the session runs.
type VoiceSession struct {
	ID                  string     `json:"id"`
	UserID              string     `json:"user_id"`
	Language            string     `json:"language"`
	StartedAt           time.Time  `json:"started_at"`
	EndedAt             *time.Time `json:"ended_at,omitempty"`
	TotalCommands       int        `json:"total_commands"`
	SuccessfulCommands  int        `json:"successful_commands"`
	SuccessRate         float64    `json:"success_rate"`
	AverageConfidence   float64    `json:"average_confidence"`
	PendingConfirmation bool       `json:"pending_confirmation"`
	PendingIntent       string     `json:"pending_intent"`
	PendingRoute        string     `json:"pending_route"`
	LastActivity        time.Time  `json:"last_activity"`
}

func (s VoiceSession) Active() bool {
	return s.EndedAt == nil
}

// VoiceCommand is an immutable record of one resolved (or failed) input.
// Rows are append-only; ordering equals insertion timestamp order.
type VoiceCommand struct {
	ID         string            `json:"id"`
	SessionID  string            `json:"session_id"`
	UserID     string            `json:"user_id"`
	Transcript string            `json:"transcript"`
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Parameters map[string]string `json:"parameters"`
	Success    bool              `json:"success"`
	Route      string            `json:"route,omitempty"`
	DurationMs int64             `json:"duration_ms"`
	ErrorKind  string            `json:"error_kind,omitempty"`
	AudioURL   string            `json:"audio_url,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
}

// IntentPattern is a persisted custom command pattern added at runtime.
// The built-in catalogue lives in pkg/intent and is never mutated.
type IntentPattern struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Intent    string    `json:"intent"`
	Template  string    `json:"template"`
	Variants  []string  `json:"variants"`
	Register  string    `json:"register"`
	Weight    float64   `json:"weight"`
	Route     string    `json:"route"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LanguagePreference is a user's persisted voice language settings.
type LanguagePreference struct {
	UserID              string    `json:"user_id"`
	PrimaryLanguage     string    `json:"primary_language"`
	AutoSwitch          bool      `json:"auto_switch"`
	RequireConfirmation bool      `json:"require_confirmation"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// SwitchTrigger tags what caused a language switch.
type SwitchTrigger string

const (
	SwitchTriggerManual        SwitchTrigger = "manual"
	SwitchTriggerAutoDetection SwitchTrigger = "auto_detection"
	SwitchTriggerContextChange SwitchTrigger = "context_change"
	SwitchTriggerUserCommand   SwitchTrigger = "user_command"
)

// SwitchEvent is one entry of the language switch history.
type SwitchEvent struct {
	UserID       string        `json:"user_id"`
	FromLanguage string        `json:"from_language"`
	ToLanguage   string        `json:"to_language"`
	Trigger      SwitchTrigger `json:"trigger"`
	Confidence   float64       `json:"confidence,omitempty"`
	SwitchedAt   time.Time     `json:"switched_at"`
}
