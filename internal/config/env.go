package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// EnvConfig carries everything the server reads from the environment besides
// the database settings, which the postgres package resolves itself.
type EnvConfig struct {
	AppPort string `env:"APP_PORT" envDefault:"3000"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SpeechProvider  string `env:"SPEECH_PROVIDER" envDefault:"whisper"`
	OpenAIKey       string `env:"OPENAI_API_KEY"`
	WhisperModel    string `env:"WHISPER_MODEL" envDefault:"whisper-1"`
	GeminiKey       string `env:"GEMINI_API_KEY"`
	GeminiModel     string `env:"GEMINI_MODEL" envDefault:"gemini-1.5-flash"`
	SpeechHealthURL string `env:"SPEECH_HEALTH_URL"`
	StreamURL       string `env:"SPEECH_STREAM_URL"`

	EnableTTS        bool              `env:"VOICE_ENABLE_TTS" envDefault:"false"`
	ElevenLabsKey    string            `env:"ELEVENLABS_API_KEY"`
	ElevenLabsVoice  string            `env:"ELEVENLABS_VOICE_ID" envDefault:"21m00Tcm4TlvDq8ikWAM"`
	ElevenLabsVoices map[string]string `env:"ELEVENLABS_LANGUAGE_VOICES" envSeparator:","`

	MaxAudioBytes       int64         `env:"VOICE_MAX_AUDIO_BYTES" envDefault:"10485760"`
	SessionTimeout      time.Duration `env:"VOICE_SESSION_TIMEOUT" envDefault:"30m"`
	AutoSwitchThreshold float64       `env:"VOICE_AUTO_SWITCH_THRESHOLD" envDefault:"0.7"`
	ConfirmBelow        float64       `env:"VOICE_CONFIRM_BELOW" envDefault:"0.7"`
	SuggestionLimit     int           `env:"VOICE_SUGGESTION_LIMIT" envDefault:"5"`
	StateTTL            time.Duration `env:"VOICE_STATE_TTL" envDefault:"168h"`

	OfflineCacheBound  int           `env:"VOICE_OFFLINE_CACHE_BOUND" envDefault:"50"`
	AnalyticsLogBound  int           `env:"VOICE_ANALYTICS_LOG_BOUND" envDefault:"1000"`
	AnalyticsRetention time.Duration `env:"VOICE_ANALYTICS_RETENTION" envDefault:"168h"`
}

func NewEnv() (*EnvConfig, error) {
	cfg := &EnvConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
