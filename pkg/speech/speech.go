package speech

import (
	"context"
	"errors"
	"fmt"

	"KalaVaani/pkg/recovery"
)

// Transcript is the result of transcribing one audio clip.
type Transcript struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Language   string  `json:"language"`
}

// IRecognizer turns captured audio into text. Implementations classify their
// failures with recovery kinds so callers can pick the right fallback mode.
type IRecognizer interface {
	Transcribe(ctx context.Context, audio []byte, lang string) (Transcript, error)
}

// ISynthesizer turns feedback text into spoken audio.
type ISynthesizer interface {
	Synthesize(ctx context.Context, text, lang string) ([]byte, error)
}

const (
	ProviderWhisper = "whisper"
	ProviderGemini  = "gemini"
)

// RecognizerConfig selects and configures the transcription provider.
type RecognizerConfig struct {
	Provider     string
	OpenAIKey    string
	WhisperModel string
	GeminiKey    string
	GeminiModel  string
}

// NewRecognizer builds the configured provider. Whisper is the default.
func NewRecognizer(cfg RecognizerConfig) (IRecognizer, error) {
	switch cfg.Provider {
	case "", ProviderWhisper:
		if cfg.OpenAIKey == "" {
			return nil, errors.New("openai API key is required for the whisper recognizer")
		}
		return NewWhisperRecognizer(cfg.OpenAIKey, cfg.WhisperModel), nil
	case ProviderGemini:
		return NewGeminiRecognizer(context.Background(), cfg.GeminiKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown speech provider %q", cfg.Provider)
	}
}

// classifyHTTPStatus maps a provider HTTP status to an error kind.
func classifyHTTPStatus(status int, err error) error {
	switch {
	case status == 401 || status == 403:
		return recovery.NewError(recovery.KindAuthenticationFailed, err)
	case status == 429:
		return recovery.NewError(recovery.KindQuotaExceeded, err)
	case status >= 500:
		return recovery.NewError(recovery.KindServiceUnavailable, err)
	default:
		return recovery.NewError(recovery.KindNetworkError, err)
	}
}
