package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

type elevenLabsSynthesizer struct {
	apiKey       string
	defaultVoice string
	voices       map[string]string
	client       *http.Client
}

// NewElevenLabsSynthesizer speaks feedback through ElevenLabs. voices maps a
// language code to a voice id; languages without an entry use the default
// voice, which the multilingual model handles acceptably.
func NewElevenLabsSynthesizer(apiKey, defaultVoice string, voices map[string]string) ISynthesizer {
	return &elevenLabsSynthesizer{
		apiKey:       apiKey,
		defaultVoice: defaultVoice,
		voices:       voices,
		client:       &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *elevenLabsSynthesizer) Synthesize(ctx context.Context, text, lang string) ([]byte, error) {
	voice := s.voices[lang]
	if voice == "" {
		voice = s.defaultVoice
	}
	url := "https://api.elevenlabs.io/v1/text-to-speech/" + voice

	requestBody := map[string]interface{}{
		"text":     text,
		"model_id": "eleven_multilingual_v2",
		"voice_settings": map[string]interface{}{
			"stability":         0.5,
			"similarity_boost":  0.8,
			"style":             0.0,
			"use_speaker_boost": true,
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/mpeg")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("xi-api-key", s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, classifyHTTPStatus(0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, classifyHTTPStatus(resp.StatusCode, fmt.Errorf("elevenlabs API error: %s", resp.Status))
	}

	return io.ReadAll(resp.Body)
}
