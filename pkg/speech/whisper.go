package speech

import (
	"bytes"
	"context"
	"errors"
	"math"

	openai "github.com/sashabaranov/go-openai"

	"KalaVaani/pkg/language"
	"KalaVaani/pkg/recovery"
)

type whisperRecognizer struct {
	client *openai.Client
	model  string
}

func NewWhisperRecognizer(apiKey, model string) IRecognizer {
	if model == "" {
		model = openai.Whisper1
	}
	return &whisperRecognizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (w *whisperRecognizer) Transcribe(ctx context.Context, audio []byte, lang string) (Transcript, error) {
	req := openai.AudioRequest{
		Model:    w.model,
		Reader:   bytes.NewReader(audio),
		FilePath: "command.webm",
		Language: language.LocaleFor(lang),
		Format:   openai.AudioResponseFormatVerboseJSON,
	}

	resp, err := w.client.CreateTranscription(ctx, req)
	if err != nil {
		return Transcript{}, classifyOpenAIError(err)
	}

	return Transcript{
		Text:       resp.Text,
		Confidence: confidenceFromSegments(resp.Segments),
		Language:   lang,
	}, nil
}

// transcriptionSegment aliases the anonymous element type of
// openai.AudioResponse.Segments; go-openai exports no named type for it, so
// the fields here (including tags) must match the library declaration exactly.
type transcriptionSegment = struct {
	ID               int     `json:"id"`
	Seek             int     `json:"seek"`
	Start            float64 `json:"start"`
	End              float64 `json:"end"`
	Text             string  `json:"text"`
	Tokens           []int   `json:"tokens"`
	Temperature      float64 `json:"temperature"`
	AvgLogprob       float64 `json:"avg_logprob"`
	CompressionRatio float64 `json:"compression_ratio"`
	NoSpeechProb     float64 `json:"no_speech_prob"`
	Transient        bool    `json:"transient"`
}

// confidenceFromSegments averages exp(avg_logprob) over the returned
// segments. Whisper reports no single confidence number, but the per-segment
// log probability is a usable proxy.
func confidenceFromSegments(segments []transcriptionSegment) float64 {
	if len(segments) == 0 {
		return 0.8
	}
	var sum float64
	for _, s := range segments {
		sum += math.Exp(s.AvgLogprob)
	}
	return language.Clamp(sum / float64(len(segments)))
}

func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyHTTPStatus(apiErr.HTTPStatusCode, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return recovery.NewError(recovery.KindNetworkError, err)
	}
	return recovery.NewError(recovery.KindServiceUnavailable, err)
}
