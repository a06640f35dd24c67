package speech

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"KalaVaani/pkg/language"
	"KalaVaani/pkg/recovery"
)

type geminiRecognizer struct {
	client *genai.Client
	model  string
}

// NewGeminiRecognizer transcribes through Gemini's audio understanding.
// There is no per-utterance confidence in the response, so transcripts carry
// a fixed moderate confidence and the intent matcher does the real scoring.
func NewGeminiRecognizer(ctx context.Context, apiKey, model string) (IRecognizer, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-1.5-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &geminiRecognizer{client: client, model: model}, nil
}

const geminiTranscriptConfidence = 0.75

func (g *geminiRecognizer) Transcribe(ctx context.Context, audio []byte, lang string) (Transcript, error) {
	model := g.client.GenerativeModel(g.model)
	prompt := fmt.Sprintf(
		"Transcribe this voice command spoken in %s. Return only the spoken words, nothing else.",
		language.DisplayName(lang))

	res, err := model.GenerateContent(ctx, genai.Text(prompt), genai.Blob{
		MIMEType: "audio/webm",
		Data:     audio,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Transcript{}, recovery.NewError(recovery.KindNetworkError, err)
		}
		return Transcript{}, recovery.NewError(recovery.KindServiceUnavailable, err)
	}

	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil || len(res.Candidates[0].Content.Parts) == 0 {
		return Transcript{}, recovery.NewError(recovery.KindSpeechNotRecognized, errors.New("empty gemini response"))
	}

	text, ok := res.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return Transcript{}, recovery.NewError(recovery.KindSpeechNotRecognized, errors.New("unexpected gemini response format"))
	}

	return Transcript{
		Text:       strings.TrimSpace(string(text)),
		Confidence: geminiTranscriptConfidence,
		Language:   lang,
	}, nil
}

func (g *geminiRecognizer) Close() {
	if g.client != nil {
		g.client.Close()
	}
}
