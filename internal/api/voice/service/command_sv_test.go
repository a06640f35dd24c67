package voiceService

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KalaVaani/internal/api/voice"
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
	"KalaVaani/pkg/recovery"
	"KalaVaani/pkg/speech"
)

func audioUpload(t *testing.T, name, contentType string, payload []byte) *multipart.FileHeader {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="audio"; filename=%q`, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["audio"][0]
}

func TestResolveText(t *testing.T) {
	ctx := context.Background()

	t.Run("Navigates On Exact Command", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "go to dashboard", resp.Transcript)
		assert.Equal(t, intent.NavigateDashboard, resp.Intent)
		assert.Equal(t, "/dashboard", resp.Route)
		assert.GreaterOrEqual(t, resp.Confidence, 0.6)
		assert.Equal(t, "Opening dashboard", resp.Message)
		assert.Equal(t, language.EnglishUS, resp.Language)
		assert.Equal(t, fallback.ModeFull, resp.Mode)
		assert.False(t, resp.Offline)
		assert.False(t, resp.NeedsConfirm)

		rows := f.storedCommands()
		require.Len(t, rows, 1)
		assert.Equal(t, "session-1", rows[0].SessionID)
		assert.Equal(t, "artisan-1", rows[0].UserID)
		assert.Equal(t, intent.NavigateDashboard, rows[0].Intent)
		assert.Equal(t, "/dashboard", rows[0].Route)
		assert.True(t, rows[0].Success)

		session := f.storedSession(t, "session-1")
		assert.Equal(t, 1, session.TotalCommands)
		assert.Equal(t, 1, session.SuccessfulCommands)
		assert.InDelta(t, 1.0, session.SuccessRate, 1e-9)

		events := f.recorder.SessionEvents("session-1")
		require.Len(t, events, 1)
		assert.Equal(t, analytics.EventNavigation, events[0].Type)
		assert.Equal(t, "/dashboard", events[0].Data["route"])
	})

	t.Run("Search Command Extracts Query", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "search for blue pottery"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, intent.SearchMarketplace, resp.Intent)
		assert.Equal(t, "/marketplace", resp.Route)
		assert.Equal(t, "blue pottery", resp.Parameters[intent.SlotQuery])
		assert.Equal(t, "Searching the marketplace for blue pottery", resp.Message)
	})

	t.Run("Generic Destination Navigation", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "take me to settings"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/settings", resp.Route)
		assert.Equal(t, "Opening settings", resp.Message)
	})

	t.Run("Unknown Command Gets Suggestions", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "purple elephant sings loudly"})
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, string(recovery.KindIntentNotRecognized), resp.ErrorKind)
		assert.NotEmpty(t, resp.Message)
		assert.Equal(t, []string{"go to dashboard", "go to marketplace", "go to profile"}, resp.Suggestions)

		rows := f.storedCommands()
		require.Len(t, rows, 1)
		assert.False(t, rows[0].Success)

		session := f.storedSession(t, "session-1")
		assert.Equal(t, 1, session.TotalCommands)
		assert.Zero(t, session.SuccessfulCommands)

		events := f.recorder.SessionEvents("session-1")
		require.Len(t, events, 1)
		assert.Equal(t, analytics.EventError, events[0].Type)
	})

	t.Run("Hindi Command In Hindi Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.HindiIN)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "डैशबोर्ड खोलो"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/dashboard", resp.Route)
		assert.Equal(t, "डैशबोर्ड खोल रहे हैं", resp.Message)
		assert.Equal(t, language.HindiIN, resp.Language)
	})

	t.Run("Explicit Language Override", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{
			Text:     "डैशबोर्ड खोलो",
			Language: language.HindiIN,
		})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/dashboard", resp.Route)
		assert.Equal(t, language.HindiIN, resp.Language)
		// A per-request override resolves in that language without moving
		// the session.
		assert.Equal(t, language.EnglishUS, f.storedSession(t, "session-1").Language)
	})

	t.Run("Auto Switch On Detected Language", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "डैशबोर्ड खोलो"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/dashboard", resp.Route)
		assert.Equal(t, language.HindiIN, resp.Language)
		assert.Equal(t, language.HindiIN, f.storedSession(t, "session-1").Language)

		require.Len(t, f.prefs.events, 1)
		event := f.prefs.events[0]
		assert.Equal(t, language.EnglishUS, event.FromLanguage)
		assert.Equal(t, language.HindiIN, event.ToLanguage)
		assert.Equal(t, entity.SwitchTriggerAutoDetection, event.Trigger)
		assert.InDelta(t, 0.85, event.Confidence, 0.01)
	})

	t.Run("Auto Switch Disabled By Preference", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.prefs.byUser["artisan-1"] = entity.LanguagePreference{
			UserID:          "artisan-1",
			PrimaryLanguage: language.EnglishUS,
			AutoSwitch:      false,
		}
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "डैशबोर्ड खोलो"})
		require.NoError(t, err)

		// Devanagari input scored against the English catalogue goes
		// nowhere, and the session stays English.
		assert.False(t, resp.Success)
		assert.Equal(t, language.EnglishUS, f.storedSession(t, "session-1").Language)
		assert.Empty(t, f.prefs.events)
	})

	t.Run("Spoken Language Switch Command", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "switch to hindi"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, intent.SwitchLanguage, resp.Intent)
		assert.Equal(t, language.HindiIN, resp.Language)
		assert.Equal(t, "भाषा बदलकर हिन्दी कर दी गई", resp.Message)
		assert.Empty(t, resp.Route)

		assert.Equal(t, language.HindiIN, f.storedSession(t, "session-1").Language)
		require.Len(t, f.prefs.events, 1)
		assert.Equal(t, entity.SwitchTriggerUserCommand, f.prefs.events[0].Trigger)
	})

	t.Run("Switch To Current Language Acknowledged", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "switch to english"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "You are already using English", resp.Message)
		assert.Empty(t, f.prefs.events)
	})

	t.Run("Action Command Without Route", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go back"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, intent.GoBack, resp.Intent)
		assert.Empty(t, resp.Route)
		assert.Equal(t, "Going back", resp.Message)
	})

	t.Run("Stop Listening Releases The Slot", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		require.NoError(t, f.svc.BeginListening("session-1"))

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "stop listening"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "Stopped listening", resp.Message)
		assert.NoError(t, f.svc.BeginListening("session-1"))
	})

	t.Run("Routeless Custom Intent Fails", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		require.NoError(t, f.resolver.Register(intent.Pattern{
			Intent:   "navigate_workshop",
			Language: language.EnglishUS,
			Template: "open my workshop",
		}))

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "open my workshop"})
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, string(recovery.KindRouteNotFound), resp.ErrorKind)
		assert.NotEmpty(t, resp.Suggestions)
	})

	t.Run("Caches Successful Command For Offline Use", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		before := f.cache.Len()

		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "open dashboard"})
		require.NoError(t, err)

		assert.Equal(t, before+1, f.cache.Len())
		match := f.cache.Match("open dashboard", language.EnglishUS)
		require.True(t, match.Matched)
		assert.Equal(t, "/dashboard", match.Command.Route)
	})

	t.Run("Offline Mode Serves From Cache", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		require.NoError(t, f.ctrl.SwitchToMode(fallback.ModeOfflineVoice))

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "show marketplace"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.True(t, resp.Offline)
		assert.Equal(t, intent.NavigateMarketplace, resp.Intent)
		assert.Equal(t, "/marketplace", resp.Route)
		assert.Equal(t, "Opening marketplace", resp.Message)
		assert.Equal(t, fallback.ModeOfflineVoice, resp.Mode)
		assert.InDelta(t, 1.0, resp.Confidence, 1e-9)
	})

	t.Run("Offline Miss Still Suggests", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		require.NoError(t, f.ctrl.SwitchToMode(fallback.ModeOfflineVoice))

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "purple elephant"})
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.True(t, resp.Offline)
		assert.Equal(t, string(recovery.KindIntentNotRecognized), resp.ErrorKind)
		assert.NotEmpty(t, resp.Suggestions)
	})

	t.Run("Rejects Ended Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedEndedSession("session-1", "artisan-1", language.EnglishUS)

		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		assert.ErrorIs(t, err, voice.ErrSessionNotActive)
	})

	t.Run("Rejects Foreign Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "someone-else", language.EnglishUS)

		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		assert.ErrorIs(t, err, voice.ErrUnauthorizedAccess)
	})
}

// confirmFixture prepares a session whose owner wants low-confidence
// commands confirmed, plus a deliberately low-weight pattern to trip the
// confirmation gate.
func confirmFixture(t *testing.T) *fixture {
	t.Helper()

	f := newFixture(fixtureOptions{})
	f.prefs.byUser["artisan-1"] = entity.LanguagePreference{
		UserID:              "artisan-1",
		PrimaryLanguage:     language.EnglishUS,
		RequireConfirmation: true,
	}
	f.seedSession("session-1", "artisan-1", language.EnglishUS)
	require.NoError(t, f.resolver.Register(intent.Pattern{
		Intent:   intent.NavigateSettings,
		Language: language.EnglishUS,
		Template: "tweak my settings",
		Weight:   0.65,
	}))
	return f
}

func primeConfirmation(t *testing.T, f *fixture) *voice.CommandResponse {
	t.Helper()

	resp, err := f.svc.ResolveText(context.Background(), "artisan-1", "session-1", voice.ResolveTextRequest{Text: "tweak my settings"})
	require.NoError(t, err)
	require.True(t, resp.NeedsConfirm)
	return resp
}

func TestConfirmationFlow(t *testing.T) {
	ctx := context.Background()

	t.Run("Low Confidence Asks First", func(t *testing.T) {
		f := confirmFixture(t)

		resp := primeConfirmation(t, f)
		assert.False(t, resp.Success)
		assert.Equal(t, "Do you want to open settings?", resp.Message)
		assert.Empty(t, resp.Route)
		assert.InDelta(t, 0.65, resp.Confidence, 1e-9)

		session := f.storedSession(t, "session-1")
		assert.True(t, session.PendingConfirmation)
		assert.Equal(t, intent.NavigateSettings, session.PendingIntent)
		assert.Equal(t, "/settings", session.PendingRoute)

		// A prompt is not a resolved command yet.
		assert.Empty(t, f.storedCommands())
		assert.Zero(t, session.TotalCommands)
	})

	t.Run("Yes Executes The Pending Command", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)

		resp, err := f.svc.ProcessConfirmation(ctx, "artisan-1", "session-1", voice.ConfirmationRequest{Text: "yes"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, intent.NavigateSettings, resp.Intent)
		assert.Equal(t, "/settings", resp.Route)
		assert.InDelta(t, 1.0, resp.Confidence, 1e-9)
		assert.Equal(t, "Opening settings", resp.Message)
		assert.False(t, resp.NeedsConfirm)

		session := f.storedSession(t, "session-1")
		assert.False(t, session.PendingConfirmation)
		assert.Equal(t, 1, session.TotalCommands)
		assert.Equal(t, 1, session.SuccessfulCommands)

		rows := f.storedCommands()
		require.Len(t, rows, 1)
		assert.Equal(t, "yes", rows[0].Transcript)
		assert.Equal(t, "/settings", rows[0].Route)
	})

	t.Run("No Cancels The Pending Command", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)

		resp, err := f.svc.ProcessConfirmation(ctx, "artisan-1", "session-1", voice.ConfirmationRequest{Text: "no"})
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, "cancelled", resp.ErrorKind)
		assert.Equal(t, "Okay, cancelled", resp.Message)
		assert.Empty(t, resp.Route)

		session := f.storedSession(t, "session-1")
		assert.False(t, session.PendingConfirmation)
		assert.Equal(t, 1, session.TotalCommands)
		assert.Zero(t, session.SuccessfulCommands)
	})

	t.Run("No Beats Yes In The Same Reply", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)

		resp, err := f.svc.ProcessConfirmation(ctx, "artisan-1", "session-1", voice.ConfirmationRequest{Text: "no okay"})
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, "cancelled", resp.ErrorKind)
	})

	t.Run("Unrecognized Reply Asks Again", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)

		resp, err := f.svc.ProcessConfirmation(ctx, "artisan-1", "session-1", voice.ConfirmationRequest{Text: "banana"})
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.True(t, resp.NeedsConfirm)
		assert.Equal(t, "Please say yes or no", resp.Message)

		assert.True(t, f.storedSession(t, "session-1").PendingConfirmation)
		assert.Empty(t, f.storedCommands())
	})

	t.Run("Next Command Can Answer The Prompt", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "yes"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/settings", resp.Route)
	})

	t.Run("Unrelated Command Replaces The Prompt", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/dashboard", resp.Route)
		assert.False(t, f.storedSession(t, "session-1").PendingConfirmation)
	})

	t.Run("Nothing To Confirm", func(t *testing.T) {
		f := confirmFixture(t)

		_, err := f.svc.ProcessConfirmation(ctx, "artisan-1", "session-1", voice.ConfirmationRequest{Text: "yes"})
		assert.ErrorIs(t, err, voice.ErrNothingToConfirm)
	})

	t.Run("Confident Command Skips Confirmation", func(t *testing.T) {
		f := confirmFixture(t)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.False(t, resp.NeedsConfirm)
		assert.Equal(t, "/dashboard", resp.Route)
	})
}

func TestProcessAudioCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("Transcribes And Resolves", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.recognizer.transcript = speech.Transcript{Text: "go to dashboard", Confidence: 0.92, Language: language.EnglishUS}

		file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF fake audio payload"))
		resp, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, "/dashboard", resp.Route)
		assert.Equal(t, "go to dashboard", resp.Transcript)

		events := f.recorder.SessionEvents("session-1")
		require.Len(t, events, 2)
		assert.Equal(t, analytics.EventRecognition, events[0].Type)
		assert.Equal(t, "audio", events[0].Data["source"])
		assert.Equal(t, analytics.EventNavigation, events[1].Type)
	})

	t.Run("Rejects Nil File", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		_, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", nil, "")
		assert.ErrorIs(t, err, voice.ErrInvalidAudioFile)
	})

	t.Run("Rejects Oversized File", func(t *testing.T) {
		f := newFixture(fixtureOptions{config: &VoiceConfig{MaxAudioBytes: 8}})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		file := audioUpload(t, "clip.wav", "audio/wav", bytes.Repeat([]byte("a"), 64))
		_, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		assert.ErrorIs(t, err, voice.ErrAudioFileTooLarge)
	})

	t.Run("Rejects Non Audio Upload", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		file := audioUpload(t, "notes.txt", "text/plain", []byte("hello"))
		_, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		assert.ErrorIs(t, err, voice.ErrInvalidAudioFile)
	})

	t.Run("Rejects In Keyboard Mode", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.ctrl.ActivateFallback(recovery.KindCaptureAccessDenied)

		file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF"))
		_, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		assert.ErrorIs(t, err, voice.ErrModeNotAvailable)
	})

	t.Run("Engine Not Ready Without Recognizer", func(t *testing.T) {
		f := newFixture(fixtureOptions{noRecognizer: true})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF"))
		_, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		assert.ErrorIs(t, err, voice.ErrEngineNotReady)
	})

	t.Run("Recognition Failure Degrades And Responds", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.recognizer.err = recovery.NewError(recovery.KindServiceUnavailable, errors.New("whisper: 503"))

		file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF"))
		resp, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, string(recovery.KindServiceUnavailable), resp.ErrorKind)
		assert.NotEmpty(t, resp.Message)
		assert.Equal(t, fallback.ModeOfflineVoice, resp.Mode)
		assert.Equal(t, fallback.ModeOfflineVoice, f.ctrl.CurrentMode().ID)

		rows := f.storedCommands()
		require.Len(t, rows, 1)
		assert.Equal(t, string(recovery.KindServiceUnavailable), rows[0].ErrorKind)
	})

	t.Run("Empty Transcript Counts As Failure", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.recognizer.transcript = speech.Transcript{}

		file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF"))
		resp, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "")
		require.NoError(t, err)

		assert.False(t, resp.Success)
		assert.Equal(t, string(recovery.KindSpeechNotRecognized), resp.ErrorKind)
		// Nothing about an inaudible clip warrants losing the online mode.
		assert.Equal(t, fallback.ModeFull, f.ctrl.CurrentMode().ID)
	})

	t.Run("Unsupported Language Falls Back To Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.HindiIN)
		f.recognizer.transcript = speech.Transcript{Text: "डैशबोर्ड खोलो", Confidence: 0.9}

		file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF"))
		resp, err := f.svc.ProcessAudioCommand(ctx, "artisan-1", "session-1", file, "xx-XX")
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Equal(t, language.HindiIN, resp.Language)
		assert.Equal(t, "/dashboard", resp.Route)
	})
}

// parkAudioCommand starts an audio command that blocks inside the recognizer
// until release is closed, returning once the command holds the session slot.
func parkAudioCommand(t *testing.T, f *fixture) (done chan error, release chan struct{}) {
	t.Helper()

	f.recognizer.entered = make(chan struct{})
	f.recognizer.release = make(chan struct{})

	file := audioUpload(t, "clip.wav", "audio/wav", []byte("RIFF"))
	done = make(chan error, 1)
	go func() {
		_, err := f.svc.ProcessAudioCommand(context.Background(), "artisan-1", "session-1", file, "")
		done <- err
	}()

	<-f.recognizer.entered
	return done, f.recognizer.release
}

func TestOverlappingCommands(t *testing.T) {
	ctx := context.Background()

	t.Run("Second Input Rejected While First Resolves", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.recognizer.transcript = speech.Transcript{Text: "go to dashboard", Confidence: 0.92, Language: language.EnglishUS}

		done, release := parkAudioCommand(t, f)

		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "show marketplace"})
		assert.ErrorIs(t, err, voice.ErrCommandInProgress)

		close(release)
		require.NoError(t, <-done)

		// The slot frees once the first command finishes.
		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)
		assert.True(t, resp.Success)

		// The rejected input left no trace; only the two resolved commands did.
		assert.Len(t, f.storedCommands(), 2)
	})

	t.Run("Confirmation Reply Also Waits", func(t *testing.T) {
		f := confirmFixture(t)
		primeConfirmation(t, f)
		f.recognizer.transcript = speech.Transcript{Text: "yes", Confidence: 0.9, Language: language.EnglishUS}

		done, release := parkAudioCommand(t, f)

		_, err := f.svc.ProcessConfirmation(ctx, "artisan-1", "session-1", voice.ConfirmationRequest{Text: "yes"})
		assert.ErrorIs(t, err, voice.ErrCommandInProgress)

		close(release)
		require.NoError(t, <-done)
	})

	t.Run("Other Sessions Keep Resolving", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.seedSession("session-2", "artisan-2", language.EnglishUS)
		f.recognizer.transcript = speech.Transcript{Text: "go to dashboard", Confidence: 0.92, Language: language.EnglishUS}

		done, release := parkAudioCommand(t, f)

		resp, err := f.svc.ResolveText(ctx, "artisan-2", "session-2", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)
		assert.True(t, resp.Success)

		close(release)
		require.NoError(t, <-done)
	})
}

func TestFeedbackAudio(t *testing.T) {
	ctx := context.Background()

	t.Run("Synthesizes Successful Feedback", func(t *testing.T) {
		f := newFixture(fixtureOptions{config: &VoiceConfig{EnableTTS: true}})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		assert.Equal(t, "Opening dashboard", resp.AudioFeedback)
		assert.Equal(t, "https://cdn.test/voice/1-feedback.mp3", resp.AudioURL)

		rows := f.storedCommands()
		require.Len(t, rows, 1)
		assert.Equal(t, resp.AudioURL, rows[0].AudioURL)
	})

	t.Run("Synthesis Failure Is Silent", func(t *testing.T) {
		f := newFixture(fixtureOptions{config: &VoiceConfig{EnableTTS: true}})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		f.synthesizer.err = errors.New("tts backend down")

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Empty(t, resp.AudioURL)
	})

	t.Run("No Audio Outside Full Mode", func(t *testing.T) {
		f := newFixture(fixtureOptions{config: &VoiceConfig{EnableTTS: true}})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		require.NoError(t, f.ctrl.SwitchToMode(fallback.ModeOfflineVoice))

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "show marketplace"})
		require.NoError(t, err)

		assert.True(t, resp.Success)
		assert.Empty(t, resp.AudioURL)
	})

	t.Run("Disabled By Default", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)
		assert.Empty(t, resp.AudioURL)
	})
}

func TestGetSuggestions(t *testing.T) {
	ctx := context.Background()

	t.Run("Defaults To English", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		resp, err := f.svc.GetSuggestions(ctx, "artisan-1")
		require.NoError(t, err)

		assert.Equal(t, language.EnglishUS, resp.Language)
		assert.Equal(t, []string{
			"go to dashboard",
			"go to marketplace",
			"go to profile",
			"go to schemes",
			"go to orders",
		}, resp.Suggestions)
	})

	t.Run("Uses Preference Language", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.prefs.byUser["artisan-1"] = entity.LanguagePreference{
			UserID:          "artisan-1",
			PrimaryLanguage: language.HindiIN,
		}

		resp, err := f.svc.GetSuggestions(ctx, "artisan-1")
		require.NoError(t, err)

		assert.Equal(t, language.HindiIN, resp.Language)
		require.Len(t, resp.Suggestions, 5)
		assert.Equal(t, "डैशबोर्ड खोलो", resp.Suggestions[0])
		for _, suggestion := range resp.Suggestions {
			assert.NotContains(t, suggestion, "{")
		}
	})

	t.Run("Respects Configured Limit", func(t *testing.T) {
		f := newFixture(fixtureOptions{config: &VoiceConfig{SuggestionLimit: 2}})

		resp, err := f.svc.GetSuggestions(ctx, "artisan-1")
		require.NoError(t, err)
		assert.Len(t, resp.Suggestions, 2)
	})
}

func TestGetCommandHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fixtureOptions{})

	for i := 1; i <= 3; i++ {
		require.NoError(t, f.commands.CreateCommand(ctx, entity.VoiceCommand{
			ID:         fmt.Sprintf("cmd-%d", i),
			SessionID:  "session-1",
			UserID:     "artisan-1",
			Transcript: fmt.Sprintf("command %d", i),
			Success:    true,
		}))
	}
	require.NoError(t, f.commands.CreateCommand(ctx, entity.VoiceCommand{
		ID:     "cmd-other",
		UserID: "someone-else",
	}))

	page1, total, err := f.svc.GetCommandHistory(ctx, "artisan-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "cmd-3", page1[0].ID)
	assert.Equal(t, "cmd-2", page1[1].ID)

	page2, total, err := f.svc.GetCommandHistory(ctx, "artisan-1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "cmd-1", page2[0].ID)
}
