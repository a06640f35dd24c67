package voiceService

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KalaVaani/internal/api/voice"
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/language"
)

func TestStartSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Uses Preferred Language", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.prefs.byUser["artisan-1"] = entity.LanguagePreference{
			UserID:          "artisan-1",
			PrimaryLanguage: language.HindiIN,
			AutoSwitch:      true,
		}

		resp, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{})
		require.NoError(t, err)

		assert.NotEmpty(t, resp.ID)
		assert.Equal(t, "artisan-1", resp.UserID)
		assert.Equal(t, language.HindiIN, resp.Language)
		assert.True(t, resp.Active)

		stored := f.storedSession(t, resp.ID)
		assert.Equal(t, language.HindiIN, stored.Language)

		events := f.recorder.SessionEvents(resp.ID)
		require.Len(t, events, 1)
		assert.Equal(t, analytics.EventActivation, events[0].Type)
		assert.Equal(t, language.HindiIN, events[0].Language)
	})

	t.Run("Explicit Language Wins Over Preference", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.prefs.byUser["artisan-1"] = entity.LanguagePreference{
			UserID:          "artisan-1",
			PrimaryLanguage: language.HindiIN,
		}

		resp, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{Language: language.TamilIN})
		require.NoError(t, err)
		assert.Equal(t, language.TamilIN, resp.Language)
	})

	t.Run("Defaults To English Without Preference", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		resp, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{})
		require.NoError(t, err)
		assert.Equal(t, language.EnglishUS, resp.Language)
	})

	t.Run("Rejects Unsupported Language", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		_, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{Language: "fr-FR"})
		assert.ErrorIs(t, err, voice.ErrLanguageNotSupported)
	})

	t.Run("Rejects Second Active Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		_, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{})
		assert.ErrorIs(t, err, voice.ErrSessionAlreadyActive)
	})

	t.Run("Allowed After Previous Session Ended", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedEndedSession("session-1", "artisan-1", language.EnglishUS)

		resp, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{})
		require.NoError(t, err)
		assert.True(t, resp.Active)
	})

	t.Run("Propagates Commit Failure", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.repo.commitErr = errors.New("tx closed")

		_, err := f.svc.StartSession(ctx, "artisan-1", voice.StartSessionRequest{})
		require.Error(t, err)
		assert.ErrorContains(t, err, "tx closed")
	})
}

func TestEndSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Reports Final Success Rate", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		session := f.seedSession("session-1", "artisan-1", language.EnglishUS)
		session.TotalCommands = 4
		session.SuccessfulCommands = 3
		f.sessions.put(session)

		resp, err := f.svc.EndSession(ctx, "artisan-1", "session-1")
		require.NoError(t, err)

		assert.False(t, resp.Active)
		assert.InDelta(t, 0.75, resp.SuccessRate, 1e-9)
		require.NotNil(t, resp.EndedAt)

		stored := f.storedSession(t, "session-1")
		assert.False(t, stored.Active())

		events := f.recorder.SessionEvents("session-1")
		require.NotEmpty(t, events)
		last := events[len(events)-1]
		assert.Equal(t, analytics.EventDeactivation, last.Type)
		assert.Equal(t, "4", last.Data["total_commands"])
	})

	t.Run("Clears Pending Confirmation", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		session := f.seedSession("session-1", "artisan-1", language.EnglishUS)
		session.PendingConfirmation = true
		session.PendingIntent = "navigate_settings"
		session.PendingRoute = "/settings"
		f.sessions.put(session)

		_, err := f.svc.EndSession(ctx, "artisan-1", "session-1")
		require.NoError(t, err)

		stored := f.storedSession(t, "session-1")
		assert.False(t, stored.PendingConfirmation)
		assert.Empty(t, stored.PendingIntent)
		assert.Empty(t, stored.PendingRoute)
	})

	t.Run("Releases Listening Slot", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		require.NoError(t, f.svc.BeginListening("session-1"))

		_, err := f.svc.EndSession(ctx, "artisan-1", "session-1")
		require.NoError(t, err)

		assert.NoError(t, f.svc.BeginListening("session-1"))
	})

	t.Run("Rejects Foreign Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "someone-else", language.EnglishUS)

		_, err := f.svc.EndSession(ctx, "artisan-1", "session-1")
		assert.ErrorIs(t, err, voice.ErrUnauthorizedAccess)
	})

	t.Run("Rejects Already Ended Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedEndedSession("session-1", "artisan-1", language.EnglishUS)

		_, err := f.svc.EndSession(ctx, "artisan-1", "session-1")
		assert.ErrorIs(t, err, voice.ErrSessionNotActive)
	})

	t.Run("Unknown Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		_, err := f.svc.EndSession(ctx, "artisan-1", "missing")
		assert.ErrorIs(t, err, voice.ErrSessionNotFound)
	})
}

func TestGetSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Returns Own Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.BengaliIN)

		resp, err := f.svc.GetSession(ctx, "artisan-1", "session-1")
		require.NoError(t, err)
		assert.Equal(t, "session-1", resp.ID)
		assert.Equal(t, language.BengaliIN, resp.Language)
	})

	t.Run("Denies Foreign Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "someone-else", language.EnglishUS)

		_, err := f.svc.GetSession(ctx, "artisan-1", "session-1")
		assert.ErrorIs(t, err, voice.ErrUnauthorizedAccess)
	})
}

func TestGetActiveSession(t *testing.T) {
	ctx := context.Background()

	f := newFixture(fixtureOptions{})
	f.seedEndedSession("session-old", "artisan-1", language.EnglishUS)

	_, err := f.svc.GetActiveSession(ctx, "artisan-1")
	assert.ErrorIs(t, err, voice.ErrSessionNotFound)

	f.seedSession("session-new", "artisan-1", language.EnglishUS)
	resp, err := f.svc.GetActiveSession(ctx, "artisan-1")
	require.NoError(t, err)
	assert.Equal(t, "session-new", resp.ID)
	assert.True(t, resp.Active)
}

func TestGetSessionHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fixtureOptions{})

	base := time.Now()
	for i, id := range []string{"session-a", "session-b", "session-c"} {
		endedAt := base.Add(time.Duration(-i)*time.Hour + 30*time.Minute)
		f.sessions.put(entity.VoiceSession{
			ID:           id,
			UserID:       "artisan-1",
			Language:     language.EnglishUS,
			StartedAt:    base.Add(time.Duration(-i) * time.Hour),
			LastActivity: endedAt,
			EndedAt:      &endedAt,
		})
	}
	f.sessions.put(entity.VoiceSession{
		ID:        "session-other",
		UserID:    "someone-else",
		Language:  language.EnglishUS,
		StartedAt: base,
	})

	page1, total, err := f.svc.GetSessionHistory(ctx, "artisan-1", 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page1, 2)
	assert.Equal(t, "session-a", page1[0].ID)
	assert.Equal(t, "session-b", page1[1].ID)

	page2, total, err := f.svc.GetSessionHistory(ctx, "artisan-1", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, page2, 1)
	assert.Equal(t, "session-c", page2[0].ID)
}

func TestPageBounds(t *testing.T) {
	f := newFixture(fixtureOptions{})
	svc := f.svc.(*voiceService)

	limit, offset := svc.pageBounds(0, 0)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = svc.pageBounds(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, offset = svc.pageBounds(1, 200)
	assert.Equal(t, 20, limit)
	assert.Equal(t, 0, offset)

	limit, offset = svc.pageBounds(-2, 50)
	assert.Equal(t, 50, limit)
	assert.Equal(t, 0, offset)
}

func TestCleanupStaleSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(fixtureOptions{config: &VoiceConfig{SessionTimeout: 30 * time.Minute}})

	now := time.Now()
	f.sessions.put(entity.VoiceSession{
		ID:           "session-stale",
		UserID:       "artisan-1",
		Language:     language.HindiIN,
		StartedAt:    now.Add(-3 * time.Hour),
		LastActivity: now.Add(-2 * time.Hour),
	})
	f.sessions.put(entity.VoiceSession{
		ID:           "session-fresh",
		UserID:       "artisan-2",
		Language:     language.EnglishUS,
		StartedAt:    now,
		LastActivity: now,
	})
	require.NoError(t, f.svc.BeginListening("session-stale"))

	ended, err := f.svc.CleanupStaleSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, ended)

	assert.False(t, f.storedSession(t, "session-stale").Active())
	assert.True(t, f.storedSession(t, "session-fresh").Active())

	events := f.recorder.SessionEvents("session-stale")
	require.Len(t, events, 1)
	assert.Equal(t, analytics.EventDeactivation, events[0].Type)
	assert.Equal(t, "stale", events[0].Data["reason"])

	// The stale session's listening slot is released with it.
	assert.NoError(t, f.svc.BeginListening("session-stale"))

	repeat, err := f.svc.CleanupStaleSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, repeat)
}
