package voiceService

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"KalaVaani/internal/api/voice"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
)

func TestGetMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Aggregates The Event Log", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		for _, text := range []string{"go to dashboard", "show marketplace", "purple elephant dances"} {
			_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: text})
			require.NoError(t, err)
		}
		f.svc.ReportCapability(ctx, voice.ReportCapabilityRequest{
			Name:      capability.Network,
			Available: false,
			Reason:    "offline",
		})

		resp := f.svc.GetMetrics(time.Time{})

		assert.Equal(t, 4, resp.Metrics.TotalEvents)
		assert.Equal(t, 1, resp.Metrics.TotalSessions)
		assert.InDelta(t, 1.0, resp.Metrics.SuccessRate, 0.001)
		assert.Equal(t, map[string]int{"network-error": 1}, resp.Metrics.Errors)
		assert.False(t, resp.Metrics.GeneratedAt.IsZero())

		require.Len(t, resp.Metrics.TopCommands, 2)
		assert.Equal(t, intent.NavigateDashboard, resp.Metrics.TopCommands[0].Command)
		assert.Equal(t, intent.NavigateMarketplace, resp.Metrics.TopCommands[1].Command)
		assert.Equal(t, 1, resp.Metrics.TopCommands[0].Count)

		require.Len(t, resp.Metrics.Languages, 1)
		assert.Equal(t, language.EnglishUS, resp.Metrics.Languages[0].Language)
		assert.Equal(t, 1, resp.Metrics.Languages[0].Sessions)
		assert.InDelta(t, 100.0, resp.Metrics.Languages[0].Percent, 0.001)

		assert.Equal(t, []string{
			"en-US accounts for 100% of sessions. Seed more offline commands for that language.",
			"Connectivity failures dominate the error log. Offline voice coverage matters for these users.",
		}, resp.Insights)
	})

	t.Run("Since Filter Excludes Old Events", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.recorder.Track(analytics.Event{
			Type:      analytics.EventNavigation,
			Timestamp: time.Now().Add(-48 * time.Hour),
			SessionID: "old-session",
			Language:  language.HindiIN,
			Success:   true,
			Data:      map[string]string{"intent": intent.NavigateHome},
		})
		f.recorder.Track(analytics.Event{
			Type:      analytics.EventNavigation,
			SessionID: "fresh-session",
			Language:  language.EnglishUS,
			Success:   true,
			Data:      map[string]string{"intent": intent.NavigateDashboard},
		})

		resp := f.svc.GetMetrics(time.Now().Add(-time.Hour))

		assert.Equal(t, 1, resp.Metrics.TotalEvents)
		assert.Equal(t, 1, resp.Metrics.TotalSessions)
		require.Len(t, resp.Metrics.TopCommands, 1)
		assert.Equal(t, intent.NavigateDashboard, resp.Metrics.TopCommands[0].Command)
	})

	t.Run("Quiet Log Reports No Activity", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		resp := f.svc.GetMetrics(time.Time{})

		assert.Equal(t, 0, resp.Metrics.TotalEvents)
		assert.Equal(t, []string{"No voice activity recorded yet."}, resp.Insights)
	})
}

func TestGetSessionStats(t *testing.T) {
	ctx := context.Background()

	t.Run("Reflects Session Outcomes", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)
		_, err = f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "purple elephant dances"})
		require.NoError(t, err)

		stats, err := f.svc.GetSessionStats(ctx, "artisan-1", "session-1")
		require.NoError(t, err)

		assert.Equal(t, 2, stats.EventCount)
		assert.Equal(t, 1, stats.SuccessCount)
		assert.InDelta(t, 0.5, stats.SuccessRate, 0.001)
		assert.InDelta(t, 1.0, stats.AverageConfidence, 0.001)
	})

	t.Run("Session With No Events Yet", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		stats, err := f.svc.GetSessionStats(ctx, "artisan-1", "session-1")
		require.NoError(t, err)
		assert.Zero(t, stats)
	})

	t.Run("Rejects Foreign Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		_, err := f.svc.GetSessionStats(ctx, "artisan-2", "session-1")
		require.ErrorIs(t, err, voice.ErrUnauthorizedAccess)
	})

	t.Run("Rejects Unknown Session", func(t *testing.T) {
		f := newFixture(fixtureOptions{})

		_, err := f.svc.GetSessionStats(ctx, "artisan-1", "missing")
		require.ErrorIs(t, err, voice.ErrSessionNotFound)
	})
}

func TestPruneAnalytics(t *testing.T) {
	ctx := context.Background()

	t.Run("Drops Old Events And Forgets Their Stats", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		old := time.Now().Add(-2 * time.Hour)
		for i := 0; i < 2; i++ {
			f.recorder.Track(analytics.Event{
				Type:       analytics.EventNavigation,
				Timestamp:  old,
				SessionID:  "old-session",
				Language:   language.EnglishUS,
				Success:    true,
				Confidence: 0.9,
			})
		}
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		dropped := f.svc.PruneAnalytics(time.Now().Add(-time.Hour))

		assert.Equal(t, 2, dropped)
		assert.Equal(t, 1, f.recorder.Len())
		assert.Zero(t, f.recorder.SessionStats("old-session"))

		stats, err := f.svc.GetSessionStats(ctx, "artisan-1", "session-1")
		require.NoError(t, err)
		assert.Equal(t, 1, stats.EventCount)
	})

	t.Run("Nothing To Prune", func(t *testing.T) {
		f := newFixture(fixtureOptions{})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)
		_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
		require.NoError(t, err)

		assert.Equal(t, 0, f.svc.PruneAnalytics(time.Now().Add(-time.Hour)))
		assert.Equal(t, 1, f.recorder.Len())
	})
}

func TestEventLogBound(t *testing.T) {
	ctx := context.Background()

	t.Run("Ring Evicts The Oldest Events", func(t *testing.T) {
		f := newFixture(fixtureOptions{eventBound: 10})
		f.seedSession("session-1", "artisan-1", language.EnglishUS)

		for i := 0; i < 11; i++ {
			_, err := f.svc.ResolveText(ctx, "artisan-1", "session-1", voice.ResolveTextRequest{Text: "go to dashboard"})
			require.NoError(t, err)
		}

		assert.Equal(t, 10, f.recorder.Len())

		stats, err := f.svc.GetSessionStats(ctx, "artisan-1", "session-1")
		require.NoError(t, err)
		assert.Equal(t, 11, stats.EventCount)
		assert.Equal(t, 11, stats.SuccessCount)
		assert.InDelta(t, 1.0, stats.SuccessRate, 0.001)
	})
}
