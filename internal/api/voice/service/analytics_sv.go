package voiceService

import (
	"context"
	"time"

	"KalaVaani/internal/api/voice"
	"KalaVaani/pkg/analytics"
)

func (s *voiceService) GetMetrics(since time.Time) voice.MetricsResponse {
	return voice.MetricsResponse{
		Metrics:  s.recorder.Metrics(since),
		Insights: s.recorder.Insights(),
	}
}

func (s *voiceService) GetSessionStats(ctx context.Context, userID, sessionID string) (analytics.SessionStats, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return analytics.SessionStats{}, err
	}

	if _, err := s.loadOwnedSession(ctx, repo, userID, sessionID); err != nil {
		return analytics.SessionStats{}, err
	}
	return s.recorder.SessionStats(sessionID), nil
}

func (s *voiceService) PruneAnalytics(olderThan time.Time) int {
	return s.recorder.Prune(olderThan)
}
