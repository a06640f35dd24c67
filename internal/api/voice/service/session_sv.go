package voiceService

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	voiceRepository "KalaVaani/internal/api/voice/repository"
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/language"
)

func (s *voiceService) StartSession(ctx context.Context, userID string, req voice.StartSessionRequest) (voice.SessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return voice.SessionResponse{}, err
	}
	defer repo.Rollback()

	lang := req.Language
	if lang == "" {
		if pref, prefErr := repo.Preferences.GetPreferenceByUserID(ctx, userID); prefErr == nil {
			lang = pref.PrimaryLanguage
		} else {
			lang = language.EnglishUS
		}
	}
	if !language.IsSupported(lang) {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"language":   lang,
		}).Warn("Session start requested with unsupported language")
		return voice.SessionResponse{}, voice.ErrLanguageNotSupported
	}

	_, err = repo.Sessions.GetActiveSessionByUserID(ctx, userID)
	if err == nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"user_id":    userID,
		}).Warn("Session start rejected, user already has an active session")
		return voice.SessionResponse{}, voice.ErrSessionAlreadyActive
	}
	if !errors.Is(err, voice.ErrSessionNotFound) {
		return voice.SessionResponse{}, err
	}

	now := time.Now()
	sessionID, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate session ID")
		return voice.SessionResponse{}, err
	}

	session := entity.VoiceSession{
		ID:           sessionID,
		UserID:       userID,
		Language:     lang,
		StartedAt:    now,
		LastActivity: now,
	}

	if err := repo.Sessions.CreateSession(ctx, session); err != nil {
		return voice.SessionResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit session creation")
		return voice.SessionResponse{}, err
	}

	s.recorder.Track(analytics.Event{
		Type:      analytics.EventActivation,
		SessionID: sessionID,
		Language:  lang,
		Success:   true,
	})

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": sessionID,
		"language":   lang,
	}).Info("Voice session started")

	return voice.NewSessionResponse(session), nil
}

func (s *voiceService) EndSession(ctx context.Context, userID, sessionID string) (voice.SessionResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return voice.SessionResponse{}, err
	}
	defer repo.Rollback()

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return voice.SessionResponse{}, err
	}
	if !session.Active() {
		return voice.SessionResponse{}, voice.ErrSessionNotActive
	}

	now := time.Now()
	session.EndedAt = &now
	session.LastActivity = now
	session.PendingConfirmation = false
	session.PendingIntent = ""
	session.PendingRoute = ""
	if session.TotalCommands > 0 {
		session.SuccessRate = float64(session.SuccessfulCommands) / float64(session.TotalCommands)
	}

	if err := repo.Sessions.UpdateSession(ctx, session); err != nil {
		return voice.SessionResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit session end")
		return voice.SessionResponse{}, err
	}

	s.EndListening(sessionID)

	s.recorder.Track(analytics.Event{
		Type:      analytics.EventDeactivation,
		SessionID: sessionID,
		Language:  session.Language,
		Success:   true,
		Data: map[string]string{
			"total_commands": strconv.Itoa(session.TotalCommands),
			"duration_ms":    strconv.FormatInt(now.Sub(session.StartedAt).Milliseconds(), 10),
		},
	})

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"session_id":   sessionID,
		"success_rate": session.SuccessRate,
	}).Info("Voice session ended")

	return voice.NewSessionResponse(session), nil
}

func (s *voiceService) GetSession(ctx context.Context, userID, sessionID string) (voice.SessionResponse, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return voice.SessionResponse{}, err
	}

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return voice.SessionResponse{}, err
	}
	return voice.NewSessionResponse(session), nil
}

func (s *voiceService) GetActiveSession(ctx context.Context, userID string) (voice.SessionResponse, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return voice.SessionResponse{}, err
	}

	session, err := repo.Sessions.GetActiveSessionByUserID(ctx, userID)
	if err != nil {
		return voice.SessionResponse{}, err
	}
	return voice.NewSessionResponse(session), nil
}

func (s *voiceService) GetSessionHistory(ctx context.Context, userID string, page, limit int) ([]voice.SessionResponse, int, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := s.pageBounds(page, limit)
	sessions, total, err := repo.Sessions.GetSessionsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]voice.SessionResponse, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, voice.NewSessionResponse(session))
	}
	return out, total, nil
}

// CleanupStaleSessions force-ends sessions idle past the configured timeout.
// Run from the scheduler; a stale session that was never ended would
// otherwise block its user from starting a new one forever.
func (s *voiceService) CleanupStaleSessions(ctx context.Context) (int, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return 0, err
	}
	defer repo.Rollback()

	cutoff := time.Now().Add(-s.config.SessionTimeout)
	ended, err := repo.Sessions.EndStaleSessions(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit stale session cleanup")
		return 0, err
	}

	for _, session := range ended {
		s.EndListening(session.ID)
		s.recorder.Track(analytics.Event{
			Type:      analytics.EventDeactivation,
			SessionID: session.ID,
			Language:  session.Language,
			Success:   true,
			Data:      map[string]string{"reason": "stale"},
		})
	}

	return len(ended), nil
}

// loadOwnedSession fetches a session and verifies it belongs to userID.
// Callers must not leak whether a foreign session exists, hence the 403
// instead of a 404 on ownership mismatch.
func (s *voiceService) loadOwnedSession(ctx context.Context, repo voiceRepository.Client, userID, sessionID string) (entity.VoiceSession, error) {
	session, err := repo.Sessions.GetSessionByID(ctx, sessionID)
	if err != nil {
		return entity.VoiceSession{}, err
	}
	if session.UserID != userID {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"session_id": sessionID,
		}).Warn("Session access denied for non-owner")
		return entity.VoiceSession{}, voice.ErrUnauthorizedAccess
	}
	return session, nil
}

func (s *voiceService) pageBounds(page, limit int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = s.config.HistoryPageSize
	}
	if page < 1 {
		page = 1
	}
	return limit, (page - 1) * limit
}
