package voiceService

import (
	"context"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/recovery"
	"KalaVaani/pkg/speech"
)

// BeginListening reserves the continuous listening slot for a session. At
// most one listening connection may be open per session; a second attempt
// is rejected instead of silently stealing the slot.
func (s *voiceService) BeginListening(sessionID string) error {
	if s.fallback.CurrentMode().ID != fallback.ModeFull {
		return voice.ErrModeNotAvailable
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, open := s.listeners[sessionID]; open {
		return voice.ErrListeningInProgress
	}
	s.listeners[sessionID] = struct{}{}

	s.log.WithFields(logrus.Fields{
		"session_id": sessionID,
	}).Info("Listening session opened")
	return nil
}

// EndListening releases the listening slot. Safe to call any number of
// times, from the stop command, the session end, and the connection close.
func (s *voiceService) EndListening(sessionID string) {
	s.mu.Lock()
	_, open := s.listeners[sessionID]
	delete(s.listeners, sessionID)
	s.mu.Unlock()

	if open {
		s.log.WithFields(logrus.Fields{
			"session_id": sessionID,
		}).Info("Listening session closed")
	}
}

// StreamFrame forwards one audio frame to the streaming recognizer and
// returns its partial. The caller resolves the transcript once a partial
// comes back final.
func (s *voiceService) StreamFrame(ctx context.Context, sessionID, lang string, frame []byte) (speech.Partial, error) {
	s.mu.Lock()
	_, open := s.listeners[sessionID]
	s.mu.Unlock()
	if !open {
		return speech.Partial{}, voice.ErrSessionNotActive
	}

	if s.stream == nil {
		return speech.Partial{}, recovery.NewError(recovery.KindServiceUnavailable, nil)
	}
	if !s.stream.IsConnected() {
		if err := s.stream.Reconnect(); err != nil {
			s.fallback.ActivateFallback(recovery.KindNetworkError)
			return speech.Partial{}, recovery.NewError(recovery.KindNetworkError, err)
		}
	}

	partial, err := s.stream.ProcessAudioFrame(frame, lang)
	if err != nil {
		s.fallback.ActivateFallback(recovery.KindNetworkError)
		return speech.Partial{}, recovery.NewError(recovery.KindNetworkError, err)
	}
	return *partial, nil
}
