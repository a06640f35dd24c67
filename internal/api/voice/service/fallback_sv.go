package voiceService

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/recovery"
)

func (s *voiceService) GetFallbackStatus() voice.FallbackStatusResponse {
	return voice.FallbackStatusResponse{
		Mode:         s.fallback.CurrentMode(),
		Level:        s.fallback.CurrentLevel(),
		Capabilities: s.assessor.Assess(),
	}
}

func (s *voiceService) SwitchMode(ctx context.Context, req voice.SwitchModeRequest) (voice.FallbackStatusResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if err := s.fallback.SwitchToMode(req.Mode); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"mode":       req.Mode,
			"error":      err.Error(),
		}).Warn("Mode switch rejected")

		switch {
		case errors.Is(err, fallback.ErrUnknownMode):
			return voice.FallbackStatusResponse{}, voice.ErrUnknownFallbackMode
		case errors.Is(err, fallback.ErrModeDisabled), errors.Is(err, fallback.ErrCapabilityUnmet):
			return voice.FallbackStatusResponse{}, voice.ErrModeNotAvailable
		default:
			return voice.FallbackStatusResponse{}, err
		}
	}

	return s.GetFallbackStatus(), nil
}

// ReportCapability records a client-observed capability change. Losing a
// capability degrades the engine through the error-to-mode table; regaining
// one triggers an upgrade attempt back toward full mode.
func (s *voiceService) ReportCapability(ctx context.Context, req voice.ReportCapabilityRequest) voice.FallbackStatusResponse {
	requestID := contextPkg.GetRequestID(ctx)

	s.reported.Report(req.Name, req.Available, req.Reason)

	if req.Available {
		if s.fallback.ResetToFullMode() {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"capability": req.Name,
			}).Info("Capability restored, back in full mode")
		}
		return s.GetFallbackStatus()
	}

	kind := capabilityLossKind(req.Name, req.Reason)
	mode := s.fallback.ActivateFallback(kind)

	s.recorder.Track(analytics.Event{
		Type: analytics.EventError,
		Data: map[string]string{
			"error_kind": string(kind),
			"capability": req.Name,
			"mode":       mode.ID,
		},
	})

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"capability": req.Name,
		"reason":     req.Reason,
		"mode":       mode.ID,
		"level":      fallback.LevelFor(mode.ID).Level,
	}).Warn("Capability lost, engine degraded")

	return s.GetFallbackStatus()
}

func (s *voiceService) ResetToFullMode(ctx context.Context) voice.FallbackStatusResponse {
	if s.fallback.ResetToFullMode() {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
		}).Info("Engine reset to full mode")
	}
	return s.GetFallbackStatus()
}

// TryRestoreFullMode is the scheduler variant of ResetToFullMode.
func (s *voiceService) TryRestoreFullMode() bool {
	return s.fallback.ResetToFullMode()
}

// capabilityLossKind maps a lost capability to the error kind driving the
// degradation walk. Anything unknown takes the default limited-voice path.
func capabilityLossKind(name, reason string) recovery.Kind {
	switch name {
	case capability.AudioCapture:
		if strings.Contains(strings.ToLower(reason), "not found") {
			return recovery.KindCaptureNotFound
		}
		return recovery.KindCaptureAccessDenied
	case capability.Network:
		return recovery.KindNetworkError
	case capability.SpeechRecognition:
		return recovery.KindServiceUnavailable
	case capability.Keyboard:
		return recovery.KindBrowserNotSupported
	default:
		return ""
	}
}
