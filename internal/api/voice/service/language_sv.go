package voiceService

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	voiceRepository "KalaVaani/internal/api/voice/repository"
	"KalaVaani/internal/entity"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/language"
)

func (s *voiceService) DetectLanguage(req voice.DetectLanguageRequest) voice.DetectLanguageResponse {
	result := s.detector.Detect(req.Text)
	return voice.DetectLanguageResponse{
		Language:   result.Language,
		Confidence: result.Confidence,
	}
}

func (s *voiceService) SwitchLanguage(ctx context.Context, userID, sessionID string, req voice.SwitchLanguageRequest) (voice.SwitchLanguageResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !language.IsSupported(req.Language) {
		return voice.SwitchLanguageResponse{}, voice.ErrLanguageNotSupported
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return voice.SwitchLanguageResponse{}, err
	}
	defer repo.Rollback()

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return voice.SwitchLanguageResponse{}, err
	}
	if !session.Active() {
		return voice.SwitchLanguageResponse{}, voice.ErrSessionNotActive
	}

	previous := session.Language
	if req.Language == previous {
		return voice.SwitchLanguageResponse{
			Success:  false,
			Message:  alreadyUsingMessage(previous),
			Previous: previous,
			Current:  previous,
		}, nil
	}

	if err := s.recordSwitch(ctx, repo, &session, req.Language, entity.SwitchTriggerManual, 1); err != nil {
		return voice.SwitchLanguageResponse{}, err
	}

	// A deliberate switch also becomes the user's new primary language so
	// the next session starts in it.
	pref := s.preferenceOrDefault(ctx, repo, userID)
	pref.PrimaryLanguage = req.Language
	pref.UpdatedAt = time.Now()
	if err := repo.Preferences.UpsertPreference(ctx, pref); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to persist primary language")
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit language switch")
		return voice.SwitchLanguageResponse{}, err
	}

	return voice.SwitchLanguageResponse{
		Success:  true,
		Message:  switchMessage(req.Language),
		Previous: previous,
		Current:  req.Language,
		Trigger:  string(entity.SwitchTriggerManual),
	}, nil
}

// AutoSwitch detects the language of a text sample and switches the session
// when detection clears the threshold. Success reports whether a switch
// actually happened, not whether the request was well-formed.
func (s *voiceService) AutoSwitch(ctx context.Context, userID, sessionID string, req voice.AutoSwitchRequest) (voice.SwitchLanguageResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	threshold := req.Threshold
	if threshold <= 0 {
		threshold = s.config.AutoSwitchThreshold
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return voice.SwitchLanguageResponse{}, err
	}
	defer repo.Rollback()

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return voice.SwitchLanguageResponse{}, err
	}
	if !session.Active() {
		return voice.SwitchLanguageResponse{}, voice.ErrSessionNotActive
	}

	current := session.Language
	out := voice.SwitchLanguageResponse{Previous: current, Current: current}

	pref := s.preferenceOrDefault(ctx, repo, userID)
	if !pref.AutoSwitch {
		out.Message = "automatic language switching is disabled"
		return out, nil
	}

	detected := s.detector.Detect(req.Text)
	if detected.Confidence < threshold {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"detected":   detected.Language,
			"confidence": detected.Confidence,
			"threshold":  threshold,
		}).Debug("Detection below auto switch threshold")
		out.Message = "detection confidence below threshold"
		return out, nil
	}
	if !language.IsSupported(detected.Language) {
		out.Message = "detected language is not supported"
		return out, nil
	}
	if detected.Language == current {
		out.Message = alreadyUsingMessage(current)
		return out, nil
	}

	if err := s.recordSwitch(ctx, repo, &session, detected.Language, entity.SwitchTriggerAutoDetection, detected.Confidence); err != nil {
		return voice.SwitchLanguageResponse{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit auto switch")
		return voice.SwitchLanguageResponse{}, err
	}

	out.Success = true
	out.Current = detected.Language
	out.Message = switchMessage(detected.Language)
	out.Trigger = string(entity.SwitchTriggerAutoDetection)
	return out, nil
}

func (s *voiceService) GetPreference(ctx context.Context, userID string) (entity.LanguagePreference, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return entity.LanguagePreference{}, err
	}
	return s.preferenceOrDefault(ctx, repo, userID), nil
}

func (s *voiceService) UpdatePreference(ctx context.Context, userID string, req voice.PreferenceRequest) (entity.LanguagePreference, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !language.IsSupported(req.PrimaryLanguage) {
		return entity.LanguagePreference{}, voice.ErrLanguageNotSupported
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return entity.LanguagePreference{}, err
	}
	defer repo.Rollback()

	pref := entity.LanguagePreference{
		UserID:              userID,
		PrimaryLanguage:     req.PrimaryLanguage,
		AutoSwitch:          req.AutoSwitch,
		RequireConfirmation: req.RequireConfirmation,
		UpdatedAt:           time.Now(),
	}

	if err := repo.Preferences.UpsertPreference(ctx, pref); err != nil {
		return entity.LanguagePreference{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit preference update")
		return entity.LanguagePreference{}, err
	}

	return pref, nil
}

func (s *voiceService) GetSwitchHistory(ctx context.Context, userID string, limit int) ([]entity.SwitchEvent, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return repo.Preferences.GetSwitchHistory(ctx, userID, limit)
}

func (s *voiceService) SupportedLanguages() []voice.LanguageInfo {
	codes := language.Supported()
	out := make([]voice.LanguageInfo, 0, len(codes))
	for _, code := range codes {
		out = append(out, voice.LanguageInfo{
			Code:        code,
			DisplayName: language.DisplayName(code),
		})
	}
	return out
}

// recordSwitch moves the session to target and appends the switch history
// row. The caller owns the transaction commit.
func (s *voiceService) recordSwitch(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession, target string, trigger entity.SwitchTrigger, confidence float64) error {
	requestID := contextPkg.GetRequestID(ctx)

	if !language.IsSupported(target) {
		return voice.ErrLanguageNotSupported
	}

	from := session.Language
	session.Language = target
	session.LastActivity = time.Now()

	if err := repo.Sessions.UpdateSession(ctx, *session); err != nil {
		session.Language = from
		return err
	}

	event := entity.SwitchEvent{
		UserID:       session.UserID,
		FromLanguage: from,
		ToLanguage:   target,
		Trigger:      trigger,
		Confidence:   confidence,
		SwitchedAt:   time.Now(),
	}
	if err := repo.Preferences.CreateSwitchEvent(ctx, event); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to record switch event")
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"session_id": session.ID,
		"from":       from,
		"to":         target,
		"trigger":    string(trigger),
	}).Info("Session language switched")

	return nil
}

// preferenceOrDefault loads the user's stored preference or falls back to
// the defaults for users who never saved one: English primary, automatic
// switching on, confirmation prompts off.
func (s *voiceService) preferenceOrDefault(ctx context.Context, repo voiceRepository.Client, userID string) entity.LanguagePreference {
	pref, err := repo.Preferences.GetPreferenceByUserID(ctx, userID)
	if err != nil {
		return entity.LanguagePreference{
			UserID:          userID,
			PrimaryLanguage: language.EnglishUS,
			AutoSwitch:      true,
		}
	}
	return pref
}
