package voiceService

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	"KalaVaani/internal/entity"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
)

func (s *voiceService) CreatePattern(ctx context.Context, req voice.PatternRequest) (entity.IntentPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if !language.IsSupported(req.Language) {
		return entity.IntentPattern{}, voice.ErrLanguageNotSupported
	}

	pattern := intent.Pattern{
		Intent:   req.Intent,
		Language: req.Language,
		Template: req.Template,
		Variants: req.Variants,
		Register: req.Register,
		Weight:   req.Weight,
	}
	if err := s.resolver.Register(pattern); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"intent":     req.Intent,
			"error":      err.Error(),
		}).Warn("Pattern registration rejected")
		return entity.IntentPattern{}, voice.ErrInvalidPattern
	}
	if req.Route != "" {
		s.resolver.RegisterRoute(req.Intent, req.Route)
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return entity.IntentPattern{}, err
	}
	defer repo.Rollback()

	now := time.Now()
	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return entity.IntentPattern{}, err
	}

	stored := entity.IntentPattern{
		ID:        id,
		Language:  req.Language,
		Intent:    req.Intent,
		Template:  req.Template,
		Variants:  req.Variants,
		Register:  req.Register,
		Weight:    req.Weight,
		Route:     req.Route,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if stored.Register == "" {
		stored.Register = intent.RegisterInformal
	}
	if stored.Weight == 0 {
		stored.Weight = 1
	}

	if err := repo.Patterns.CreatePattern(ctx, stored); err != nil {
		s.resolver.Unregister(req.Language, req.Template)
		return entity.IntentPattern{}, err
	}

	if err := repo.Commit(); err != nil {
		s.resolver.Unregister(req.Language, req.Template)
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit pattern creation")
		return entity.IntentPattern{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"pattern_id": id,
		"intent":     req.Intent,
		"language":   req.Language,
	}).Info("Intent pattern created")

	return stored, nil
}

func (s *voiceService) UpdatePattern(ctx context.Context, id string, req voice.PatternRequest) (entity.IntentPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return entity.IntentPattern{}, err
	}
	defer repo.Rollback()

	existing, err := repo.Patterns.GetPatternByID(ctx, id)
	if err != nil {
		return entity.IntentPattern{}, err
	}

	// Language and intent are identity; only the matching surface of a
	// pattern can change.
	updated := existing
	updated.Template = req.Template
	updated.Variants = req.Variants
	updated.Register = req.Register
	updated.Weight = req.Weight
	updated.Route = req.Route
	updated.UpdatedAt = time.Now()

	s.resolver.Unregister(existing.Language, existing.Template)
	if err := s.resolver.Register(intent.Pattern{
		Intent:   existing.Intent,
		Language: existing.Language,
		Template: updated.Template,
		Variants: updated.Variants,
		Register: updated.Register,
		Weight:   updated.Weight,
	}); err != nil {
		// Put the previous version back so the live resolver stays intact.
		s.resolver.Register(intent.Pattern{
			Intent:   existing.Intent,
			Language: existing.Language,
			Template: existing.Template,
			Variants: existing.Variants,
			Register: existing.Register,
			Weight:   existing.Weight,
		})
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"pattern_id": id,
			"error":      err.Error(),
		}).Warn("Pattern update rejected")
		return entity.IntentPattern{}, voice.ErrInvalidPattern
	}
	s.resolver.RegisterRoute(existing.Intent, updated.Route)

	if err := repo.Patterns.UpdatePattern(ctx, updated); err != nil {
		return entity.IntentPattern{}, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit pattern update")
		return entity.IntentPattern{}, err
	}

	return updated, nil
}

func (s *voiceService) DeactivatePattern(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return err
	}
	defer repo.Rollback()

	existing, err := repo.Patterns.GetPatternByID(ctx, id)
	if err != nil {
		return err
	}

	if err := repo.Patterns.DeactivatePattern(ctx, id); err != nil {
		return err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit pattern deactivation")
		return err
	}

	s.resolver.Unregister(existing.Language, existing.Template)

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"pattern_id": id,
	}).Info("Intent pattern deactivated")

	return nil
}

func (s *voiceService) ListPatterns(ctx context.Context, lang string) ([]entity.IntentPattern, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return nil, err
	}

	if lang == "" {
		return repo.Patterns.GetAllActivePatterns(ctx)
	}
	if !language.IsSupported(lang) {
		return nil, voice.ErrLanguageNotSupported
	}
	return repo.Patterns.GetPatternsByLanguage(ctx, lang)
}

// TestPattern runs the resolver against an input without touching any
// session, command row, or analytics. Pattern admins use it to check a
// phrase before publishing it.
func (s *voiceService) TestPattern(req voice.PatternTestRequest) (voice.PatternTestResponse, error) {
	if req.Language != "" && !language.IsSupported(req.Language) {
		return voice.PatternTestResponse{}, voice.ErrLanguageNotSupported
	}

	started := time.Now()

	lang := req.Language
	if lang == "" {
		lang = s.detector.Detect(req.Text).Language
	}

	resolution := s.resolver.Resolve(req.Text, lang)

	return voice.PatternTestResponse{
		Input:          req.Text,
		NormalizedText: language.NormalizeText(req.Text),
		Language:       lang,
		Matched:        resolution.Matched,
		Intent:         resolution.Intent,
		Confidence:     resolution.Confidence,
		Parameters:     resolution.Parameters,
		Route:          resolution.Route,
		ProcessingMs:   time.Since(started).Milliseconds(),
	}, nil
}

// LoadPersistedPatterns replays stored custom patterns into the resolver.
// Called once at startup; patterns that no longer compile are skipped and
// logged rather than failing the boot.
func (s *voiceService) LoadPersistedPatterns(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return err
	}

	patterns, err := repo.Patterns.GetAllActivePatterns(ctx)
	if err != nil {
		return err
	}

	loaded := 0
	for _, p := range patterns {
		err := s.resolver.Register(intent.Pattern{
			Intent:   p.Intent,
			Language: p.Language,
			Template: p.Template,
			Variants: p.Variants,
			Register: p.Register,
			Weight:   p.Weight,
		})
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"pattern_id": p.ID,
				"error":      err.Error(),
			}).Warn("Skipping stored pattern that no longer compiles")
			continue
		}
		if p.Route != "" {
			s.resolver.RegisterRoute(p.Intent, p.Route)
		}
		loaded++
	}

	if loaded > 0 {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"count":      loaded,
		}).Info("Custom intent patterns loaded")
	}
	return nil
}
