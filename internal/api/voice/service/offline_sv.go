package voiceService

import (
	"context"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/language"
)

func (s *voiceService) MatchOffline(req voice.OfflineMatchRequest) voice.OfflineMatchResponse {
	lang := req.Language
	if !language.IsSupported(lang) {
		lang = language.EnglishUS
	}

	match := s.offline.Match(req.Text, lang)
	out := voice.OfflineMatchResponse{
		Matched:    match.Matched,
		Confidence: match.Confidence,
	}
	if match.Matched {
		out.Pattern = match.Command.Pattern
		out.Intent = match.Command.Intent
		out.Route = match.Command.Route
	}
	return out
}

func (s *voiceService) CacheOfflineCommand(ctx context.Context, req voice.CacheCommandRequest) error {
	if !language.IsSupported(req.Language) {
		return voice.ErrLanguageNotSupported
	}

	route := req.Route
	if route == "" {
		route = s.resolver.RouteFor(req.Language, req.Intent, nil)
	}

	s.offline.Cache(req.Pattern, req.Intent, route, req.Language)

	s.log.WithFields(logrus.Fields{
		"request_id": contextPkg.GetRequestID(ctx),
		"pattern":    req.Pattern,
		"intent":     req.Intent,
		"language":   req.Language,
		"cache_size": s.offline.Len(),
	}).Debug("Offline command cached")

	return nil
}
