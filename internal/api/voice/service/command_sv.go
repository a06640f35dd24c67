package voiceService

import (
	"context"
	"io"
	"mime/multipart"
	"time"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	voiceRepository "KalaVaani/internal/api/voice/repository"
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
	"KalaVaani/pkg/recovery"
)

func (s *voiceService) ResolveText(ctx context.Context, userID, sessionID string, req voice.ResolveTextRequest) (*voice.CommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, err
	}
	defer repo.Rollback()

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, voice.ErrSessionNotActive
	}

	if err := s.beginResolve(sessionID); err != nil {
		return nil, err
	}
	defer s.endResolve(sessionID)

	resp, err := s.executeCommand(ctx, repo, &session, req.Text, req.Language)
	if err != nil {
		return nil, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit voice command")
		return nil, err
	}

	return resp, nil
}

func (s *voiceService) ProcessAudioCommand(ctx context.Context, userID, sessionID string, file *multipart.FileHeader, lang string) (*voice.CommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	if file == nil {
		return nil, voice.ErrInvalidAudioFile
	}
	if file.Size > s.config.MaxAudioBytes {
		return nil, voice.ErrAudioFileTooLarge
	}
	if err := s.utils.ValidateAudioFile(file); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Invalid audio upload")
		return nil, voice.ErrInvalidAudioFile
	}

	mode := s.fallback.CurrentMode()
	if mode.ID != fallback.ModeFull && mode.ID != fallback.ModeLimitedVoice {
		return nil, voice.ErrModeNotAvailable
	}
	if s.recognizer == nil {
		return nil, voice.ErrEngineNotReady
	}

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return nil, err
	}
	defer repo.Rollback()

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, voice.ErrSessionNotActive
	}

	if err := s.beginResolve(sessionID); err != nil {
		return nil, err
	}
	defer s.endResolve(sessionID)

	src, err := file.Open()
	if err != nil {
		return nil, voice.ErrInvalidAudioFile
	}
	audio, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return nil, voice.ErrInvalidAudioFile
	}

	if lang == "" || !language.IsSupported(lang) {
		lang = session.Language
	}

	start := time.Now()
	transcript, err := s.recognizer.Transcribe(ctx, audio, lang)
	if err != nil {
		resp := s.recognitionFailure(ctx, repo, &session, err, lang, start)
		if commitErr := repo.Commit(); commitErr != nil {
			return nil, commitErr
		}
		return resp, nil
	}

	s.recorder.Track(analytics.Event{
		Type:       analytics.EventRecognition,
		SessionID:  session.ID,
		Language:   lang,
		Success:    transcript.Text != "",
		Confidence: transcript.Confidence,
		DurationMs: time.Since(start).Milliseconds(),
		Data:       map[string]string{"source": "audio"},
	})

	if transcript.Text == "" {
		resp := s.recognitionFailure(ctx, repo, &session, recovery.NewError(recovery.KindSpeechNotRecognized, nil), lang, start)
		if commitErr := repo.Commit(); commitErr != nil {
			return nil, commitErr
		}
		return resp, nil
	}

	resp, err := s.executeCommand(ctx, repo, &session, transcript.Text, lang)
	if err != nil {
		return nil, err
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit audio command")
		return nil, err
	}

	return resp, nil
}

func (s *voiceService) ProcessConfirmation(ctx context.Context, userID, sessionID string, req voice.ConfirmationRequest) (*voice.CommandResponse, error) {
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.voiceRepo.NewClient(true)
	if err != nil {
		return nil, err
	}
	defer repo.Rollback()

	session, err := s.loadOwnedSession(ctx, repo, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if !session.Active() {
		return nil, voice.ErrSessionNotActive
	}
	if !session.PendingConfirmation {
		return nil, voice.ErrNothingToConfirm
	}

	if err := s.beginResolve(sessionID); err != nil {
		return nil, err
	}
	defer s.endResolve(sessionID)

	resp := s.applyConfirmation(ctx, repo, &session, req.Text)
	if resp == nil {
		// Neither a yes nor a no; keep the pending command and ask again.
		resp = &voice.CommandResponse{
			Transcript:   req.Text,
			Success:      false,
			Message:      confirmRepeat(session.Language),
			Language:     session.Language,
			NeedsConfirm: true,
		}
		s.touchSession(ctx, repo, &session)
	}
	s.finishResponse(ctx, resp, &session)

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit confirmation")
		return nil, err
	}

	return resp, nil
}

// beginResolve claims the session's single-flight slot. Command rows append
// in timestamp order and the session counters are read-modify-write; the
// engine resolves one input per session at a time.
func (s *voiceService) beginResolve(sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.resolving[sessionID]; busy {
		return voice.ErrCommandInProgress
	}
	s.resolving[sessionID] = struct{}{}
	return nil
}

func (s *voiceService) endResolve(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.resolving, sessionID)
}

// executeCommand runs one transcript through the full pipeline on an active
// session: pending confirmation, automatic language switch, mode-aware
// resolution, feedback synthesis, analytics and persistence. The repository
// client is shared with the caller, which owns the commit.
func (s *voiceService) executeCommand(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession, transcript, langOverride string) (*voice.CommandResponse, error) {
	start := time.Now()

	lang := session.Language
	if langOverride != "" && language.IsSupported(langOverride) {
		lang = langOverride
	}

	if session.PendingConfirmation {
		if resp := s.applyConfirmation(ctx, repo, session, transcript); resp != nil {
			s.finishResponse(ctx, resp, session)
			return resp, nil
		}
		// Not an answer to the prompt; drop the pending command and treat
		// the input as a fresh one.
		session.PendingConfirmation = false
		session.PendingIntent = ""
		session.PendingRoute = ""
	}

	pref := s.preferenceOrDefault(ctx, repo, session.UserID)
	if pref.AutoSwitch {
		det := s.detector.Detect(transcript)
		if det.Language != lang && det.Confidence >= s.config.AutoSwitchThreshold && language.IsSupported(det.Language) {
			if err := s.recordSwitch(ctx, repo, session, det.Language, entity.SwitchTriggerAutoDetection, det.Confidence); err == nil {
				lang = det.Language
			}
		}
	}

	var resp *voice.CommandResponse
	if s.fallback.CurrentMode().ID == fallback.ModeOfflineVoice {
		resp = s.resolveOffline(session, transcript, lang)
	} else {
		resp = s.resolveOnline(ctx, repo, session, transcript, lang, pref)
	}
	resp.DurationMs = time.Since(start).Milliseconds()

	s.trackResolution(session, resp)
	s.finishResponse(ctx, resp, session)

	if err := s.persistCommand(ctx, repo, session, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// resolveOnline scores the transcript against the pattern catalogue and
// builds the response for every resolution outcome.
func (s *voiceService) resolveOnline(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession, transcript, lang string, pref entity.LanguagePreference) *voice.CommandResponse {
	resolution := s.resolver.Resolve(transcript, lang)

	resp := &voice.CommandResponse{
		Transcript: transcript,
		Intent:     resolution.Intent,
		Confidence: resolution.Confidence,
		Parameters: resolution.Parameters,
		Language:   lang,
	}

	switch {
	case resolution.SwitchTarget != "":
		if resolution.SwitchTarget == session.Language {
			resp.Success = true
			resp.Message = alreadyUsingMessage(session.Language)
			return resp
		}
		if err := s.recordSwitch(ctx, repo, session, resolution.SwitchTarget, entity.SwitchTriggerUserCommand, resolution.Confidence); err != nil {
			resp.Message = s.recovery.Localize(recovery.KindLanguageNotSupported, lang)
			return resp
		}
		resp.Success = true
		resp.Language = resolution.SwitchTarget
		resp.Message = switchMessage(resolution.SwitchTarget)
		return resp

	case !resolution.Matched:
		s.failWith(resp, recovery.KindIntentNotRecognized, session, lang)
		resp.Suggestions = s.suggestionsFor(lang, 3)
		return resp

	case resolution.Route == "" && actionMessage(lang, resolution.Intent) != "":
		resp.Success = true
		resp.Message = actionMessage(lang, resolution.Intent)
		if resolution.Intent == intent.StopListening {
			s.EndListening(session.ID)
		}
		return resp

	case resolution.Route == "":
		s.failWith(resp, recovery.KindRouteNotFound, session, lang)
		resp.Suggestions = s.suggestionsFor(lang, 3)
		return resp
	}

	if pref.RequireConfirmation && resolution.Confidence < s.config.ConfirmBelow {
		session.PendingConfirmation = true
		session.PendingIntent = resolution.Intent
		session.PendingRoute = resolution.Route
		resp.NeedsConfirm = true
		resp.Message = confirmPrompt(lang, resolution.Route)
		return resp
	}

	resp.Success = true
	resp.Route = resolution.Route
	if query, ok := resolution.Parameters[intent.SlotQuery]; ok && query != "" {
		resp.Message = searchMessage(lang, query)
	} else {
		resp.Message = navMessage(lang, resolution.Route)
	}
	s.offline.Cache(transcript, resolution.Intent, resolution.Route, lang)
	return resp
}

// resolveOffline serves degraded mode from the cached command set only.
func (s *voiceService) resolveOffline(session *entity.VoiceSession, transcript, lang string) *voice.CommandResponse {
	match := s.offline.Match(transcript, lang)

	resp := &voice.CommandResponse{
		Transcript: transcript,
		Confidence: match.Confidence,
		Language:   lang,
		Offline:    true,
	}

	if !match.Matched {
		s.failWith(resp, recovery.KindIntentNotRecognized, session, lang)
		resp.Suggestions = s.suggestionsFor(lang, 3)
		return resp
	}

	resp.Success = true
	resp.Intent = match.Command.Intent
	resp.Route = match.Command.Route
	resp.Message = navMessage(lang, match.Command.Route)
	return resp
}

// applyConfirmation resolves a yes or no against the session's pending
// command. It returns nil when the input is neither, leaving the pending
// state for the caller to decide on.
func (s *voiceService) applyConfirmation(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession, input string) *voice.CommandResponse {
	confirmed, recognized := parseConfirmation(input, session.Language)
	if !recognized {
		return nil
	}

	resp := &voice.CommandResponse{
		Transcript: input,
		Language:   session.Language,
	}

	if confirmed {
		resp.Success = true
		resp.Intent = session.PendingIntent
		resp.Route = session.PendingRoute
		resp.Confidence = 1
		resp.Message = navMessage(session.Language, session.PendingRoute)
	} else {
		resp.Intent = session.PendingIntent
		resp.ErrorKind = "cancelled"
		resp.Message = cancelMessage(session.Language)
	}

	session.PendingConfirmation = false
	session.PendingIntent = ""
	session.PendingRoute = ""

	s.trackResolution(session, resp)
	if err := s.persistCommand(ctx, repo, session, resp); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to persist confirmation outcome")
	}
	return resp
}

// recognitionFailure handles a failed or empty transcription: classify,
// degrade when the failure warrants it, respond with the localized recovery
// message. The HTTP request itself still succeeds.
func (s *voiceService) recognitionFailure(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession, err error, lang string, start time.Time) *voice.CommandResponse {
	kind := recovery.Classify(err)
	result := s.recovery.HandleError(err, recovery.Context{
		SessionID: session.ID,
		UserID:    session.UserID,
		Language:  lang,
	})

	switch kind {
	case recovery.KindNetworkError, recovery.KindServiceUnavailable, recovery.KindQuotaExceeded:
		s.fallback.ActivateFallback(kind)
	}

	resp := &voice.CommandResponse{
		Success:       false,
		ErrorKind:     string(kind),
		Message:       result.Message,
		AudioFeedback: result.AudioFeedback,
		Language:      lang,
		DurationMs:    time.Since(start).Milliseconds(),
	}

	s.recorder.Track(analytics.Event{
		Type:      analytics.EventError,
		SessionID: session.ID,
		Language:  lang,
		Data:      map[string]string{"error_kind": string(kind)},
	})

	if err := s.persistCommand(ctx, repo, session, resp); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Warn("Failed to persist failed recognition")
	}

	s.finishResponse(ctx, resp, session)
	return resp
}

func (s *voiceService) failWith(resp *voice.CommandResponse, kind recovery.Kind, session *entity.VoiceSession, lang string) {
	result := s.recovery.HandleError(recovery.NewError(kind, nil), recovery.Context{
		SessionID: session.ID,
		UserID:    session.UserID,
		Language:  lang,
	})
	resp.Success = false
	resp.ErrorKind = string(kind)
	resp.Message = result.Message
	resp.AudioFeedback = result.AudioFeedback
}

// finishResponse stamps mode info and synthesizes spoken feedback when the
// current degradation level still carries voice output.
func (s *voiceService) finishResponse(ctx context.Context, resp *voice.CommandResponse, session *entity.VoiceSession) {
	mode := s.fallback.CurrentMode()
	resp.Mode = mode.ID

	if !s.config.EnableTTS || s.synthesizer == nil {
		return
	}
	if mode.ID != fallback.ModeFull {
		return
	}

	text := resp.AudioFeedback
	if text == "" && resp.Success {
		text = resp.Message
	}
	if text == "" {
		return
	}

	url := s.speakFeedback(ctx, text, resp.Language)
	if url != "" {
		resp.AudioFeedback = text
		resp.AudioURL = url
	}
}

// speakFeedback synthesizes text and stores the clip, returning a presigned
// URL. Feedback is best-effort; any failure just means silent text feedback.
func (s *voiceService) speakFeedback(ctx context.Context, text, lang string) string {
	requestID := contextPkg.GetRequestID(ctx)

	audio, err := s.synthesizer.Synthesize(ctx, text, lang)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to synthesize feedback, continuing without audio")
		return ""
	}

	key, err := s.s3Client.UploadAudio(audio, "feedback.mp3", "audio/mpeg")
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to upload feedback audio")
		return ""
	}

	url, err := s.s3Client.PresignUrl(key)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Failed to presign feedback audio")
		return ""
	}
	return url
}

func (s *voiceService) trackResolution(session *entity.VoiceSession, resp *voice.CommandResponse) {
	event := analytics.Event{
		SessionID:  session.ID,
		Language:   resp.Language,
		Success:    resp.Success,
		Confidence: resp.Confidence,
		DurationMs: resp.DurationMs,
	}

	switch {
	case resp.Route != "" && resp.Success:
		event.Type = analytics.EventNavigation
		event.Data = map[string]string{"intent": resp.Intent, "route": resp.Route}
	case !resp.Success && !resp.NeedsConfirm:
		event.Type = analytics.EventError
		event.Data = map[string]string{"intent": resp.Intent}
	default:
		event.Type = analytics.EventRecognition
		event.Data = map[string]string{"intent": resp.Intent, "source": "text"}
	}

	s.recorder.Track(event)
}

// persistCommand writes the command row and folds the outcome into the
// session counters. Confirmation prompts produce no row; only resolved
// commands count toward the session totals.
func (s *voiceService) persistCommand(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession, resp *voice.CommandResponse) error {
	now := time.Now()

	if resp.NeedsConfirm {
		return s.touchSession(ctx, repo, session)
	}

	id, err := s.utils.NewULIDFromTimestamp(now)
	if err != nil {
		return err
	}

	cmd := entity.VoiceCommand{
		ID:         id,
		SessionID:  session.ID,
		UserID:     session.UserID,
		Transcript: resp.Transcript,
		Intent:     resp.Intent,
		Confidence: resp.Confidence,
		Parameters: resp.Parameters,
		Success:    resp.Success,
		Route:      resp.Route,
		DurationMs: resp.DurationMs,
		ErrorKind:  resp.ErrorKind,
		AudioURL:   resp.AudioURL,
		CreatedAt:  now,
	}

	if err := repo.Commands.CreateCommand(ctx, cmd); err != nil {
		return err
	}

	session.TotalCommands++
	if resp.Success {
		session.SuccessfulCommands++
	}
	session.SuccessRate = float64(session.SuccessfulCommands) / float64(session.TotalCommands)
	session.AverageConfidence = s.recorder.SessionStats(session.ID).AverageConfidence
	session.LastActivity = now

	return repo.Sessions.UpdateSession(ctx, *session)
}

func (s *voiceService) touchSession(ctx context.Context, repo voiceRepository.Client, session *entity.VoiceSession) error {
	session.LastActivity = time.Now()
	return repo.Sessions.UpdateSession(ctx, *session)
}

func (s *voiceService) GetCommandHistory(ctx context.Context, userID string, page, limit int) ([]voice.CommandHistoryEntry, int, error) {
	repo, err := s.voiceRepo.NewClient(false)
	if err != nil {
		return nil, 0, err
	}

	limit, offset := s.pageBounds(page, limit)
	commands, total, err := repo.Commands.GetCommandsByUserID(ctx, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	out := make([]voice.CommandHistoryEntry, 0, len(commands))
	for _, cmd := range commands {
		out = append(out, voice.NewCommandHistoryEntry(cmd))
	}
	return out, total, nil
}

func (s *voiceService) GetSuggestions(ctx context.Context, userID string) (voice.SuggestionsResponse, error) {
	lang := language.EnglishUS

	repo, err := s.voiceRepo.NewClient(false)
	if err == nil {
		if pref, prefErr := repo.Preferences.GetPreferenceByUserID(ctx, userID); prefErr == nil {
			lang = pref.PrimaryLanguage
		}
	}

	return voice.SuggestionsResponse{
		Language:    lang,
		Suggestions: s.suggestionsFor(lang, s.config.SuggestionLimit),
	}, nil
}

// suggestionsFor returns example phrases for routed intents in catalogue
// order, skipping slotted templates that read poorly as literal examples.
func (s *voiceService) suggestionsFor(lang string, limit int) []string {
	var out []string
	seen := make(map[string]struct{})

	for _, p := range s.resolver.Patterns(lang) {
		if len(out) >= limit {
			break
		}
		if s.resolver.RouteFor(lang, p.Intent, nil) == "" {
			continue
		}
		if _, dup := seen[p.Intent]; dup {
			continue
		}
		if containsSlot(p.Template) {
			continue
		}
		seen[p.Intent] = struct{}{}
		out = append(out, p.Template)
	}
	return out
}

func containsSlot(template string) bool {
	for i := 0; i < len(template); i++ {
		if template[i] == '{' {
			return true
		}
	}
	return false
}
