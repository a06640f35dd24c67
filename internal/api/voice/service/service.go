package voiceService

import (
	"context"
	"mime/multipart"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"KalaVaani/internal/api/voice"
	voiceRepository "KalaVaani/internal/api/voice/repository"
	"KalaVaani/internal/entity"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
	"KalaVaani/pkg/offline"
	"KalaVaani/pkg/recovery"
	redisPkg "KalaVaani/pkg/redis"
	"KalaVaani/pkg/s3"
	"KalaVaani/pkg/speech"
	"KalaVaani/pkg/utils"
)

type IVoiceService interface {
	StartSession(ctx context.Context, userID string, req voice.StartSessionRequest) (voice.SessionResponse, error)
	EndSession(ctx context.Context, userID, sessionID string) (voice.SessionResponse, error)
	GetSession(ctx context.Context, userID, sessionID string) (voice.SessionResponse, error)
	GetActiveSession(ctx context.Context, userID string) (voice.SessionResponse, error)
	GetSessionHistory(ctx context.Context, userID string, page, limit int) ([]voice.SessionResponse, int, error)

	ResolveText(ctx context.Context, userID, sessionID string, req voice.ResolveTextRequest) (*voice.CommandResponse, error)
	ProcessAudioCommand(ctx context.Context, userID, sessionID string, file *multipart.FileHeader, lang string) (*voice.CommandResponse, error)
	ProcessConfirmation(ctx context.Context, userID, sessionID string, req voice.ConfirmationRequest) (*voice.CommandResponse, error)
	GetCommandHistory(ctx context.Context, userID string, page, limit int) ([]voice.CommandHistoryEntry, int, error)
	GetSuggestions(ctx context.Context, userID string) (voice.SuggestionsResponse, error)

	DetectLanguage(req voice.DetectLanguageRequest) voice.DetectLanguageResponse
	SwitchLanguage(ctx context.Context, userID, sessionID string, req voice.SwitchLanguageRequest) (voice.SwitchLanguageResponse, error)
	AutoSwitch(ctx context.Context, userID, sessionID string, req voice.AutoSwitchRequest) (voice.SwitchLanguageResponse, error)
	GetPreference(ctx context.Context, userID string) (entity.LanguagePreference, error)
	UpdatePreference(ctx context.Context, userID string, req voice.PreferenceRequest) (entity.LanguagePreference, error)
	GetSwitchHistory(ctx context.Context, userID string, limit int) ([]entity.SwitchEvent, error)
	SupportedLanguages() []voice.LanguageInfo

	GetFallbackStatus() voice.FallbackStatusResponse
	SwitchMode(ctx context.Context, req voice.SwitchModeRequest) (voice.FallbackStatusResponse, error)
	ReportCapability(ctx context.Context, req voice.ReportCapabilityRequest) voice.FallbackStatusResponse
	ResetToFullMode(ctx context.Context) voice.FallbackStatusResponse

	MatchOffline(req voice.OfflineMatchRequest) voice.OfflineMatchResponse
	CacheOfflineCommand(ctx context.Context, req voice.CacheCommandRequest) error

	CreatePattern(ctx context.Context, req voice.PatternRequest) (entity.IntentPattern, error)
	UpdatePattern(ctx context.Context, id string, req voice.PatternRequest) (entity.IntentPattern, error)
	DeactivatePattern(ctx context.Context, id string) error
	ListPatterns(ctx context.Context, lang string) ([]entity.IntentPattern, error)
	TestPattern(req voice.PatternTestRequest) (voice.PatternTestResponse, error)
	LoadPersistedPatterns(ctx context.Context) error

	GetMetrics(since time.Time) voice.MetricsResponse
	GetSessionStats(ctx context.Context, userID, sessionID string) (analytics.SessionStats, error)

	BeginListening(sessionID string) error
	EndListening(sessionID string)
	StreamFrame(ctx context.Context, sessionID, lang string, frame []byte) (speech.Partial, error)

	PersistState(ctx context.Context) error
	RestoreState(ctx context.Context) error
	CleanupStaleSessions(ctx context.Context) (int, error)
	PruneAnalytics(olderThan time.Time) int
	TryRestoreFullMode() bool
}

type voiceService struct {
	log         *logrus.Logger
	voiceRepo   voiceRepository.Repository
	redis       redisPkg.IRedis
	s3Client    s3.ItfS3
	utils       utils.IUtils
	resolver    intent.IResolver
	offline     offline.ICache
	detector    language.IDetector
	recorder    analytics.IRecorder
	recovery    recovery.IHandler
	fallback    fallback.IController
	assessor    capability.IAssessor
	reported    *capability.ReportedStore
	recognizer  speech.IRecognizer
	synthesizer speech.ISynthesizer
	stream      speech.IStreamClient
	config      *VoiceConfig

	mu        sync.Mutex
	listeners map[string]struct{}
	resolving map[string]struct{}
}

// VoiceConfig carries the tunables of the engine. Zero values are replaced
// with the documented defaults at construction time.
type VoiceConfig struct {
	MaxAudioBytes       int64         `json:"max_audio_bytes"`
	SessionTimeout      time.Duration `json:"session_timeout"`
	AutoSwitchThreshold float64       `json:"auto_switch_threshold"`
	ConfirmBelow        float64       `json:"confirm_below"`
	SuggestionLimit     int           `json:"suggestion_limit"`
	HistoryPageSize     int           `json:"history_page_size"`
	StateTTL            time.Duration `json:"state_ttl"`
	EnableTTS           bool          `json:"enable_tts"`
}

func (c *VoiceConfig) withDefaults() *VoiceConfig {
	out := *c
	if out.MaxAudioBytes <= 0 {
		out.MaxAudioBytes = 10 << 20
	}
	if out.SessionTimeout <= 0 {
		out.SessionTimeout = 30 * time.Minute
	}
	if out.AutoSwitchThreshold <= 0 {
		out.AutoSwitchThreshold = 0.7
	}
	if out.ConfirmBelow <= 0 {
		out.ConfirmBelow = 0.7
	}
	if out.SuggestionLimit <= 0 {
		out.SuggestionLimit = 5
	}
	if out.HistoryPageSize <= 0 {
		out.HistoryPageSize = 20
	}
	if out.StateTTL <= 0 {
		out.StateTTL = 7 * 24 * time.Hour
	}
	return &out
}

func NewVoiceService(
	log *logrus.Logger,
	voiceRepo voiceRepository.Repository,
	redis redisPkg.IRedis,
	s3Client s3.ItfS3,
	utils utils.IUtils,
	resolver intent.IResolver,
	offlineCache offline.ICache,
	detector language.IDetector,
	recorder analytics.IRecorder,
	recoveryHandler recovery.IHandler,
	fallbackCtrl fallback.IController,
	assessor capability.IAssessor,
	reported *capability.ReportedStore,
	recognizer speech.IRecognizer,
	synthesizer speech.ISynthesizer,
	stream speech.IStreamClient,
	config *VoiceConfig,
) IVoiceService {
	if config == nil {
		config = &VoiceConfig{}
	}
	return &voiceService{
		log:         log,
		voiceRepo:   voiceRepo,
		redis:       redis,
		s3Client:    s3Client,
		utils:       utils,
		resolver:    resolver,
		offline:     offlineCache,
		detector:    detector,
		recorder:    recorder,
		recovery:    recoveryHandler,
		fallback:    fallbackCtrl,
		assessor:    assessor,
		reported:    reported,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		stream:      stream,
		config:      config.withDefaults(),
		listeners:   make(map[string]struct{}),
		resolving:   make(map[string]struct{}),
	}
}
