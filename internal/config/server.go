package config

import (
	"KalaVaani/database/postgres"
	voiceHandler "KalaVaani/internal/api/voice/handler"
	voiceRepository "KalaVaani/internal/api/voice/repository"
	voiceService "KalaVaani/internal/api/voice/service"
	"KalaVaani/internal/middleware"
	"KalaVaani/pkg/analytics"
	"KalaVaani/pkg/capability"
	"KalaVaani/pkg/fallback"
	"KalaVaani/pkg/intent"
	"KalaVaani/pkg/language"
	"KalaVaani/pkg/offline"
	"KalaVaani/pkg/recovery"
	"KalaVaani/pkg/redis"
	"KalaVaani/pkg/s3"
	"KalaVaani/pkg/speech"
	"KalaVaani/pkg/utils"
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ServerOption func(*Server) error

type Server struct {
	engine      *fiber.App
	db          *sqlx.DB
	log         *logrus.Logger
	middleware  middleware.Middleware
	validator   *validator.Validate
	env         *EnvConfig
	utils       utils.IUtils
	handlers    []handler
	redisServer redis.IRedis
	s3Client    s3.ItfS3
	recognizer  speech.IRecognizer
	synthesizer speech.ISynthesizer
	stream      speech.IStreamClient
	voiceEngine voiceService.IVoiceService
	jobs        *cron.Cron
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if server.env == nil {
		return nil, fmt.Errorf("environment config is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithEnv(env *EnvConfig) ServerOption {
	return func(s *Server) error {
		s.env = env
		return nil
	}
}

func WithDatabase() ServerOption {
	return func(s *Server) error {
		db, err := postgres.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to connect to database: %v", err)
			}
			return fmt.Errorf("failed to create database connection: %w", err)
		}
		s.db = db
		return nil
	}
}

func WithRedisServer() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("environment must be loaded before redis")
		}
		s.redisServer = redis.New(s.env.RedisAddr, s.env.RedisPassword, s.env.RedisDB)
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithS3Client() ServerOption {
	return func(s *Server) error {
		client, err := s3.New()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to initialize S3 client: %v", err)
			}
			return fmt.Errorf("failed to create S3 client: %w", err)
		}
		s.s3Client = client
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

// WithSpeechClients builds the transcription, synthesis and streaming
// clients from the environment. Synthesis stays nil unless TTS is enabled,
// and the stream client stays nil without a stream URL.
func WithSpeechClients() ServerOption {
	return func(s *Server) error {
		if s.env == nil {
			return fmt.Errorf("environment must be loaded before speech clients")
		}

		recognizer, err := speech.NewRecognizer(speech.RecognizerConfig{
			Provider:     s.env.SpeechProvider,
			OpenAIKey:    s.env.OpenAIKey,
			WhisperModel: s.env.WhisperModel,
			GeminiKey:    s.env.GeminiKey,
			GeminiModel:  s.env.GeminiModel,
		})
		if err != nil {
			if s.log != nil {
				s.log.Warnf("Speech recognizer unavailable, audio endpoints will be rejected: %v", err)
			}
		} else {
			s.recognizer = recognizer
		}

		if s.env.EnableTTS && s.env.ElevenLabsKey != "" {
			s.synthesizer = speech.NewElevenLabsSynthesizer(
				s.env.ElevenLabsKey,
				s.env.ElevenLabsVoice,
				s.env.ElevenLabsVoices,
			)
		}

		if s.env.StreamURL != "" {
			s.stream = speech.NewStreamClient(s.env.StreamURL)
		}

		return nil
	}
}

func (s *Server) RegisterHandler() {
	voiceRepo := voiceRepository.New(s.db, s.log)

	detector := language.NewDetector()
	resolver := intent.NewResolver()
	offlineCache := offline.NewCache(s.env.OfflineCacheBound)
	recorder := analytics.NewRecorder(s.env.AnalyticsLogBound)
	recoveryHandler := recovery.NewHandler(s.log)

	reported := capability.NewReportedStore()
	probes := map[string]capability.Probe{
		capability.AudioCapture:      reported.Probe(capability.AudioCapture),
		capability.Network:           reported.Probe(capability.Network),
		capability.SpeechRecognition: reported.Probe(capability.SpeechRecognition),
		capability.SpeechSynthesis:   reported.Probe(capability.SpeechSynthesis),
		capability.Keyboard:          reported.Probe(capability.Keyboard),
	}
	if s.env.SpeechHealthURL != "" {
		probes[capability.SpeechRecognition] = capability.EndpointProbe(s.env.SpeechHealthURL, 3*time.Second)
	}
	assessor := capability.NewAssessor(probes)
	fallbackCtrl := fallback.NewController(s.log, assessor)

	engineConfig := &voiceService.VoiceConfig{
		MaxAudioBytes:       s.env.MaxAudioBytes,
		SessionTimeout:      s.env.SessionTimeout,
		AutoSwitchThreshold: s.env.AutoSwitchThreshold,
		ConfirmBelow:        s.env.ConfirmBelow,
		SuggestionLimit:     s.env.SuggestionLimit,
		StateTTL:            s.env.StateTTL,
		EnableTTS:           s.env.EnableTTS,
	}

	voiceServices := voiceService.NewVoiceService(
		s.log,
		voiceRepo,
		s.redisServer,
		s.s3Client,
		s.utils,
		resolver,
		offlineCache,
		detector,
		recorder,
		recoveryHandler,
		fallbackCtrl,
		assessor,
		reported,
		s.recognizer,
		s.synthesizer,
		s.stream,
		engineConfig,
	)
	s.voiceEngine = voiceServices

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := voiceServices.RestoreState(ctx); err != nil {
		s.log.Warnf("Could not restore engine state: %v", err)
	}
	if err := voiceServices.LoadPersistedPatterns(ctx); err != nil {
		s.log.Warnf("Could not load persisted intent patterns: %v", err)
	}

	voiceHandlers := voiceHandler.New(s.log, s.validator, s.middleware, voiceServices)

	s.setupHealthCheck()
	s.handlers = append(s.handlers, voiceHandlers)
}

// StartJobs schedules the recurring engine maintenance work.
func (s *Server) StartJobs() {
	s.jobs = cron.New()

	s.jobs.AddFunc("@every 5m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.voiceEngine.CleanupStaleSessions(ctx); err != nil {
			s.log.Warnf("Stale session cleanup failed: %v", err)
		}
	})

	s.jobs.AddFunc("@every 10m", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := s.voiceEngine.PersistState(ctx); err != nil {
			s.log.Warnf("Engine state persistence failed: %v", err)
		}
	})

	s.jobs.AddFunc("@every 1m", func() {
		if s.voiceEngine.TryRestoreFullMode() {
			s.log.Info("Restored full voice mode after capability recovery")
		}
	})

	s.jobs.AddFunc("@daily", func() {
		pruned := s.voiceEngine.PruneAnalytics(time.Now().Add(-s.env.AnalyticsRetention))
		if pruned > 0 {
			s.log.Infof("Pruned %d analytics events", pruned)
		}
	})

	s.jobs.Start()
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(middleware.LoggerConfig())

	for _, h := range s.handlers {
		h.Start(router)
	}

	s.StartJobs()

	if err := s.engine.Listen(fmt.Sprintf(":%s", s.env.AppPort)); err != nil {
		return err
	}

	return nil
}

// Shutdown stops the schedulers and flushes engine state so a restart can
// pick up the offline cache and analytics where this process left them.
func (s *Server) Shutdown() {
	if s.jobs != nil {
		s.jobs.Stop()
	}

	if s.voiceEngine != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.voiceEngine.PersistState(ctx); err != nil {
			s.log.Warnf("Final state persistence failed: %v", err)
		}
	}

	if s.stream != nil {
		s.stream.Close()
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			s.log.Warnf("Database close failed: %v", err)
		}
	}
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}
