package voiceRepository

import (
	"KalaVaani/internal/entity"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(tx bool) (Client, error)
}

func (r *repository) NewClient(tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		var err error
		txx, err := r.DB.Beginx()
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Sessions:    &sessionRepository{q: sqlExecutor, log: r.log},
		Commands:    &commandRepository{q: sqlExecutor, log: r.log},
		Patterns:    &patternRepository{q: sqlExecutor, log: r.log},
		Preferences: &preferenceRepository{q: sqlExecutor, log: r.log},
		Commit:      commitFunc,
		Rollback:    rollbackFunc,
	}, nil
}

type Client struct {
	Sessions interface {
		CreateSession(ctx context.Context, session entity.VoiceSession) error
		GetSessionByID(ctx context.Context, id string) (entity.VoiceSession, error)
		GetActiveSessionByUserID(ctx context.Context, userID string) (entity.VoiceSession, error)
		UpdateSession(ctx context.Context, session entity.VoiceSession) error
		GetSessionsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.VoiceSession, int, error)
		EndStaleSessions(ctx context.Context, cutoff time.Time) ([]entity.VoiceSession, error)
	}

	Commands interface {
		CreateCommand(ctx context.Context, cmd entity.VoiceCommand) error
		GetCommandsBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]entity.VoiceCommand, int, error)
		GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.VoiceCommand, int, error)
	}

	Patterns interface {
		CreatePattern(ctx context.Context, pattern entity.IntentPattern) error
		GetPatternByID(ctx context.Context, id string) (entity.IntentPattern, error)
		GetPatternsByLanguage(ctx context.Context, language string) ([]entity.IntentPattern, error)
		GetAllActivePatterns(ctx context.Context) ([]entity.IntentPattern, error)
		UpdatePattern(ctx context.Context, pattern entity.IntentPattern) error
		DeactivatePattern(ctx context.Context, id string) error
	}

	Preferences interface {
		UpsertPreference(ctx context.Context, pref entity.LanguagePreference) error
		GetPreferenceByUserID(ctx context.Context, userID string) (entity.LanguagePreference, error)
		CreateSwitchEvent(ctx context.Context, event entity.SwitchEvent) error
		GetSwitchHistory(ctx context.Context, userID string, limit int) ([]entity.SwitchEvent, error)
	}

	Commit   func() error
	Rollback func() error
}

type sessionRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type commandRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type patternRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type preferenceRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}
