package voiceRepository

import (
	"KalaVaani/internal/api/voice"
	"KalaVaani/internal/entity"
	contextPkg "KalaVaani/pkg/context"
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type LanguagePreferenceDB struct {
	UserID              sql.NullString `db:"user_id"`
	PrimaryLanguage     sql.NullString `db:"primary_language"`
	AutoSwitch          sql.NullBool   `db:"auto_switch"`
	RequireConfirmation sql.NullBool   `db:"require_confirmation"`
	UpdatedAt           time.Time      `db:"updated_at"`
}

type SwitchEventDB struct {
	UserID       sql.NullString  `db:"user_id"`
	FromLanguage sql.NullString  `db:"from_language"`
	ToLanguage   sql.NullString  `db:"to_language"`
	Trigger      sql.NullString  `db:"trigger"`
	Confidence   sql.NullFloat64 `db:"confidence"`
	SwitchedAt   time.Time       `db:"switched_at"`
}

func (r *preferenceRepository) UpsertPreference(ctx context.Context, pref entity.LanguagePreference) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"user_id":              pref.UserID,
		"primary_language":     pref.PrimaryLanguage,
		"auto_switch":          pref.AutoSwitch,
		"require_confirmation": pref.RequireConfirmation,
		"updated_at":           pref.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryUpsertPreference, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpsertPreference named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when upserting language preference")
		return err
	}

	return nil
}

func (r *preferenceRepository) GetPreferenceByUserID(ctx context.Context, userID string) (entity.LanguagePreference, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var prefDB LanguagePreferenceDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryGetPreferenceByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPreferenceByUserID named query preparation err")
		return entity.LanguagePreference{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&prefDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
			}).Debug("GetPreferenceByUserID no preference found")
			return entity.LanguagePreference{}, voice.ErrPreferenceNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPreferenceByUserID execution err")
		return entity.LanguagePreference{}, err
	}

	return entity.LanguagePreference{
		UserID:              prefDB.UserID.String,
		PrimaryLanguage:     prefDB.PrimaryLanguage.String,
		AutoSwitch:          prefDB.AutoSwitch.Bool,
		RequireConfirmation: prefDB.RequireConfirmation.Bool,
		UpdatedAt:           prefDB.UpdatedAt,
	}, nil
}

func (r *preferenceRepository) CreateSwitchEvent(ctx context.Context, event entity.SwitchEvent) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"user_id":       event.UserID,
		"from_language": event.FromLanguage,
		"to_language":   event.ToLanguage,
		"trigger":       string(event.Trigger),
		"confidence":    event.Confidence,
		"switched_at":   event.SwitchedAt,
	}

	query, args, err := sqlx.Named(queryCreateSwitchEvent, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateSwitchEvent named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating switch event")
		return err
	}

	return nil
}

func (r *preferenceRepository) GetSwitchHistory(ctx context.Context, userID string, limit int) ([]entity.SwitchEvent, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var eventsList []SwitchEventDB

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
	}

	query, args, err := sqlx.Named(queryGetSwitchHistory, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSwitchHistory named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &eventsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSwitchHistory execution err")
		return nil, err
	}

	var events []entity.SwitchEvent
	for _, eventDB := range eventsList {
		events = append(events, entity.SwitchEvent{
			UserID:       eventDB.UserID.String,
			FromLanguage: eventDB.FromLanguage.String,
			ToLanguage:   eventDB.ToLanguage.String,
			Trigger:      entity.SwitchTrigger(eventDB.Trigger.String),
			Confidence:   eventDB.Confidence.Float64,
			SwitchedAt:   eventDB.SwitchedAt,
		})
	}

	return events, nil
}
