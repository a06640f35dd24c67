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

type VoiceSessionDB struct {
	ID                  sql.NullString  `db:"id"`
	UserID              sql.NullString  `db:"user_id"`
	Language            sql.NullString  `db:"language"`
	StartedAt           time.Time       `db:"started_at"`
	EndedAt             sql.NullTime    `db:"ended_at"`
	TotalCommands       sql.NullInt64   `db:"total_commands"`
	SuccessfulCommands  sql.NullInt64   `db:"successful_commands"`
	SuccessRate         sql.NullFloat64 `db:"success_rate"`
	AvgConfidence       sql.NullFloat64 `db:"avg_confidence"`
	PendingConfirmation sql.NullBool    `db:"pending_confirmation"`
	PendingIntent       sql.NullString  `db:"pending_intent"`
	PendingRoute        sql.NullString  `db:"pending_route"`
	LastActivity        time.Time       `db:"last_activity"`
}

func (r *sessionRepository) CreateSession(ctx context.Context, session entity.VoiceSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":                   session.ID,
		"user_id":              session.UserID,
		"language":             session.Language,
		"started_at":           session.StartedAt,
		"ended_at":             session.EndedAt,
		"total_commands":       session.TotalCommands,
		"successful_commands":  session.SuccessfulCommands,
		"success_rate":         session.SuccessRate,
		"avg_confidence":       session.AverageConfidence,
		"pending_confirmation": session.PendingConfirmation,
		"pending_intent":       session.PendingIntent,
		"pending_route":        session.PendingRoute,
		"last_activity":        session.LastActivity,
	}

	query, args, err := sqlx.Named(queryCreateSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateSession named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating voice session")
		return err
	}

	return nil
}

func (r *sessionRepository) GetSessionByID(ctx context.Context, id string) (entity.VoiceSession, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var sessionDB VoiceSessionDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetSessionByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionByID named query preparation err")
		return entity.VoiceSession{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&sessionDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Debug("GetSessionByID no session found")
			return entity.VoiceSession{}, voice.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionByID execution err")
		return entity.VoiceSession{}, err
	}

	return r.makeVoiceSession(sessionDB), nil
}

func (r *sessionRepository) GetActiveSessionByUserID(ctx context.Context, userID string) (entity.VoiceSession, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var sessionDB VoiceSessionDB

	argsKV := map[string]interface{}{
		"user_id": userID,
	}

	query, args, err := sqlx.Named(queryGetActiveSessionByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveSessionByUserID named query preparation err")
		return entity.VoiceSession{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&sessionDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"user_id":    userID,
			}).Debug("GetActiveSessionByUserID no active session found")
			return entity.VoiceSession{}, voice.ErrSessionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetActiveSessionByUserID execution err")
		return entity.VoiceSession{}, err
	}

	return r.makeVoiceSession(sessionDB), nil
}

func (r *sessionRepository) UpdateSession(ctx context.Context, session entity.VoiceSession) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":                   session.ID,
		"language":             session.Language,
		"ended_at":             session.EndedAt,
		"total_commands":       session.TotalCommands,
		"successful_commands":  session.SuccessfulCommands,
		"success_rate":         session.SuccessRate,
		"avg_confidence":       session.AverageConfidence,
		"pending_confirmation": session.PendingConfirmation,
		"pending_intent":       session.PendingIntent,
		"pending_route":        session.PendingRoute,
		"last_activity":        session.LastActivity,
	}

	query, args, err := sqlx.Named(queryUpdateSession, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSession named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSession execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateSession rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         session.ID,
		}).Warn("UpdateSession no rows affected")
		return voice.ErrSessionNotFound
	}

	return nil
}

func (r *sessionRepository) GetSessionsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.VoiceSession, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var sessionsList []VoiceSessionDB
	var total int

	countArgsKV := map[string]interface{}{
		"user_id": userID,
	}

	countQuery, countArgs, err := sqlx.Named(queryCountSessionsByUserID, countArgsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountSessionsByUserID named query preparation err")
		return nil, 0, err
	}

	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountSessionsByUserID execution err")
		return nil, 0, err
	}

	argsKV := map[string]interface{}{
		"user_id": userID,
		"limit":   limit,
		"offset":  offset,
	}

	query, args, err := sqlx.Named(queryGetSessionsByUserID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionsByUserID named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &sessionsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetSessionsByUserID execution err")
		return nil, 0, err
	}

	var sessions []entity.VoiceSession
	for _, sessionDB := range sessionsList {
		sessions = append(sessions, r.makeVoiceSession(sessionDB))
	}

	return sessions, total, nil
}

func (r *sessionRepository) EndStaleSessions(ctx context.Context, cutoff time.Time) ([]entity.VoiceSession, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var sessionsList []VoiceSessionDB

	argsKV := map[string]interface{}{
		"ended_at": time.Now(),
		"cutoff":   cutoff,
	}

	query, args, err := sqlx.Named(queryEndStaleSessions, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("EndStaleSessions named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &sessionsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("EndStaleSessions execution err")
		return nil, err
	}

	var sessions []entity.VoiceSession
	for _, sessionDB := range sessionsList {
		sessions = append(sessions, r.makeVoiceSession(sessionDB))
	}

	if len(sessions) > 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"count":      len(sessions),
		}).Info("Ended stale voice sessions")
	}

	return sessions, nil
}

func (r *sessionRepository) makeVoiceSession(sessionDB VoiceSessionDB) entity.VoiceSession {
	var endedAt *time.Time
	if sessionDB.EndedAt.Valid {
		t := sessionDB.EndedAt.Time
		endedAt = &t
	}

	return entity.VoiceSession{
		ID:                  sessionDB.ID.String,
		UserID:              sessionDB.UserID.String,
		Language:            sessionDB.Language.String,
		StartedAt:           sessionDB.StartedAt,
		EndedAt:             endedAt,
		TotalCommands:       int(sessionDB.TotalCommands.Int64),
		SuccessfulCommands:  int(sessionDB.SuccessfulCommands.Int64),
		SuccessRate:         sessionDB.SuccessRate.Float64,
		AverageConfidence:   sessionDB.AvgConfidence.Float64,
		PendingConfirmation: sessionDB.PendingConfirmation.Bool,
		PendingIntent:       sessionDB.PendingIntent.String,
		PendingRoute:        sessionDB.PendingRoute.String,
		LastActivity:        sessionDB.LastActivity,
	}
}
