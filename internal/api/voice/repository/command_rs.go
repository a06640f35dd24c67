package voiceRepository

import (
	"KalaVaani/internal/entity"
	contextPkg "KalaVaani/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type VoiceCommandDB struct {
	ID         sql.NullString  `db:"id"`
	SessionID  sql.NullString  `db:"session_id"`
	UserID     sql.NullString  `db:"user_id"`
	Transcript sql.NullString  `db:"transcript"`
	Intent     sql.NullString  `db:"intent"`
	Confidence sql.NullFloat64 `db:"confidence"`
	Parameters sql.NullString  `db:"parameters"`
	Success    sql.NullBool    `db:"success"`
	Route      sql.NullString  `db:"route"`
	DurationMs sql.NullInt64   `db:"duration_ms"`
	ErrorKind  sql.NullString  `db:"error_kind"`
	AudioURL   sql.NullString  `db:"audio_url"`
	CreatedAt  time.Time       `db:"created_at"`
}

func (r *commandRepository) CreateCommand(ctx context.Context, cmd entity.VoiceCommand) error {
	requestID := contextPkg.GetRequestID(ctx)

	parametersJSON, err := json.Marshal(cmd.Parameters)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal command parameters")
		return err
	}

	argsKV := map[string]interface{}{
		"id":          cmd.ID,
		"session_id":  cmd.SessionID,
		"user_id":     cmd.UserID,
		"transcript":  cmd.Transcript,
		"intent":      cmd.Intent,
		"confidence":  cmd.Confidence,
		"parameters":  string(parametersJSON),
		"success":     cmd.Success,
		"route":       cmd.Route,
		"duration_ms": cmd.DurationMs,
		"error_kind":  cmd.ErrorKind,
		"audio_url":   cmd.AudioURL,
		"created_at":  cmd.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateCommand, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreateCommand named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating voice command")
		return err
	}

	return nil
}

func (r *commandRepository) GetCommandsBySessionID(ctx context.Context, sessionID string, limit, offset int) ([]entity.VoiceCommand, int, error) {
	return r.listCommands(ctx, queryCountCommandsBySessionID, queryGetCommandsBySessionID,
		map[string]interface{}{"session_id": sessionID}, limit, offset)
}

func (r *commandRepository) GetCommandsByUserID(ctx context.Context, userID string, limit, offset int) ([]entity.VoiceCommand, int, error) {
	return r.listCommands(ctx, queryCountCommandsByUserID, queryGetCommandsByUserID,
		map[string]interface{}{"user_id": userID}, limit, offset)
}

func (r *commandRepository) listCommands(ctx context.Context, countQueryTmpl, listQueryTmpl string, filter map[string]interface{}, limit, offset int) ([]entity.VoiceCommand, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var commandsList []VoiceCommandDB
	var total int

	countQuery, countArgs, err := sqlx.Named(countQueryTmpl, filter)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountCommands named query preparation err")
		return nil, 0, err
	}

	countQuery = r.q.Rebind(countQuery)

	if err := r.q.QueryRowxContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountCommands execution err")
		return nil, 0, err
	}

	argsKV := make(map[string]interface{}, len(filter)+2)
	for k, v := range filter {
		argsKV[k] = v
	}
	argsKV["limit"] = limit
	argsKV["offset"] = offset

	query, args, err := sqlx.Named(listQueryTmpl, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommands named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &commandsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetCommands execution err")
		return nil, 0, err
	}

	var commands []entity.VoiceCommand
	for _, cmdDB := range commandsList {
		commands = append(commands, r.makeVoiceCommand(cmdDB))
	}

	return commands, total, nil
}

func (r *commandRepository) makeVoiceCommand(cmdDB VoiceCommandDB) entity.VoiceCommand {
	var parameters map[string]string
	if cmdDB.Parameters.Valid && cmdDB.Parameters.String != "" {
		json.Unmarshal([]byte(cmdDB.Parameters.String), &parameters)
	}

	return entity.VoiceCommand{
		ID:         cmdDB.ID.String,
		SessionID:  cmdDB.SessionID.String,
		UserID:     cmdDB.UserID.String,
		Transcript: cmdDB.Transcript.String,
		Intent:     cmdDB.Intent.String,
		Confidence: cmdDB.Confidence.Float64,
		Parameters: parameters,
		Success:    cmdDB.Success.Bool,
		Route:      cmdDB.Route.String,
		DurationMs: cmdDB.DurationMs.Int64,
		ErrorKind:  cmdDB.ErrorKind.String,
		AudioURL:   cmdDB.AudioURL.String,
		CreatedAt:  cmdDB.CreatedAt,
	}
}
