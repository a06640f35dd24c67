package voiceRepository

import (
	"KalaVaani/internal/api/voice"
	"KalaVaani/internal/entity"
	contextPkg "KalaVaani/pkg/context"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
)

type IntentPatternDB struct {
	ID        sql.NullString  `db:"id"`
	Language  sql.NullString  `db:"language"`
	Intent    sql.NullString  `db:"intent"`
	Template  sql.NullString  `db:"template"`
	Variants  sql.NullString  `db:"variants"`
	Register  sql.NullString  `db:"register"`
	Weight    sql.NullFloat64 `db:"weight"`
	Route     sql.NullString  `db:"route"`
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

func (r *patternRepository) CreatePattern(ctx context.Context, pattern entity.IntentPattern) error {
	requestID := contextPkg.GetRequestID(ctx)

	variantsJSON, err := json.Marshal(pattern.Variants)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal pattern variants")
		return err
	}

	argsKV := map[string]interface{}{
		"id":         pattern.ID,
		"language":   pattern.Language,
		"intent":     pattern.Intent,
		"template":   pattern.Template,
		"variants":   string(variantsJSON),
		"register":   pattern.Register,
		"weight":     pattern.Weight,
		"route":      pattern.Route,
		"created_at": pattern.CreatedAt,
		"updated_at": pattern.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreatePattern, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CreatePattern named query preparation err")
		return err
	}
	query = r.q.Rebind(query)

	_, err = r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating intent pattern")
		return err
	}

	return nil
}

func (r *patternRepository) GetPatternByID(ctx context.Context, id string) (entity.IntentPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var patternDB IntentPatternDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryGetPatternByID, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPatternByID named query preparation err")
		return entity.IntentPattern{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&patternDB); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Debug("GetPatternByID no pattern found")
			return entity.IntentPattern{}, voice.ErrPatternNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPatternByID execution err")
		return entity.IntentPattern{}, err
	}

	return r.makeIntentPattern(patternDB), nil
}

func (r *patternRepository) GetPatternsByLanguage(ctx context.Context, language string) ([]entity.IntentPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var patternsList []IntentPatternDB

	argsKV := map[string]interface{}{
		"language": language,
	}

	query, args, err := sqlx.Named(queryGetPatternsByLanguage, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPatternsByLanguage named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &patternsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetPatternsByLanguage execution err")
		return nil, err
	}

	var patterns []entity.IntentPattern
	for _, patternDB := range patternsList {
		patterns = append(patterns, r.makeIntentPattern(patternDB))
	}

	return patterns, nil
}

func (r *patternRepository) GetAllActivePatterns(ctx context.Context) ([]entity.IntentPattern, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var patternsList []IntentPatternDB

	query := r.q.Rebind(queryGetAllActivePatterns)

	if err := r.q.SelectContext(ctx, &patternsList, query); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllActivePatterns execution err")
		return nil, err
	}

	var patterns []entity.IntentPattern
	for _, patternDB := range patternsList {
		patterns = append(patterns, r.makeIntentPattern(patternDB))
	}

	return patterns, nil
}

func (r *patternRepository) UpdatePattern(ctx context.Context, pattern entity.IntentPattern) error {
	requestID := contextPkg.GetRequestID(ctx)

	variantsJSON, err := json.Marshal(pattern.Variants)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to marshal pattern variants")
		return err
	}

	argsKV := map[string]interface{}{
		"id":         pattern.ID,
		"template":   pattern.Template,
		"variants":   string(variantsJSON),
		"register":   pattern.Register,
		"weight":     pattern.Weight,
		"route":      pattern.Route,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryUpdatePattern, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdatePattern named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdatePattern execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdatePattern rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         pattern.ID,
		}).Warn("UpdatePattern no rows affected")
		return voice.ErrPatternNotFound
	}

	return nil
}

func (r *patternRepository) DeactivatePattern(ctx context.Context, id string) error {
	requestID := contextPkg.GetRequestID(ctx)

	argsKV := map[string]interface{}{
		"id":         id,
		"updated_at": time.Now(),
	}

	query, args, err := sqlx.Named(queryDeactivatePattern, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeactivatePattern named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeactivatePattern execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeactivatePattern rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("DeactivatePattern no rows affected")
		return voice.ErrPatternNotFound
	}

	return nil
}

func (r *patternRepository) makeIntentPattern(patternDB IntentPatternDB) entity.IntentPattern {
	var variants []string
	if patternDB.Variants.Valid && patternDB.Variants.String != "" {
		json.Unmarshal([]byte(patternDB.Variants.String), &variants)
	}

	return entity.IntentPattern{
		ID:        patternDB.ID.String,
		Language:  patternDB.Language.String,
		Intent:    patternDB.Intent.String,
		Template:  patternDB.Template.String,
		Variants:  variants,
		Register:  patternDB.Register.String,
		Weight:    patternDB.Weight.Float64,
		Route:     patternDB.Route.String,
		CreatedAt: patternDB.CreatedAt,
		UpdatedAt: patternDB.UpdatedAt,
	}
}
