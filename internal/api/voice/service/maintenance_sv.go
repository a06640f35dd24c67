package voiceService

import (
	"context"
	"errors"

	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"

	"KalaVaani/pkg/analytics"
	contextPkg "KalaVaani/pkg/context"
	"KalaVaani/pkg/offline"
	redisPkg "KalaVaani/pkg/redis"
)

// PersistState snapshots the offline cache and the analytics log into the
// blob store so a restart keeps learned commands and usage history.
func (s *voiceService) PersistState(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)

	offlineBlob, err := jsoniter.Marshal(s.offline.Snapshot())
	if err != nil {
		return err
	}
	if err := s.redis.SaveBlob(ctx, redisPkg.KeyOfflineCache, offlineBlob, s.config.StateTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to persist offline cache")
		return err
	}

	analyticsBlob, err := jsoniter.Marshal(s.recorder.Snapshot())
	if err != nil {
		return err
	}
	if err := s.redis.SaveBlob(ctx, redisPkg.KeyAnalytics, analyticsBlob, s.config.StateTTL); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to persist analytics log")
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"cached_entries": s.offline.Len(),
		"events":         s.recorder.Len(),
	}).Debug("Engine state persisted")
	return nil
}

// RestoreState loads the persisted snapshots back. Missing blobs are not an
// error; a fresh deployment simply starts from the seeded state.
func (s *voiceService) RestoreState(ctx context.Context) error {
	requestID := contextPkg.GetRequestID(ctx)

	offlineBlob, err := s.redis.LoadBlob(ctx, redisPkg.KeyOfflineCache)
	switch {
	case err == nil:
		var snap offline.Snapshot
		if err := jsoniter.Unmarshal(offlineBlob, &snap); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Discarding unreadable offline cache snapshot")
			_ = s.redis.DeleteBlob(ctx, redisPkg.KeyOfflineCache)
		} else {
			s.offline.Restore(snap)
		}
	case errors.Is(err, redisPkg.ErrNotFound):
	default:
		return err
	}

	analyticsBlob, err := s.redis.LoadBlob(ctx, redisPkg.KeyAnalytics)
	switch {
	case err == nil:
		var snap analytics.Snapshot
		if err := jsoniter.Unmarshal(analyticsBlob, &snap); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"error":      err.Error(),
			}).Warn("Discarding unreadable analytics snapshot")
			_ = s.redis.DeleteBlob(ctx, redisPkg.KeyAnalytics)
		} else {
			s.recorder.Restore(snap)
		}
	case errors.Is(err, redisPkg.ErrNotFound):
	default:
		return err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":     requestID,
		"cached_entries": s.offline.Len(),
		"events":         s.recorder.Len(),
	}).Info("Engine state restored")
	return nil
}
