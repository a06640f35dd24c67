package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Blob store keys used by the engine. Each key only ever holds a complete
// snapshot written in one SET, so readers never observe a partial write.
const (
	KeyOfflineCache = "voice:offline_cache"
	KeyAnalytics    = "voice:analytics"
)

var ErrNotFound = errors.New("blob not found")

type IRedis interface {
	SaveBlob(ctx context.Context, key string, blob []byte, ttl time.Duration) error
	LoadBlob(ctx context.Context, key string) ([]byte, error)
	DeleteBlob(ctx context.Context, key string) error
}

type redisClient struct {
	client *redis.Client
}

func New(addr, password string, db int) IRedis {
	logrus.Info(fmt.Sprintf("Connecting to Redis at %s...", addr))

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		logrus.Error(fmt.Sprintf("Failed to connect to Redis: %v", err))
	} else {
		logrus.Info("Successfully connected to Redis")
	}

	return &redisClient{client: client}
}

func (r *redisClient) SaveBlob(ctx context.Context, key string, blob []byte, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, blob, ttl).Err(); err != nil {
		logrus.Error(fmt.Sprintf("Error saving blob %s: %v", key, err))
		return err
	}
	logrus.Debug(fmt.Sprintf("Saved blob %s (%d bytes)", key, len(blob)))
	return nil
}

func (r *redisClient) LoadBlob(ctx context.Context, key string) ([]byte, error) {
	val, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		logrus.Debug(fmt.Sprintf("Blob %s not found", key))
		return nil, ErrNotFound
	} else if err != nil {
		logrus.Error(fmt.Sprintf("Error loading blob %s: %v", key, err))
		return nil, err
	}
	return val, nil
}

func (r *redisClient) DeleteBlob(ctx context.Context, key string) error {
	result, err := r.client.Del(ctx, key).Result()
	if err != nil {
		logrus.Error(fmt.Sprintf("Error deleting blob %s: %v", key, err))
		return err
	}
	if result == 0 {
		logrus.Debug(fmt.Sprintf("Blob %s not found for deletion", key))
	}
	return nil
}
