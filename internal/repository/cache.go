package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/config"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-checkout-service/internal/models"
)

const (
	sessionKeyPrefix    = "checkout_session:"
	submitLockKeyPrefix = "checkout_submit:"
	defaultSessionTTL   = 2 * time.Hour
)

// RedisSessionStore implements SessionStore using Redis.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *logging.LoggerV2
}

// NewRedisClient opens a client for the configured Redis instance.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// NewRedisSessionStore creates a session store on top of client.
func NewRedisSessionStore(client *redis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl == 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		logger: logging.NewLoggerV2("session-store"),
	}
}

// Get loads a session.
func (s *RedisSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	data, err := s.client.Get(ctx, sessionKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		s.logger.Debug("Session miss", logging.Fields{"session_id": id})
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		s.logger.Error("Session get error", logging.Fields{
			"session_id": id,
			"error":      err.Error(),
		})
		return nil, err
	}

	var session models.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &session, nil
}

// Save stores a session and refreshes its TTL.
func (s *RedisSessionStore) Save(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if err := s.client.Set(ctx, sessionKeyPrefix+session.ID, data, s.ttl).Err(); err != nil {
		s.logger.Error("Session set error", logging.Fields{
			"session_id": session.ID,
			"error":      err.Error(),
		})
		return err
	}

	s.logger.Debug("Session saved", logging.Fields{
		"session_id": session.ID,
		"ttl":        s.ttl.String(),
	})
	return nil
}

// Delete removes a session. Its submit lock, if any, expires on its own.
func (s *RedisSessionStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, sessionKeyPrefix+id).Err(); err != nil {
		s.logger.Error("Session delete error", logging.Fields{
			"session_id": id,
			"error":      err.Error(),
		})
		return err
	}
	return nil
}

// AcquireSubmitLock takes the submission lock with SETNX.
func (s *RedisSessionStore) AcquireSubmitLock(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, submitLockKeyPrefix+id, time.Now().UTC().Format(time.RFC3339Nano), ttl).Result()
	if err != nil {
		return false, err
	}
	if !ok {
		s.logger.Warn("Submit lock already held", logging.Fields{"session_id": id})
	}
	return ok, nil
}

// ReleaseSubmitLock drops the submission lock.
func (s *RedisSessionStore) ReleaseSubmitLock(ctx context.Context, id string) error {
	return s.client.Del(ctx, submitLockKeyPrefix+id).Err()
}

// Ping checks connectivity for readiness probes.
func (s *RedisSessionStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
