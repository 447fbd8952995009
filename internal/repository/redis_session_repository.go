package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pdf-study-aid/internal/domain"
)

const sessionKeyPrefix = "study:session:"

// RedisSessionRepository stores sessions as JSON values with a TTL.
type RedisSessionRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger domain.Logger
}

// NewRedisClient creates a Redis client for the session store.
func NewRedisClient(addr, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
}

// NewRedisSessionRepository creates a Redis-backed session store.
func NewRedisSessionRepository(client *redis.Client, ttl time.Duration, logger domain.Logger) *RedisSessionRepository {
	return &RedisSessionRepository{client: client, ttl: ttl, logger: logger}
}

// Ping checks the Redis connection.
func (r *RedisSessionRepository) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Save writes the session and resets its TTL.
func (r *RedisSessionRepository) Save(ctx context.Context, session *domain.StudySession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	if err := r.client.Set(ctx, sessionKey(session.ID), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	r.logger.Debug("Session saved", "session_id", session.ID, "bytes", len(data))
	return nil
}

// Get loads a session or returns domain.ErrSessionNotFound when the key is missing or expired.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*domain.StudySession, error) {
	data, err := r.client.Get(ctx, sessionKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session domain.StudySession
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// Delete removes the session key.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (r *RedisSessionRepository) Close() error {
	return r.client.Close()
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}
