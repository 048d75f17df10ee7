package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/facturo/backend/internal/domain/ledger"
	"github.com/facturo/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "register:session:"

// RedisStore implements ledger.SessionStore on Redis. SETNX gives the
// set-if-absent guarantee for Open and the key TTL bounds the session
// lifetime, so a crashed operator's register closes itself.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisStore creates a session store with its own Redis client
func NewRedisStore(cfg RedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisStoreWithClient(client, defaultKeyPrefix, ttl), nil
}

// NewRedisStoreWithClient creates a store with an existing Redis client
func NewRedisStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisStore) key(tenantID int64) string {
	return fmt.Sprintf("%s%d", s.keyPrefix, tenantID)
}

// Open stores the session if no session exists for the tenant
func (s *RedisStore) Open(ctx context.Context, session ledger.RegisterSession) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode register session: %w", err)
	}

	set, err := s.client.SetNX(ctx, s.key(session.TenantID), payload, s.ttl).Result()
	if err != nil {
		return fmt.Errorf("failed to open register session: %w", err)
	}
	if !set {
		return shared.ErrRegisterAlreadyOpen
	}
	return nil
}

// Get returns the open session for the tenant, nil when closed or expired
func (s *RedisStore) Get(ctx context.Context, tenantID int64) (*ledger.RegisterSession, error) {
	payload, err := s.client.Get(ctx, s.key(tenantID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read register session: %w", err)
	}

	var session ledger.RegisterSession
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("failed to decode register session: %w", err)
	}
	return &session, nil
}

// Close removes the session
func (s *RedisStore) Close(ctx context.Context, tenantID int64) error {
	removed, err := s.client.Del(ctx, s.key(tenantID)).Result()
	if err != nil {
		return fmt.Errorf("failed to close register session: %w", err)
	}
	if removed == 0 {
		return shared.ErrRegisterNotOpen
	}
	return nil
}

// Shutdown closes the underlying Redis client
func (s *RedisStore) Shutdown() error {
	return s.client.Close()
}

// Ensure RedisStore implements ledger.SessionStore
var _ ledger.SessionStore = (*RedisStore)(nil)
