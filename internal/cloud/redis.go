package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/saadjs/checkin-cli/internal/logger"
	"github.com/saadjs/checkin-cli/internal/model"
)

const redisKeyPrefix = "checkin:user_data:"

// RedisStore keeps each snapshot as a JSON string under one key per user.
type RedisStore struct {
	client *goredis.Client
	log    *logger.Logger
}

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisStore(ctx context.Context, opts RedisOptions, log *logger.Logger) (*RedisStore, error) {
	if strings.TrimSpace(opts.Addr) == "" {
		return nil, fmt.Errorf("redis address is required")
	}
	if log == nil {
		log = logger.Nop()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: 5 * time.Second,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{client: client, log: log.With("store", "redis")}, nil
}

func redisKey(userID string) string {
	return redisKeyPrefix + userID
}

func (s *RedisStore) Load(ctx context.Context, userID string) (*model.Snapshot, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user id is required")
	}
	raw, err := s.client.Get(ctx, redisKey(userID)).Bytes()
	if errors.Is(err, goredis.Nil) {
		s.log.Debug("no remote snapshot", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get user data: %w", err)
	}
	var snap model.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decode redis user data: %w", err)
	}
	snap.Normalize()
	return &snap, nil
}

func (s *RedisStore) Save(ctx context.Context, userID string, snap *model.Snapshot) error {
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	if snap == nil {
		return fmt.Errorf("snapshot is required")
	}
	copied := *snap
	copied.UpdatedAt = time.Now().UTC()
	payload, err := json.Marshal(copied)
	if err != nil {
		return fmt.Errorf("encode redis user data: %w", err)
	}
	if err := s.client.Set(ctx, redisKey(userID), payload, 0).Err(); err != nil {
		return fmt.Errorf("redis set user data: %w", err)
	}
	s.log.Debug("saved remote snapshot", "user_id", userID, "bytes", len(payload))
	return nil
}

// Delete removes a user's blob. Missing keys are not an error.
func (s *RedisStore) Delete(ctx context.Context, userID string) error {
	if err := s.client.Del(ctx, redisKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete user data: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
