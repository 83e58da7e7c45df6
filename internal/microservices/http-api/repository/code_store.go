package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// CodePurpose separates the one-time code namespaces kept per email.
type CodePurpose string

const (
	PurposeVerification  CodePurpose = "verification"
	PurposePasswordReset CodePurpose = "password_reset"
)

var ErrCodeNotFound = errors.New("code not found or expired")

// CodeStore keeps at most one live code per (purpose, email). Expiry is left to Redis.
type CodeStore interface {
	Save(ctx context.Context, purpose CodePurpose, email, value string, ttl time.Duration) error
	Get(ctx context.Context, purpose CodePurpose, email string) (string, error)
	Delete(ctx context.Context, purpose CodePurpose, email string) error
}

type redisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) CodeStore {
	return &redisCodeStore{client: client}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return rdb, nil
}

func codeKey(purpose CodePurpose, email string) string {
	return fmt.Sprintf("%s:email:%s", purpose, email)
}

// Save replaces any previous code for the email.
func (s *redisCodeStore) Save(ctx context.Context, purpose CodePurpose, email, value string, ttl time.Duration) error {
	key := codeKey(purpose, email)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Set(ctx, key, value, ttl)
		return nil
	})
	return err
}

func (s *redisCodeStore) Get(ctx context.Context, purpose CodePurpose, email string) (string, error) {
	val, err := s.client.Get(ctx, codeKey(purpose, email)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCodeNotFound
	}
	if err != nil {
		return "", err
	}
	return val, nil
}

func (s *redisCodeStore) Delete(ctx context.Context, purpose CodePurpose, email string) error {
	return s.client.Del(ctx, codeKey(purpose, email)).Err()
}
