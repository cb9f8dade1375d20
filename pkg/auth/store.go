package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// ErrTokenNotFound indicates the store holds no token yet.
var ErrTokenNotFound = errors.New("no stored token")

// TokenStore persists OAuth2 tokens between processes. Get returns
// ErrTokenNotFound (possibly wrapped) when nothing has been stored.
type TokenStore interface {
	Get(ctx context.Context) (*oauth2.Token, error)
	Put(ctx context.Context, token *oauth2.Token) error
}

// FileStore persists the token as a JSON file, created with 0600
// permissions since it holds a refresh token.
type FileStore struct {
	Path string
}

// NewFileStore creates a file-backed token store at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Get reads the stored token.
func (s *FileStore) Get(_ context.Context) (*oauth2.Token, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrTokenNotFound, s.Path)
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse token file: %w", err)
	}
	return &token, nil
}

// Put writes the token, replacing any previous one.
func (s *FileStore) Put(_ context.Context, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := os.WriteFile(s.Path, data, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// RedisStore persists the token in Redis so multiple workers can share one
// authorization. Tokens are stored without TTL: the refresh token inside
// stays valid until revoked.
type RedisStore struct {
	redis *redis.Client
	key   string
}

// DefaultRedisKey is the key used when none is configured.
const DefaultRedisKey = "ga:auth:token"

// NewRedisStore creates a Redis-backed token store. An empty key selects
// DefaultRedisKey.
func NewRedisStore(redisClient *redis.Client, key string) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{
		redis: redisClient,
		key:   key,
	}
}

// Get reads the stored token.
func (s *RedisStore) Get(ctx context.Context) (*oauth2.Token, error) {
	data, err := s.redis.Get(ctx, s.key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("%w under %s", ErrTokenNotFound, s.key)
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parse stored token: %w", err)
	}
	return &token, nil
}

// Put writes the token, replacing any previous one.
func (s *RedisStore) Put(ctx context.Context, token *oauth2.Token) error {
	data, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}
	if err := s.redis.Set(ctx, s.key, data, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}
