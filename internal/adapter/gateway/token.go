package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	domainErrors "github.com/polkiloo/prisonmarket/internal/domain/errors"
)

// DefaultTokenTTL is used when the token endpoint omits expires_in.
const DefaultTokenTTL = 17560 * time.Second

const redisTokenKey = "prisonmarket:gateway:access_token"

// TokenStore keeps the gateway access token between calls.
type TokenStore interface {
	Get(ctx context.Context) (string, bool, error)
	Set(ctx context.Context, token string, ttl time.Duration) error
	Delete(ctx context.Context) error
}

// MemoryTokenStore is a process-wide token store.
type MemoryTokenStore struct {
	mu      sync.RWMutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewMemoryTokenStore creates an empty in-process store.
func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{now: time.Now}
}

func (s *MemoryTokenStore) Get(context.Context) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.token == "" || !s.now().Before(s.expires) {
		return "", false, nil
	}
	return s.token, true, nil
}

func (s *MemoryTokenStore) Set(_ context.Context, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	s.expires = s.now().Add(ttl)
	return nil
}

func (s *MemoryTokenStore) Delete(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.expires = time.Time{}
	return nil
}

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisTokenStore shares the token between service replicas.
type RedisTokenStore struct {
	client redisClient
	key    string
}

// NewRedisTokenStore stores the token under the default key.
func NewRedisTokenStore(client redisClient) *RedisTokenStore {
	return &RedisTokenStore{client: client, key: redisTokenKey}
}

func (s *RedisTokenStore) Get(ctx context.Context) (string, bool, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return token, token != "", nil
}

func (s *RedisTokenStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	return s.client.Set(ctx, s.key, token, ttl).Err()
}

func (s *RedisTokenStore) Delete(ctx context.Context) error {
	return s.client.Del(ctx, s.key).Err()
}

// Credentials for the password grant against the gateway token endpoint.
type Credentials struct {
	TokenURL  string
	BasicAuth string
	Username  string
	Password  string
}

// TokenCache returns a cached access token or exchanges credentials for a new one.
// Concurrent callers may refresh at the same time; the last write wins.
type TokenCache struct {
	creds      Credentials
	defaultTTL time.Duration
	httpClient *http.Client
	store      TokenStore
	logger     *slog.Logger
}

type tokenResponse struct {
	AccessToken string      `json:"access_token"`
	ExpiresIn   json.Number `json:"expires_in"`
}

// NewTokenCache validates the token endpoint and builds the cache.
func NewTokenCache(creds Credentials, defaultTTL time.Duration, store TokenStore, httpClient *http.Client, logger *slog.Logger) (*TokenCache, error) {
	parsed, err := url.Parse(creds.TokenURL)
	if err != nil {
		return nil, fmt.Errorf("parse token url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("token url must be absolute")
	}
	if defaultTTL <= 0 {
		defaultTTL = DefaultTokenTTL
	}
	return &TokenCache{
		creds:      creds,
		defaultTTL: defaultTTL,
		httpClient: httpClient,
		store:      store,
		logger:     logger,
	}, nil
}

// Token returns a usable bearer token.
func (c *TokenCache) Token(ctx context.Context) (string, error) {
	token, ok, err := c.store.Get(ctx)
	if err != nil {
		c.logger.Warn("token store read failed", slog.String("error", err.Error()))
	} else if ok {
		return token, nil
	}

	token, ttl, err := c.fetch(ctx)
	if err != nil {
		c.logger.Error("gateway token exchange failed", slog.String("error", err.Error()))
		return "", err
	}

	if err := c.store.Set(ctx, token, ttl); err != nil {
		c.logger.Warn("token store write failed", slog.String("error", err.Error()))
	}
	return token, nil
}

// Invalidate drops the cached token so the next call re-authenticates.
func (c *TokenCache) Invalidate(ctx context.Context) error {
	return c.store.Delete(ctx)
}

func (c *TokenCache) fetch(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", c.creds.Username)
	form.Set("password", c.creds.Password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.creds.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domainErrors.ErrAuth, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Basic "+c.creds.BasicAuth)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("%w: %v", domainErrors.ErrAuth, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", 0, fmt.Errorf("%w: read token response: %v", domainErrors.ErrAuth, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", 0, fmt.Errorf("%w: token endpoint responded %s", domainErrors.ErrAuth, resp.Status)
	}

	var data tokenResponse
	if err := json.Unmarshal(body, &data); err != nil {
		return "", 0, fmt.Errorf("%w: decode token response: %v", domainErrors.ErrAuth, err)
	}
	if data.AccessToken == "" {
		return "", 0, fmt.Errorf("%w: token response has no access_token", domainErrors.ErrAuth)
	}

	ttl := c.defaultTTL
	if seconds, err := data.ExpiresIn.Int64(); err == nil && seconds > 0 {
		ttl = time.Duration(seconds) * time.Second
	}
	return data.AccessToken, ttl, nil
}
