package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pactify/internal/config"
	"pactify/internal/models"

	"github.com/redis/go-redis/v9"
)

// Cache is the narrow interface services consume. A nil-safe no-op
// implementation exists for tests.
type Cache interface {
	GetWallet(ctx context.Context, userID uint, currency string) (*models.WalletBalance, error)
	SetWallet(ctx context.Context, wallet *models.WalletBalance) error
	InvalidateWallet(ctx context.Context, userID uint, currency string) error
	ClaimKey(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error)
	Close() error
}

// RedisConfig holds redis connection configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NewRedisConfig builds a RedisConfig from the environment.
func NewRedisConfig() *RedisConfig {
	return &RedisConfig{
		Host:     config.GetEnv("REDIS_HOST", "localhost"),
		Port:     config.GetEnv("REDIS_PORT", "6379"),
		Password: config.GetEnv("REDIS_PASSWORD", ""),
		DB:       config.GetIntEnv("REDIS_DB", 0),
	}
}

type redisCache struct {
	client    *redis.Client
	walletTTL time.Duration
}

// NewRedisCache connects to redis and returns the Cache implementation.
func NewRedisCache(cfg *RedisConfig, walletTTL time.Duration) (Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Host + ":" + cfg.Port,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	if walletTTL == 0 {
		walletTTL = 5 * time.Minute
	}
	return &redisCache{client: client, walletTTL: walletTTL}, nil
}

func walletKey(userID uint, currency string) string {
	return fmt.Sprintf("wallet:%d:%s", userID, currency)
}

func (c *redisCache) GetWallet(ctx context.Context, userID uint, currency string) (*models.WalletBalance, error) {
	data, err := c.client.Get(ctx, walletKey(userID, currency)).Bytes()
	if err != nil {
		return nil, err
	}
	var wallet models.WalletBalance
	if err := json.Unmarshal(data, &wallet); err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (c *redisCache) SetWallet(ctx context.Context, wallet *models.WalletBalance) error {
	data, err := json.Marshal(wallet)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, walletKey(wallet.UserID, wallet.Currency), data, c.walletTTL).Err()
}

func (c *redisCache) InvalidateWallet(ctx context.Context, userID uint, currency string) error {
	return c.client.Del(ctx, walletKey(userID, currency)).Err()
}

// ClaimKey atomically claims a key with SETNX semantics. When the key is
// already held the existing value is returned so callers can resolve the
// original payout for a duplicate submission.
func (c *redisCache) ClaimKey(ctx context.Context, key, value string, ttl time.Duration) (bool, string, error) {
	ok, err := c.client.SetNX(ctx, key, value, ttl).Result()
	if err != nil {
		return false, "", err
	}
	if ok {
		return true, value, nil
	}
	existing, err := c.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return false, "", err
	}
	return false, existing, nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}

// NoopCache satisfies Cache without a backing store. Used in tests and when
// redis is unavailable; every lookup is a miss.
type NoopCache struct{}

func (NoopCache) GetWallet(context.Context, uint, string) (*models.WalletBalance, error) {
	return nil, redis.Nil
}
func (NoopCache) SetWallet(context.Context, *models.WalletBalance) error { return nil }
func (NoopCache) InvalidateWallet(context.Context, uint, string) error   { return nil }
func (NoopCache) ClaimKey(_ context.Context, _ string, value string, _ time.Duration) (bool, string, error) {
	return true, value, nil
}
func (NoopCache) Close() error { return nil }
