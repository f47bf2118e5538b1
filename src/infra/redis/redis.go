package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisClient struct {
	client     redis.UniversalClient
	defaultTTL time.Duration
	prefix     string
}

// NewRedisClient aceita um endereço (standalone) ou vários separados por vírgula (cluster).
func NewRedisClient(addrs string, poolSize int, defaultTTL time.Duration) *RedisClient {
	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: strings.Split(addrs, ","),

		PoolSize:     poolSize,
		MinIdleConns: 2,

		MaxRedirects: 3,

		// Cache de perfil: melhor falhar rápido e ir ao Postgres
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,

		MaxRetries:      2,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 250 * time.Millisecond,
	})

	return &RedisClient{
		client:     client,
		defaultTTL: defaultTTL,
	}
}

// WithPrefix devolve uma cópia que prefixa todas as chaves (usado nos testes para isolar dados).
func (rc *RedisClient) WithPrefix(prefix string) *RedisClient {
	clone := *rc
	clone.prefix = prefix
	return &clone
}

func (rc *RedisClient) key(key string) string {
	return rc.prefix + key
}

func (rc *RedisClient) SetKey(ctx context.Context, key string, value string) error {
	fields := map[string]interface{}{
		"data":      value,
		"cached_at": time.Now().Unix(),
	}

	pipe := rc.client.TxPipeline()
	pipe.HSet(ctx, rc.key(key), fields)
	pipe.Expire(ctx, rc.key(key), rc.defaultTTL)

	_, err := pipe.Exec(ctx)
	return err
}

func (rc *RedisClient) GetKey(ctx context.Context, key string) (string, bool, error) {
	result := rc.client.HGet(ctx, rc.key(key), "data")

	// Cache miss
	if result.Err() == redis.Nil {
		return "", false, nil
	}
	if result.Err() != nil {
		return "", false, result.Err()
	}

	return result.Val(), true, nil
}

// Invalidate apaga chave por chave; em cluster um DEL com várias chaves pode cruzar slots.
func (rc *RedisClient) Invalidate(ctx context.Context, keys []string) error {
	var errors []string

	for _, key := range keys {
		if err := rc.client.Del(ctx, rc.key(key)).Err(); err != nil {
			errors = append(errors, fmt.Sprintf("key %s: %v", key, err))
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("invalidation errors: %s", strings.Join(errors, "; "))
	}

	return nil
}

// FlushByPrefix remove todas as chaves do prefixo atual. Sem prefixo não faz nada.
func (rc *RedisClient) FlushByPrefix(ctx context.Context) error {
	if rc.prefix == "" {
		return nil
	}

	iter := rc.client.Scan(ctx, 0, rc.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := rc.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (rc *RedisClient) HealthCheck(ctx context.Context) error {
	return rc.client.Ping(ctx).Err()
}

func (rc *RedisClient) Close() error {
	return rc.client.Close()
}
