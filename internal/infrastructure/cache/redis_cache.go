package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/pos-inventario-api/internal/application/analytics"
	"github.com/jhoicas/pos-inventario-api/internal/application/dto"
)

var _ analytics.KPICache = (*RedisKPICache)(nil)

// RedisKPICache guarda los KPIs serializados en JSON con TTL.
type RedisKPICache struct {
	client *redis.Client
}

// NewRedisKPICache construye el cliente; no abre conexión hasta el primer comando.
func NewRedisKPICache(addr, password string, db int) *RedisKPICache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisKPICache{client: client}
}

func (c *RedisKPICache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisKPICache) Close() error {
	return c.client.Close()
}

func (c *RedisKPICache) GetKPIs(ctx context.Context, key string) (*dto.DashboardKPIsDTO, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var kpis dto.DashboardKPIsDTO
	if err := json.Unmarshal(val, &kpis); err != nil {
		return nil, false, err
	}
	return &kpis, true, nil
}

func (c *RedisKPICache) SetKPIs(ctx context.Context, key string, value *dto.DashboardKPIsDTO, ttl time.Duration) error {
	if value == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, ttl).Err()
}

// DeleteKPIs borra con SCAN + DEL las claves del prefijo.
func (c *RedisKPICache) DeleteKPIs(ctx context.Context, prefix string) error {
	var keys []string
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}
