package repositories

import (
	"context"
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// ErrCacheMiss - ключа нет в кеше или срок его жизни истёк.
var ErrCacheMiss = errors.New("ключ не найден в кеше")

type CacheRepositoryInterface interface {
	Set(ctx context.Context, key string, value string, expiration time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key ...string) error
}

// MemoryCacheRepository - кеш в памяти процесса, используется без REDIS_ADDRESS.
type MemoryCacheRepository struct {
	c *gocache.Cache
}

func NewMemoryCacheRepository(defaultTTL time.Duration) CacheRepositoryInterface {
	return &MemoryCacheRepository{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *MemoryCacheRepository) Get(ctx context.Context, key string) (string, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return "", ErrCacheMiss
	}
	s, _ := v.(string)
	return s, nil
}

func (m *MemoryCacheRepository) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	m.c.Set(key, value, expiration)
	return nil
}

func (m *MemoryCacheRepository) Del(ctx context.Context, keys ...string) error {
	for _, k := range keys {
		m.c.Delete(k)
	}
	return nil
}
