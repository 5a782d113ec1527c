package controllers

import (
	"context"
	"sync"
	"time"
)

// RequestDeduplicator не даёт параллельно обработать два запроса с одним ключом.
// Повторы вебхука n8n по одной сессии Stripe приходят почти одновременно.
type RequestDeduplicator struct {
	locks sync.Map
	now   func() time.Time
}

func NewRequestDeduplicator() *RequestDeduplicator {
	return &RequestDeduplicator{now: time.Now}
}

// TryAcquire занимает ключ на ttl; false - ключ уже занят и не истёк.
func (d *RequestDeduplicator) TryAcquire(key string, ttl time.Duration) bool {
	now := d.now()
	expiry := now.Add(ttl)

	for {
		val, loaded := d.locks.LoadOrStore(key, expiry)
		if !loaded {
			return true
		}
		current := val.(time.Time)
		if now.Before(current) {
			return false
		}
		if d.locks.CompareAndSwap(key, current, expiry) {
			return true
		}
	}
}

func (d *RequestDeduplicator) Release(key string) {
	d.locks.Delete(key)
}

// Cleanup периодически удаляет истёкшие ключи до отмены контекста.
func (d *RequestDeduplicator) Cleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			now := d.now()
			d.locks.Range(func(key, value interface{}) bool {
				if now.After(value.(time.Time)) {
					d.locks.Delete(key)
				}
				return true
			})
		}
	}
}
