package controllers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRequestDeduplicator(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	d := NewRequestDeduplicator()
	d.now = func() time.Time { return now }

	assert.True(t, d.TryAcquire("create_invoice:cs_1", time.Minute))
	assert.False(t, d.TryAcquire("create_invoice:cs_1", time.Minute))
	assert.True(t, d.TryAcquire("create_invoice:cs_2", time.Minute))

	d.Release("create_invoice:cs_1")
	assert.True(t, d.TryAcquire("create_invoice:cs_1", time.Minute))

	now = now.Add(2 * time.Minute)
	assert.True(t, d.TryAcquire("create_invoice:cs_2", time.Minute), "истёкший ключ занимается заново")
}

func TestRequestDeduplicator_CleanupStopsOnCancel(t *testing.T) {
	d := NewRequestDeduplicator()
	d.TryAcquire("k", -time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Cleanup(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		_, ok := d.locks.Load("k")
		return !ok
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Cleanup не остановился")
	}
}
