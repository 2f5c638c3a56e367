package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jhoicas/erp-api/internal/application/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryIdempotencyStore_Ciclo(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryIdempotencyStore()

	ok, err := s.Reserve(ctx, "c1:k1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.Reserve(ctx, "c1:k1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, "c1:k1")
	assert.ErrorIs(t, err, ports.ErrKeyInFlight)

	require.NoError(t, s.Save(ctx, "c1:k1", ports.StoredResponse{Status: 201, Body: []byte(`{"id":"x"}`)}, time.Minute))
	resp, err := s.Get(ctx, "c1:k1")
	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 201, resp.Status)
	assert.JSONEq(t, `{"id":"x"}`, string(resp.Body))

	require.NoError(t, s.Release(ctx, "c1:k1"))
	resp, err = s.Get(ctx, "c1:k1")
	require.NoError(t, err)
	assert.Nil(t, resp)
}

func TestInMemoryIdempotencyStore_Vencimiento(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryIdempotencyStore()
	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return clock }

	ok, _ := s.Reserve(ctx, "k", time.Minute)
	require.True(t, ok)
	assert.Equal(t, 1, s.Size())

	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, 0, s.Size())
	ok, _ = s.Reserve(ctx, "k", time.Minute)
	assert.True(t, ok)
}

func TestInMemoryIdempotencyStore_ReservaConcurrente(t *testing.T) {
	ctx := context.Background()
	s := NewInMemoryIdempotencyStore()
	var wins int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := s.Reserve(ctx, "misma", time.Minute); ok {
				atomic.AddInt32(&wins, 1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), wins)
}
