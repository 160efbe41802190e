package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func countingHandler(calls *atomic.Int32, status int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		n := calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(`{"call":` + strconv.Itoa(int(n)) + `}`))
	})
}

func post(h http.Handler, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
	if key != "" {
		req.Header.Set(DefaultIdempotencyHeader, key)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisIdempotencyStore(client, "tms:idem:", ttl), mr
}

func stores(t *testing.T) map[string]IdempotencyStore {
	mem := NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(mem.Stop)
	rs, _ := newRedisStore(t, time.Hour)
	return map[string]IdempotencyStore{"memory": mem, "redis": rs}
}

func TestIdempotency_ReplaysSuccess(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(store, "", discard())(countingHandler(&calls, http.StatusCreated))

			first := post(h, "/booking", "k1")
			second := post(h, "/booking", "k1")

			assert.Equal(t, http.StatusCreated, second.Code)
			assert.Equal(t, first.Body.String(), second.Body.String())
			assert.Equal(t, "application/json", second.Header().Get("Content-Type"))
			assert.Equal(t, int32(1), calls.Load())

			post(h, "/bid", "k1")
			post(h, "/booking", "")
			assert.Equal(t, int32(3), calls.Load())
		})
	}
}

func TestIdempotency_FailuresAreNotCached(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var calls atomic.Int32
			h := Idempotency(store, "", discard())(countingHandler(&calls, http.StatusConflict))

			post(h, "/booking", "k2")
			post(h, "/booking", "k2")
			assert.Equal(t, int32(2), calls.Load())
		})
	}
}

func TestRedisIdempotencyStore_Expiry(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", &CachedResponse{StatusCode: http.StatusCreated, Body: []byte(`{}`)}))
	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, http.StatusCreated, got.StatusCode)

	mr.FastForward(2 * time.Minute)
	_, found, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestIdempotency_StoreOutageServesRequest(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	mr.Close()

	var calls atomic.Int32
	h := Idempotency(store, "", discard())(countingHandler(&calls, http.StatusCreated))

	assert.Equal(t, http.StatusCreated, post(h, "/booking", "k3").Code)
	assert.Equal(t, http.StatusCreated, post(h, "/booking", "k3").Code)
	assert.Equal(t, int32(2), calls.Load())
}
