package cache

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// stubStore is a map-backed Store. The full switch rejects every write; the
// byte limit models a quota, rejecting writes that would exceed it.
type stubStore struct {
	mu        sync.Mutex
	data      map[string][]byte
	full      bool
	byteLimit int
}

func newStubStore() *stubStore {
	return &stubStore{data: make(map[string][]byte)}
}

func (s *stubStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[key]
	return v, ok, nil
}

func (s *stubStore) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.full {
		return ErrStoreFull
	}
	if s.byteLimit > 0 {
		total := len(value)
		for k, v := range s.data {
			if k != key {
				total += len(v)
			}
		}
		if total > s.byteLimit {
			return ErrStoreFull
		}
	}
	s.data[key] = value
	return nil
}

func (s *stubStore) usedBytes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, v := range s.data {
		total += len(v)
	}
	return total
}

func (s *stubStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, key)
	return nil
}

func (s *stubStore) Keys(_ context.Context, prefix string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestKV(store Store) *KV {
	return NewKV(store, "agroai_", newTestLogger())
}

func TestKVRoundTrip(t *testing.T) {
	kv := newTestKV(newStubStore())
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}
	require.NoError(t, kv.Set(ctx, "sample", payload{Name: "tomato", Count: 3}, 0))

	var got payload
	ok, err := kv.Get(ctx, "sample", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{Name: "tomato", Count: 3}, got)
}

func TestKVMissOnAbsentKey(t *testing.T) {
	kv := newTestKV(newStubStore())

	var out string
	ok, err := kv.Get(context.Background(), "nope", &out)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestKVEntryExpiresAtBoundary(t *testing.T) {
	store := newStubStore()
	kv := newTestKV(store)
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	require.NoError(t, kv.Set(ctx, "weather_17.39_78.49", "payload", 15*time.Minute))

	// One tick before the deadline the entry is still served.
	kv.now = func() time.Time { return base.Add(15*time.Minute - time.Millisecond) }
	var out string
	ok, err := kv.Get(ctx, "weather_17.39_78.49", &out)
	require.NoError(t, err)
	require.True(t, ok)

	// At exactly age == ttl the entry is gone and removed from the store.
	kv.now = func() time.Time { return base.Add(15 * time.Minute) }
	ok, err = kv.Get(ctx, "weather_17.39_78.49", &out)
	require.NoError(t, err)
	require.False(t, ok)

	keys, err := store.Keys(ctx, "agroai_")
	require.NoError(t, err)
	require.Empty(t, keys)
}

func TestKVPermanentEntryNeverExpires(t *testing.T) {
	kv := newTestKV(newStubStore())
	ctx := context.Background()

	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	kv.now = func() time.Time { return base }
	require.NoError(t, kv.Set(ctx, "settings", "keep", 0))

	kv.now = func() time.Time { return base.AddDate(1, 0, 0) }
	var out string
	ok, err := kv.Get(ctx, "settings", &out)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "keep", out)
}

func TestKVMalformedEntrySelfHeals(t *testing.T) {
	store := newStubStore()
	kv := newTestKV(store)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "agroai_broken", []byte("{not json")))

	var out string
	ok, err := kv.Get(ctx, "broken", &out)
	require.NoError(t, err)
	require.False(t, ok)

	_, present, err := store.Get(ctx, "agroai_broken")
	require.NoError(t, err)
	require.False(t, present)
}

func TestKVMalformedValueSelfHeals(t *testing.T) {
	store := newStubStore()
	kv := newTestKV(store)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "typed", "a string", 0))

	var out int
	ok, err := kv.Get(ctx, "typed", &out)
	require.NoError(t, err)
	require.False(t, ok)

	_, present, err := store.Get(ctx, "agroai_typed")
	require.NoError(t, err)
	require.False(t, present)
}

func TestKVStorageFullRunsRecoveryOnce(t *testing.T) {
	store := newStubStore()
	kv := newTestKV(store)
	ctx := context.Background()

	store.full = true
	calls := 0
	kv.SetFullRecovery(func(context.Context) bool {
		calls++
		store.full = false
		return true
	})

	require.NoError(t, kv.Set(ctx, "scan_history", "data", 0))
	require.Equal(t, 1, calls)

	var out string
	ok, err := kv.Get(ctx, "scan_history", &out)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestKVStorageFullSurfacesWhenRecoveryFails(t *testing.T) {
	store := newStubStore()
	kv := newTestKV(store)

	store.full = true
	kv.SetFullRecovery(func(context.Context) bool { return false })

	err := kv.Set(context.Background(), "scan_history", "data", 0)
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeStorageFull))
}

func TestKVClearNamespaceLeavesForeignKeys(t *testing.T) {
	store := newStubStore()
	kv := newTestKV(store)
	ctx := context.Background()

	require.NoError(t, kv.Set(ctx, "settings", "mine", 0))
	require.NoError(t, kv.Set(ctx, "scan_history", "mine too", 0))
	require.NoError(t, store.Set(ctx, "other_app_key", []byte(`{}`)))

	require.NoError(t, kv.ClearNamespace(ctx))

	keys, err := store.Keys(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"other_app_key"}, keys)
}
