package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	apperrors "github.com/Lalithx4/agroai/pkg/errors"
	"github.com/Lalithx4/agroai/pkg/util"
)

// entry is the envelope written for every key. A zero TTL means the entry
// never expires.
type entry struct {
	Value     json.RawMessage `json:"value"`
	WrittenAt time.Time       `json:"writtenAt"`
	TTLMillis int64           `json:"ttlMs,omitempty"`
}

func (e entry) expired(now time.Time) bool {
	if e.TTLMillis <= 0 {
		return false
	}
	return now.Sub(e.WrittenAt) >= time.Duration(e.TTLMillis)*time.Millisecond
}

// KV layers TTL-aware, namespaced, JSON-typed access on top of a raw Store.
// Expired entries are purged lazily on the next read of the same key; there
// is no background sweeper.
type KV struct {
	store     Store
	namespace string
	logger    *slog.Logger
	now       func() time.Time
	recovery  func(ctx context.Context) bool
}

// NewKV constructs the TTL-aware key/value layer.
func NewKV(store Store, namespace string, logger *slog.Logger) *KV {
	return &KV{
		store:     store,
		namespace: namespace,
		logger:    logger.With("component", "cache.kv"),
		now:       util.NowUTC,
	}
}

// SetFullRecovery registers the eviction routine invoked when a write hits
// storage exhaustion. The routine reports whether a retry is worthwhile.
func (kv *KV) SetFullRecovery(fn func(ctx context.Context) bool) {
	kv.recovery = fn
}

// Set serializes value inside the TTL envelope and overwrites any existing
// entry for key. ttl <= 0 stores the entry permanently.
func (kv *KV) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	err := kv.set(ctx, key, value, ttl)
	if errors.Is(err, ErrStoreFull) && kv.recovery != nil && kv.recovery(ctx) {
		kv.logger.Warn("storage full, retrying write after eviction", "key", key)
		err = kv.set(ctx, key, value, ttl)
	}
	if errors.Is(err, ErrStoreFull) {
		return apperrors.Wrap(apperrors.CodeStorageFull, "persistent store is full", err)
	}
	return err
}

// set writes the envelope without entering the full-store recovery path, so
// the recovery routine itself can persist the trimmed history safely.
func (kv *KV) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "value is not serializable", err)
	}
	env := entry{Value: raw, WrittenAt: kv.now()}
	if ttl > 0 {
		env.TTLMillis = ttl.Milliseconds()
	}
	encoded, err := json.Marshal(env)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "entry is not serializable", err)
	}
	return kv.store.Set(ctx, kv.qualified(key), encoded)
}

// Get decodes the entry for key into out. It reports a miss when the key is
// absent, expired, or holds malformed data; expired and corrupt entries are
// removed as a side effect. Only driver faults surface as errors.
func (kv *KV) Get(ctx context.Context, key string, out any) (bool, error) {
	raw, ok, err := kv.store.Get(ctx, kv.qualified(key))
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	var env entry
	if err := json.Unmarshal(raw, &env); err != nil {
		kv.logger.Warn("dropping malformed cache entry", "key", key, "error", err)
		_ = kv.store.Delete(ctx, kv.qualified(key))
		return false, nil
	}
	if env.expired(kv.now()) {
		_ = kv.store.Delete(ctx, kv.qualified(key))
		return false, nil
	}
	if out == nil {
		return true, nil
	}
	if err := json.Unmarshal(env.Value, out); err != nil {
		kv.logger.Warn("dropping cache entry with malformed value", "key", key, "error", err)
		_ = kv.store.Delete(ctx, kv.qualified(key))
		return false, nil
	}
	return true, nil
}

// Remove deletes a key. Removing an absent key is not an error.
func (kv *KV) Remove(ctx context.Context, key string) error {
	return kv.store.Delete(ctx, kv.qualified(key))
}

// ClearNamespace removes every key under the application namespace and
// nothing else.
func (kv *KV) ClearNamespace(ctx context.Context) error {
	keys, err := kv.store.Keys(ctx, kv.namespace)
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := kv.store.Delete(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

func (kv *KV) qualified(key string) string {
	return kv.namespace + key
}
