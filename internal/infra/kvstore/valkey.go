package kvstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/valkey-io/valkey-go"

	"github.com/Lalithx4/agroai/internal/domain/cache"
)

// ValkeyStore implements cache.Store on a Valkey-compatible database, for
// deployments that already run one with persistence enabled.
type ValkeyStore struct {
	client valkey.Client
}

// NewValkeyStore wraps an existing client.
func NewValkeyStore(client valkey.Client) *ValkeyStore {
	return &ValkeyStore{client: client}
}

// Get implements cache.Store.
func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := s.client.Do(ctx, s.client.B().Get().Key(key).Build())
	payload, err := resp.ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read key %q: %w", key, err)
	}
	return []byte(payload), true, nil
}

// Set overwrites the value for key. Expiry is handled by the cache layer,
// so entries are stored without a server-side TTL.
func (s *ValkeyStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.client.Do(ctx, s.client.B().Set().Key(key).Value(string(value)).Build()).Error()
	if err != nil {
		if strings.Contains(err.Error(), "OOM") {
			return fmt.Errorf("%w: %v", cache.ErrStoreFull, err)
		}
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// Delete removes a key; absent keys are not an error.
func (s *ValkeyStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Del().Key(key).Build()).Error(); err != nil {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// Keys scans the keyspace for entries with the given prefix.
func (s *ValkeyStore) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		resp := s.client.Do(ctx, s.client.B().Scan().Cursor(cursor).Match(prefix+"*").Count(100).Build())
		entry, err := resp.AsScanEntry()
		if err != nil {
			return nil, fmt.Errorf("scan keys: %w", err)
		}
		keys = append(keys, entry.Elements...)
		cursor = entry.Cursor
		if cursor == 0 {
			return keys, nil
		}
	}
}

var _ cache.Store = (*ValkeyStore)(nil)
