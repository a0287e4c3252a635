package cache

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogNewestFirstEvictsOldest(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[string](kv, KeyScanHistory, NewestFirst, 50)
	ctx := context.Background()

	for i := 1; i <= 51; i++ {
		require.NoError(t, log.Append(ctx, fmt.Sprintf("scan-%d", i)))
	}

	items, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 50)
	require.Equal(t, "scan-51", items[0])
	require.Equal(t, "scan-2", items[49])
}

func TestLogOldestFirstEvictsFromHead(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[string](kv, KeyChatHistory, OldestFirst, 3)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, log.Append(ctx, fmt.Sprintf("msg-%d", i)))
	}

	items, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"msg-3", "msg-4", "msg-5"}, items)
}

func TestLogListLimit(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[int](kv, KeyScanHistory, NewestFirst, 10)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, log.Append(ctx, i))
	}

	items, err := log.List(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []int{5, 4}, items)
}

func TestLogListLimitOldestFirstKeepsRecentTail(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[int](kv, KeyChatHistory, OldestFirst, 10)
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, log.Append(ctx, i))
	}

	// The most recent entries sit at the tail of an oldest-first log.
	items, err := log.List(ctx, 2)
	require.NoError(t, err)
	require.Equal(t, []int{4, 5}, items)
}

func TestLogRemoveWhere(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[int](kv, KeyScanHistory, NewestFirst, 10)
	ctx := context.Background()

	for i := 1; i <= 6; i++ {
		require.NoError(t, log.Append(ctx, i))
	}
	require.NoError(t, log.RemoveWhere(ctx, func(v int) bool { return v%2 == 0 }))

	items, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []int{5, 3, 1}, items)
}

func TestLogReplaceReappliesBound(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[int](kv, KeyScanHistory, NewestFirst, 3)
	ctx := context.Background()

	require.NoError(t, log.Replace(ctx, []int{9, 8, 7, 6, 5}))

	items, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, []int{9, 8, 7}, items)
}

func TestLogClear(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[int](kv, KeyChatHistory, OldestFirst, 10)
	ctx := context.Background()

	require.NoError(t, log.Append(ctx, 1))
	require.NoError(t, log.Clear(ctx))

	items, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Empty(t, items)
}

func TestLogUnboundedKeepsEverything(t *testing.T) {
	kv := newTestKV(newStubStore())
	log := NewLog[int](kv, KeyPestSightings, NewestFirst, 0)
	ctx := context.Background()

	for i := 1; i <= 200; i++ {
		require.NoError(t, log.Append(ctx, i))
	}

	items, err := log.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 200)
}
