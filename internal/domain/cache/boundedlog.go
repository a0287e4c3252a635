package cache

import "context"

// Order controls which end of a bounded log receives new items.
type Order int

const (
	// NewestFirst inserts at the head and evicts from the tail.
	NewestFirst Order = iota
	// OldestFirst inserts at the tail and evicts from the head.
	OldestFirst
)

// Log is an ordered, capacity-bounded sequence stored as one composite value
// under a single key. Eviction past capacity is silent; the read-modify-write
// cycle is last-writer-wins, acceptable for this single-client workload.
type Log[T any] struct {
	kv       *KV
	key      string
	order    Order
	capacity int
}

// NewLog binds a bounded log to a logical key. capacity <= 0 means unbounded.
func NewLog[T any](kv *KV, key string, order Order, capacity int) *Log[T] {
	return &Log[T]{kv: kv, key: key, order: order, capacity: capacity}
}

// Append inserts item per the configured order, truncates from the opposite
// end until the sequence fits the capacity, and writes the sequence back as
// one permanent Set.
func (l *Log[T]) Append(ctx context.Context, item T) error {
	items, err := l.load(ctx)
	if err != nil {
		return err
	}
	if l.order == NewestFirst {
		items = append([]T{item}, items...)
	} else {
		items = append(items, item)
	}
	if l.capacity > 0 && len(items) > l.capacity {
		if l.order == NewestFirst {
			items = items[:l.capacity]
		} else {
			items = items[len(items)-l.capacity:]
		}
	}
	return l.kv.Set(ctx, l.key, items, 0)
}

// List returns up to limit items in stored order; limit <= 0 returns the
// full sequence. A positive limit always keeps the most recent items: the
// head of a newest-first log, the tail of an oldest-first one.
func (l *Log[T]) List(ctx context.Context, limit int) ([]T, error) {
	items, err := l.load(ctx)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(items) > limit {
		if l.order == NewestFirst {
			items = items[:limit]
		} else {
			items = items[len(items)-limit:]
		}
	}
	return items, nil
}

// RemoveWhere filters out every item matching the predicate and writes back
// the remainder.
func (l *Log[T]) RemoveWhere(ctx context.Context, match func(T) bool) error {
	items, err := l.load(ctx)
	if err != nil {
		return err
	}
	kept := items[:0]
	for _, item := range items {
		if !match(item) {
			kept = append(kept, item)
		}
	}
	return l.kv.Set(ctx, l.key, kept, 0)
}

// Replace overwrites the stored sequence, re-applying the capacity bound.
func (l *Log[T]) Replace(ctx context.Context, items []T) error {
	if l.capacity > 0 && len(items) > l.capacity {
		if l.order == NewestFirst {
			items = items[:l.capacity]
		} else {
			items = items[len(items)-l.capacity:]
		}
	}
	return l.kv.Set(ctx, l.key, items, 0)
}

// Clear writes an empty sequence.
func (l *Log[T]) Clear(ctx context.Context) error {
	return l.kv.Set(ctx, l.key, []T{}, 0)
}

func (l *Log[T]) load(ctx context.Context) ([]T, error) {
	var items []T
	if _, err := l.kv.Get(ctx, l.key, &items); err != nil {
		return nil, err
	}
	return items, nil
}
