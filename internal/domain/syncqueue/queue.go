package syncqueue

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
	"github.com/Lalithx4/agroai/pkg/util"
)

// Kind tags the record type carried by a pending item.
type Kind string

const (
	KindScan     Kind = "scan"
	KindSighting Kind = "sighting"
)

// Item is one locally-produced record awaiting delivery to the remote
// backend. Items move pending → synced and are never deleted before synced,
// except by a full reset.
type Item struct {
	ID           int64           `json:"id"`
	Kind         Kind            `json:"kind"`
	Payload      json.RawMessage `json:"payload"`
	CreatedAt    time.Time       `json:"createdAt"`
	Synced       bool            `json:"synced"`
	SyncedAt     time.Time       `json:"syncedAt,omitempty"`
	RemoteResult json.RawMessage `json:"remoteResult,omitempty"`
	Attempts     int             `json:"attempts,omitempty"`
	NextAttempt  time.Time       `json:"nextAttempt,omitempty"`
}

// Remote delivers one pending item and returns the authoritative result.
type Remote interface {
	Submit(ctx context.Context, item Item) (json.RawMessage, error)
}

// Config bounds the retry behavior.
type Config struct {
	BaseBackoff     time.Duration
	MaxBackoff      time.Duration
	SyncedRetention time.Duration
}

// Queue records offline-produced data and drains it to the remote backend
// once connectivity returns. Draining is sequential and idempotent: an
// already-synced item is never submitted again, and overlapping Drain calls
// collapse into one pass.
type Queue struct {
	cfg    Config
	kv     *cache.KV
	remote Remote
	logger *slog.Logger
	now    func() time.Time

	drainMu  sync.Mutex
	onSynced []func(context.Context, Item)
}

// NewQueue constructs the sync queue on top of the shared key/value layer.
func NewQueue(cfg Config, kv *cache.KV, remote Remote, logger *slog.Logger) *Queue {
	return &Queue{
		cfg:    cfg,
		kv:     kv,
		remote: remote,
		logger: logger.With("component", "syncqueue"),
		now:    util.NowUTC,
	}
}

// OnItemSynced registers a callback fired after an item is marked synced,
// carrying the attached remote result.
func (q *Queue) OnItemSynced(fn func(context.Context, Item)) {
	q.onSynced = append(q.onSynced, fn)
}

// Enqueue persists a new pending item. The stored list must be readable
// first: writing back a list built from a failed read would drop every item
// already queued, and unsynced items are never deleted.
func (q *Queue) Enqueue(ctx context.Context, kind Kind, payload any) (Item, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Item{}, apperrors.Wrap(apperrors.CodeInvalidInput, "sync payload is not serializable", err)
	}
	items, err := q.load(ctx)
	if err != nil {
		q.logger.Warn("pending sync read failed on enqueue", "error", err)
		return Item{}, err
	}
	var maxID int64
	for _, it := range items {
		if it.ID > maxID {
			maxID = it.ID
		}
	}
	item := Item{
		ID:        maxID + 1,
		Kind:      kind,
		Payload:   raw,
		CreatedAt: q.now(),
	}
	items = append(items, item)
	if err := q.save(ctx, items); err != nil {
		q.logger.Warn("pending sync write failed on enqueue", "kind", kind, "error", err)
		return item, err
	}
	q.logger.Info("queued record for sync", "kind", kind, "id", item.ID)
	return item, nil
}

// Drain attempts exactly one remote submission for each due pending item, in
// enqueue order. Failures leave the item pending with a bounded backoff;
// they are never surfaced beyond the sync status indicator.
func (q *Queue) Drain(ctx context.Context) {
	if !q.drainMu.TryLock() {
		// Another drain pass is already running; flapping connectivity
		// must not cause double submission.
		return
	}
	defer q.drainMu.Unlock()

	items, err := q.load(ctx)
	if err != nil {
		q.logger.Warn("pending sync read failed on drain", "error", err)
		return
	}

	var synced int
	for _, due := range items {
		if due.Synced || q.now().Before(due.NextAttempt) {
			continue
		}
		// Re-read right before the network call: a concurrent writer may
		// have marked the item synced since the pass started.
		current, ok, err := q.find(ctx, due.ID)
		if err != nil || !ok || current.Synced {
			continue
		}

		result, err := q.remote.Submit(ctx, current)
		if err != nil {
			current.Attempts++
			current.NextAttempt = q.now().Add(q.backoff(current.Attempts))
			q.logger.Warn("sync submission failed", "id", current.ID, "kind", current.Kind, "attempts", current.Attempts, "error", err)
			q.update(ctx, current)
			continue
		}

		current.Synced = true
		current.SyncedAt = q.now()
		current.RemoteResult = result
		q.update(ctx, current)
		synced++
		for _, fn := range q.onSynced {
			fn(ctx, current)
		}
	}

	q.prune(ctx)
	if synced > 0 {
		q.logger.Info("drained pending sync items", "synced", synced)
	}
}

// PendingCount reports how many items still await delivery, for status
// display only.
func (q *Queue) PendingCount(ctx context.Context) int {
	items, err := q.load(ctx)
	if err != nil {
		q.logger.Warn("pending sync read failed", "error", err)
		return 0
	}
	var pending int
	for _, it := range items {
		if !it.Synced {
			pending++
		}
	}
	return pending
}

// Items returns a snapshot of the queue, newest last.
func (q *Queue) Items(ctx context.Context) []Item {
	items, err := q.load(ctx)
	if err != nil {
		q.logger.Warn("pending sync read failed", "error", err)
		return nil
	}
	return items
}

func (q *Queue) backoff(attempts int) time.Duration {
	d := q.cfg.BaseBackoff
	for i := 1; i < attempts; i++ {
		d *= 2
		if d >= q.cfg.MaxBackoff {
			return q.cfg.MaxBackoff
		}
	}
	if d > q.cfg.MaxBackoff {
		return q.cfg.MaxBackoff
	}
	return d
}

// prune drops synced items past the retention window. Unsynced items are
// never pruned.
func (q *Queue) prune(ctx context.Context) {
	if q.cfg.SyncedRetention <= 0 {
		return
	}
	items, err := q.load(ctx)
	if err != nil {
		return
	}
	cutoff := q.now().Add(-q.cfg.SyncedRetention)
	kept := items[:0]
	for _, it := range items {
		if it.Synced && !it.SyncedAt.IsZero() && it.SyncedAt.Before(cutoff) {
			continue
		}
		kept = append(kept, it)
	}
	if len(kept) != len(items) {
		if err := q.save(ctx, kept); err != nil {
			q.logger.Warn("pending sync prune failed", "error", err)
		}
	}
}

func (q *Queue) find(ctx context.Context, id int64) (Item, bool, error) {
	items, err := q.load(ctx)
	if err != nil {
		return Item{}, false, err
	}
	for _, it := range items {
		if it.ID == id {
			return it, true, nil
		}
	}
	return Item{}, false, nil
}

func (q *Queue) update(ctx context.Context, item Item) {
	items, err := q.load(ctx)
	if err != nil {
		q.logger.Warn("pending sync read failed on update", "error", err)
		return
	}
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = item
			break
		}
	}
	if err := q.save(ctx, items); err != nil {
		q.logger.Warn("pending sync write failed on update", "id", item.ID, "error", err)
	}
}

func (q *Queue) load(ctx context.Context) ([]Item, error) {
	var items []Item
	if _, err := q.kv.Get(ctx, cache.KeyPendingSync, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (q *Queue) save(ctx context.Context, items []Item) error {
	return q.kv.Set(ctx, cache.KeyPendingSync, items, 0)
}
