package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/Lalithx4/agroai/pkg/errors"
	"github.com/Lalithx4/agroai/pkg/util"
)

// Default coordinates used when geolocation is unavailable or denied.
// Hyderabad, like the rest of the app's regional defaults.
const (
	DefaultLatitude  = 17.385
	DefaultLongitude = 78.4867
)

// Config wires runtime tunables for the cache facade.
type Config struct {
	WeatherTTL     time.Duration
	ScanHistoryCap int
	ChatHistoryCap int
	CoordPrecision int
}

// Service is the facade the rest of the application talks to for durable
// local state: scan history, chat transcript, weather cache, settings and
// location. Internal storage faults never propagate to callers; read
// operations return empty or default values and log the detail instead.
type Service struct {
	cfg    Config
	kv     *KV
	scans  *Log[ScanRecord]
	chat   *Log[ChatMessage]
	logger *slog.Logger
	now    func() time.Time
}

// NewService constructs the cache facade and installs the storage-full
// recovery routine on the key/value layer.
func NewService(cfg Config, kv *KV, logger *slog.Logger) *Service {
	s := &Service{
		cfg:    cfg,
		kv:     kv,
		scans:  NewLog[ScanRecord](kv, KeyScanHistory, NewestFirst, cfg.ScanHistoryCap),
		chat:   NewLog[ChatMessage](kv, KeyChatHistory, OldestFirst, cfg.ChatHistoryCap),
		logger: logger.With("component", "cache.service"),
		now:    util.NowUTC,
	}
	kv.SetFullRecovery(s.evictForSpace)
	return s
}

// KV exposes the underlying key/value layer for sibling domains that persist
// their own collections (sync queue, pest sightings, calendar).
func (s *Service) KV() *KV {
	return s.kv
}

// AddScanToHistory records a completed analysis, assigning an id and capture
// time when absent. Insertion past capacity silently evicts the oldest scan.
func (s *Service) AddScanToHistory(ctx context.Context, rec ScanRecord) ScanRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CapturedAt.IsZero() {
		rec.CapturedAt = s.now()
	}
	if rec.HealthStatus == "" {
		rec.HealthStatus = HealthUnknown
	}
	if err := s.scans.Append(ctx, rec); err != nil {
		s.logger.Warn("scan history write dropped", "id", rec.ID, "error", err)
	}
	return rec
}

// ScanHistory returns the stored scans, newest first.
func (s *Service) ScanHistory(ctx context.Context) []ScanRecord {
	items, err := s.scans.List(ctx, 0)
	if err != nil {
		s.logger.Warn("scan history read failed", "error", err)
		return nil
	}
	return items
}

// ScanByID fetches a single scan from history.
func (s *Service) ScanByID(ctx context.Context, id string) (ScanRecord, bool) {
	for _, rec := range s.ScanHistory(ctx) {
		if rec.ID == id {
			return rec, true
		}
	}
	return ScanRecord{}, false
}

// DeleteScan removes one scan from history. Unknown ids are a no-op.
func (s *Service) DeleteScan(ctx context.Context, id string) {
	if err := s.scans.RemoveWhere(ctx, func(rec ScanRecord) bool { return rec.ID == id }); err != nil {
		s.logger.Warn("scan delete failed", "id", id, "error", err)
	}
}

// MarkScanSynced flags a history entry as reconciled and, when the remote
// returned an authoritative result, replaces the locally-generated diagnosis.
func (s *Service) MarkScanSynced(ctx context.Context, id string, authoritative *ScanRecord) {
	items, err := s.scans.List(ctx, 0)
	if err != nil {
		s.logger.Warn("scan sync flag read failed", "id", id, "error", err)
		return
	}
	for i := range items {
		if items[i].ID != id {
			continue
		}
		items[i].Synced = true
		if authoritative != nil {
			items[i].PlantName = authoritative.PlantName
			items[i].HealthStatus = authoritative.HealthStatus
			items[i].Diseases = authoritative.Diseases
			items[i].Recommendations = authoritative.Recommendations
			items[i].Confidence = authoritative.Confidence
			items[i].Offline = false
		}
		if err := s.scans.Replace(ctx, items); err != nil {
			s.logger.Warn("scan sync flag write failed", "id", id, "error", err)
		}
		return
	}
}

// Stats derives the dashboard counters by scanning history.
func (s *Service) Stats(ctx context.Context) Stats {
	history := s.ScanHistory(ctx)
	stats := Stats{Total: len(history)}
	for _, rec := range history {
		if rec.HealthStatus == HealthHealthy {
			stats.Healthy++
		}
	}
	stats.Issues = stats.Total - stats.Healthy
	return stats
}

// ChatHistory returns the transcript in chronological order; a positive
// limit keeps the most recent messages.
func (s *Service) ChatHistory(ctx context.Context, limit int) []ChatMessage {
	items, err := s.chat.List(ctx, limit)
	if err != nil {
		s.logger.Warn("chat history read failed", "error", err)
		return nil
	}
	return items
}

// AppendChatMessage adds one line to the transcript, evicting the oldest
// message once over capacity.
func (s *Service) AppendChatMessage(ctx context.Context, msg ChatMessage) ChatMessage {
	if msg.SentAt.IsZero() {
		msg.SentAt = s.now()
	}
	if err := s.chat.Append(ctx, msg); err != nil {
		s.logger.Warn("chat history write dropped", "error", err)
	}
	return msg
}

// SaveChatHistory replaces the whole transcript.
func (s *Service) SaveChatHistory(ctx context.Context, msgs []ChatMessage) {
	if err := s.chat.Replace(ctx, msgs); err != nil {
		s.logger.Warn("chat history replace failed", "error", err)
	}
}

// ClearChatHistory empties the transcript.
func (s *Service) ClearChatHistory(ctx context.Context) {
	if err := s.chat.Clear(ctx); err != nil {
		s.logger.Warn("chat history clear failed", "error", err)
	}
}

// SaveWeather caches a weather payload for the rounded coordinate pair.
func (s *Service) SaveWeather(ctx context.Context, lat, lon float64, payload json.RawMessage) {
	env := weatherEnvelope{Payload: payload, CachedAt: s.now()}
	if err := s.kv.Set(ctx, s.WeatherKey(lat, lon), env, s.cfg.WeatherTTL); err != nil {
		s.logger.Warn("weather cache write dropped", "error", err)
	}
}

// CachedWeather returns the payload cached for the rounded coordinates, if
// still fresh.
func (s *Service) CachedWeather(ctx context.Context, lat, lon float64) (json.RawMessage, bool) {
	var env weatherEnvelope
	ok, err := s.kv.Get(ctx, s.WeatherKey(lat, lon), &env)
	if err != nil {
		s.logger.Warn("weather cache read failed", "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	return env.Payload, true
}

// WeatherKey derives the cache key by rounding both coordinates to the
// configured precision, so nearby requests share a cache hit.
func (s *Service) WeatherKey(lat, lon float64) string {
	p := s.cfg.CoordPrecision
	return fmt.Sprintf("%s%.*f_%.*f", weatherKeyPrefix, p, lat, p, lon)
}

// Settings returns the stored preferences layered over the defaults, so a
// partially-written settings object keeps default values for absent fields.
func (s *Service) Settings(ctx context.Context) Settings {
	settings := DefaultSettings()
	if _, err := s.kv.Get(ctx, KeySettings, &settings); err != nil {
		s.logger.Warn("settings read failed", "error", err)
		return DefaultSettings()
	}
	return settings
}

// UpdateSetting applies a single-field change via read-modify-write. The
// setting name is matched against the closed set of known preferences.
func (s *Service) UpdateSetting(ctx context.Context, name string, value any) error {
	settings := s.Settings(ctx)
	switch name {
	case "ttsEnabled":
		b, ok := value.(bool)
		if !ok {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "ttsEnabled expects a boolean", nil)
		}
		settings.TTSEnabled = b
	case "notificationsEnabled":
		b, ok := value.(bool)
		if !ok {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "notificationsEnabled expects a boolean", nil)
		}
		settings.NotificationsEnabled = b
	case "organicPreference":
		b, ok := value.(bool)
		if !ok {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "organicPreference expects a boolean", nil)
		}
		settings.OrganicPreference = b
	case "language":
		lang, ok := value.(string)
		if !ok || lang == "" {
			return apperrors.Wrap(apperrors.CodeInvalidInput, "language expects a non-empty string", nil)
		}
		settings.Language = lang
	default:
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unknown setting %q", name), nil)
	}
	return s.kv.Set(ctx, KeySettings, settings, 0)
}

// SaveLocation stores the last known coordinates permanently.
func (s *Service) SaveLocation(ctx context.Context, lat, lon float64) {
	if err := s.kv.Set(ctx, KeyUserLocation, Location{Latitude: lat, Longitude: lon}, 0); err != nil {
		s.logger.Warn("location write dropped", "error", err)
	}
}

// Location returns the stored coordinates, falling back to the documented
// default when none were saved.
func (s *Service) Location(ctx context.Context) Location {
	loc := Location{Latitude: DefaultLatitude, Longitude: DefaultLongitude}
	if _, err := s.kv.Get(ctx, KeyUserLocation, &loc); err != nil {
		s.logger.Warn("location read failed", "error", err)
	}
	return loc
}

// ClearAll removes every namespaced key. Derived values (stats) are computed
// on demand, so no in-memory state survives the reset.
func (s *Service) ClearAll(ctx context.Context) error {
	if err := s.kv.ClearNamespace(ctx); err != nil {
		s.logger.Error("full reset failed", "error", err)
		return err
	}
	s.logger.Info("all cached data cleared")
	return nil
}

// evictForSpace drops the oldest three quarters of scan history so a write
// that hit storage exhaustion can be retried. Reports whether anything was
// evicted.
func (s *Service) evictForSpace(ctx context.Context) bool {
	var items []ScanRecord
	ok, err := s.kv.Get(ctx, KeyScanHistory, &items)
	if err != nil || !ok || len(items) == 0 {
		return false
	}
	keep := len(items) / 4
	if err := s.kv.set(ctx, KeyScanHistory, items[:keep], 0); err != nil {
		return false
	}
	s.logger.Warn("evicted scan history to reclaim space", "kept", keep, "dropped", len(items)-keep)
	return true
}
