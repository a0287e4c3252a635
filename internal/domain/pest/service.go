package pest

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
)

// Report is a community pest sighting as submitted by the user.
type Report struct {
	Pest      string
	Severity  string
	Latitude  float64
	Longitude float64
	Notes     string
}

// Service tracks community pest sightings and derives weather-based risk.
// Sightings are recorded locally first and shared with the backend through
// the sync queue.
type Service struct {
	cacheSvc  *cache.Service
	sightings *cache.Log[Sighting]
	queue     *syncqueue.Queue
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the pest domain service.
func NewService(cacheSvc *cache.Service, queue *syncqueue.Queue, logger *slog.Logger) *Service {
	return &Service{
		cacheSvc:  cacheSvc,
		sightings: cache.NewLog[Sighting](cacheSvc.KV(), cache.KeyPestSightings, cache.NewestFirst, 0),
		queue:     queue,
		logger:    logger.With("component", "pest.service"),
		now:       time.Now,
	}
}

// ReportSighting records a sighting locally and enqueues it for community
// sharing. The local record survives even when enqueueing fails.
func (s *Service) ReportSighting(ctx context.Context, rep Report) (Sighting, error) {
	severity := rep.Severity
	if severity == "" {
		severity = "medium"
	}
	lat, lon := rep.Latitude, rep.Longitude
	if lat == 0 && lon == 0 {
		loc := s.cacheSvc.Location(ctx)
		lat, lon = loc.Latitude, loc.Longitude
	}
	sighting := Sighting{
		ID:         uuid.NewString(),
		Pest:       ParsePest(rep.Pest),
		Severity:   severity,
		Latitude:   lat,
		Longitude:  lon,
		Notes:      rep.Notes,
		ObservedAt: s.now(),
	}
	if err := s.sightings.Append(ctx, sighting); err != nil {
		return Sighting{}, err
	}
	if _, err := s.queue.Enqueue(ctx, syncqueue.KindSighting, agroapi.SightingRequest{
		Pest:       string(sighting.Pest),
		Severity:   sighting.Severity,
		Latitude:   sighting.Latitude,
		Longitude:  sighting.Longitude,
		Notes:      sighting.Notes,
		ObservedAt: sighting.ObservedAt,
	}); err != nil {
		s.logger.Warn("sighting recorded but not queued for sync", "id", sighting.ID, "error", err)
	}
	return sighting, nil
}

// RecentSightings returns sightings observed within the last daysBack days,
// newest first. daysBack <= 0 defaults to a week.
func (s *Service) RecentSightings(ctx context.Context, daysBack int) []Sighting {
	if daysBack <= 0 {
		daysBack = 7
	}
	cutoff := s.now().AddDate(0, 0, -daysBack)
	all, err := s.sightings.List(ctx, 0)
	if err != nil {
		s.logger.Warn("sightings read failed", "error", err)
		return nil
	}
	var out []Sighting
	for _, sg := range all {
		if !sg.ObservedAt.Before(cutoff) {
			out = append(out, sg)
		}
	}
	return out
}

// Risks scores the known pests against current weather conditions.
func (s *Service) Risks(w Weather) []Risk {
	return RisksFromWeather(w, s.now())
}
