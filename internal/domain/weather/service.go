package weather

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/connectivity"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// Request asks for weather-based farming advice. Zero coordinates mean "use
// the stored location"; an image turns the call into a soil analysis too.
type Request struct {
	Latitude    float64
	Longitude   float64
	ImageBase64 string
	Language    string
}

// Report carries the advisory payload plus cache provenance.
type Report struct {
	Payload   json.RawMessage
	FromCache bool
	Latitude  float64
	Longitude float64
}

// RemoteAdvisor is the backend weather/soil endpoint.
type RemoteAdvisor interface {
	SoilWeather(ctx context.Context, req agroapi.SoilWeatherRequest) (json.RawMessage, error)
}

// Config wires runtime defaults for the weather domain.
type Config struct {
	Language string
}

// Service serves weather advisories, preferring the local cache and falling
// back to it again when the backend is unreachable.
type Service struct {
	cfg      Config
	remote   RemoteAdvisor
	cacheSvc *cache.Service
	monitor  *connectivity.Monitor
	logger   *slog.Logger
}

// NewService builds the weather domain service.
func NewService(cfg Config, remote RemoteAdvisor, cacheSvc *cache.Service, monitor *connectivity.Monitor, logger *slog.Logger) *Service {
	return &Service{
		cfg:      cfg,
		remote:   remote,
		cacheSvc: cacheSvc,
		monitor:  monitor,
		logger:   logger.With("component", "weather.service"),
	}
}

// Advise returns the advisory for the given coordinates. Soil-analysis
// requests carry an image and always go to the backend; plain weather
// requests are answered from cache while the entry is fresh.
func (s *Service) Advise(ctx context.Context, req Request) (Report, error) {
	lat, lon := req.Latitude, req.Longitude
	if lat == 0 && lon == 0 {
		loc := s.cacheSvc.Location(ctx)
		lat, lon = loc.Latitude, loc.Longitude
	} else {
		s.cacheSvc.SaveLocation(ctx, lat, lon)
	}
	language := req.Language
	if language == "" {
		language = s.cfg.Language
	}

	soilRequest := req.ImageBase64 != ""
	if !soilRequest {
		if payload, ok := s.cacheSvc.CachedWeather(ctx, lat, lon); ok {
			return Report{Payload: payload, FromCache: true, Latitude: lat, Longitude: lon}, nil
		}
	}

	if !s.monitor.IsOnline() {
		return Report{}, apperrors.Wrap(apperrors.CodeNetworkUnavailable, "offline and no cached weather available", nil)
	}

	payload, err := s.remote.SoilWeather(ctx, agroapi.SoilWeatherRequest{
		ImageBase64: req.ImageBase64,
		Latitude:    lat,
		Longitude:   lon,
		Language:    language,
	})
	if err != nil {
		return Report{}, err
	}

	if !soilRequest {
		s.cacheSvc.SaveWeather(ctx, lat, lon, payload)
	}
	return Report{Payload: payload, Latitude: lat, Longitude: lon}, nil
}
