package pest

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/infra/agroapi"
	"github.com/Lalithx4/agroai/internal/infra/kvstore"
)

type noopRemote struct{}

func (noopRemote) Submit(context.Context, syncqueue.Item) (json.RawMessage, error) {
	return json.RawMessage(`{}`), nil
}

func newTestService(t *testing.T) (*Service, *syncqueue.Queue) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := cache.NewKV(kvstore.NewMemoryStore(), "agroai_", logger)
	cacheSvc := cache.NewService(cache.Config{
		WeatherTTL:     15 * time.Minute,
		ScanHistoryCap: 50,
		ChatHistoryCap: 100,
		CoordPrecision: 2,
	}, kv, logger)
	queue := syncqueue.NewQueue(syncqueue.Config{
		BaseBackoff:     30 * time.Second,
		MaxBackoff:      30 * time.Minute,
		SyncedRetention: 24 * time.Hour,
	}, kv, noopRemote{}, logger)
	return NewService(cacheSvc, queue, logger), queue
}

func TestParsePestFallsBackToUnknown(t *testing.T) {
	require.Equal(t, PestAphids, ParsePest("aphids"))
	require.Equal(t, PestFallArmyworm, ParsePest("fall_armyworm"))
	require.Equal(t, PestUnknown, ParsePest("locust swarm"))
	require.Equal(t, PestUnknown, ParsePest(""))
}

func TestSeasonOf(t *testing.T) {
	require.Equal(t, SeasonKharif, SeasonOf(time.June))
	require.Equal(t, SeasonKharif, SeasonOf(time.October))
	require.Equal(t, SeasonRabi, SeasonOf(time.November))
	require.Equal(t, SeasonRabi, SeasonOf(time.January))
	require.Equal(t, SeasonRabi, SeasonOf(time.March))
	require.Equal(t, SeasonSummer, SeasonOf(time.April))
	require.Equal(t, SeasonSummer, SeasonOf(time.May))
}

func TestForCropMatchesExactNamesOnly(t *testing.T) {
	cotton := ForCrop("cotton")
	require.ElementsMatch(t, []Pest{PestWhitefly, PestPinkBollworm, PestAphids, PestThrips}, cotton)

	require.Empty(t, ForCrop("cottonseed"))
	require.Empty(t, ForCrop("orchid"))
}

func TestRisksFromWeatherMonsoonConditions(t *testing.T) {
	// Warm and humid in July: peak conditions for most kharif pests.
	at := time.Date(2026, time.July, 15, 12, 0, 0, 0, time.UTC)
	risks := RisksFromWeather(Weather{Temperature: 30, Humidity: 85}, at)

	require.Len(t, risks, 8)

	byPest := make(map[Pest]Risk, len(risks))
	for _, r := range risks {
		byPest[r.Pest] = r
	}

	// Temp window (40) + humidity match (30) + in season (30).
	require.Equal(t, 100, byPest[PestFallArmyworm].Score)
	require.Equal(t, "high", byPest[PestFallArmyworm].Level)
	require.Equal(t, 100, byPest[PestBrownPlanthopper].Score)
	require.Equal(t, 100, byPest[PestStemBorer].Score)

	// Whitefly prefers drier air: temp (40) + humidity miss (10) + season (30).
	require.Equal(t, 80, byPest[PestWhitefly].Score)
	require.Equal(t, "high", byPest[PestWhitefly].Level)

	// Aphids are rabi pests: near-window temp (20) + humidity (30) only.
	require.Equal(t, 50, byPest[PestAphids].Score)
	require.Equal(t, "low", byPest[PestAphids].Level)

	// Highest risk first, ties broken by pest name.
	for i := 1; i < len(risks); i++ {
		if risks[i-1].Score == risks[i].Score {
			require.Less(t, risks[i-1].Pest, risks[i].Pest)
		} else {
			require.Greater(t, risks[i-1].Score, risks[i].Score)
		}
	}
}

func TestRisksFromWeatherColdDrySeason(t *testing.T) {
	// A cold dry January morning leaves only aphids above the threshold.
	at := time.Date(2026, time.January, 10, 8, 0, 0, 0, time.UTC)
	risks := RisksFromWeather(Weather{Temperature: 10, Humidity: 30}, at)

	require.Len(t, risks, 1)
	require.Equal(t, PestAphids, risks[0].Pest)
	require.Equal(t, 60, risks[0].Score)
	require.Equal(t, "medium", risks[0].Level)
}

func TestReportSightingDefaultsAndQueues(t *testing.T) {
	svc, queue := newTestService(t)
	ctx := context.Background()

	sighting, err := svc.ReportSighting(ctx, Report{Pest: "whitefly", Notes: "underside of cotton leaves"})
	require.NoError(t, err)

	require.NotEmpty(t, sighting.ID)
	require.Equal(t, PestWhitefly, sighting.Pest)
	require.Equal(t, "medium", sighting.Severity)
	require.False(t, sighting.ObservedAt.IsZero())

	// No coordinates supplied: falls back to the stored location.
	require.InDelta(t, cache.DefaultLatitude, sighting.Latitude, 1e-9)
	require.InDelta(t, cache.DefaultLongitude, sighting.Longitude, 1e-9)

	require.Equal(t, 1, queue.PendingCount(ctx))
	items := queue.Items(ctx)
	require.Len(t, items, 1)
	require.Equal(t, syncqueue.KindSighting, items[0].Kind)

	var req agroapi.SightingRequest
	require.NoError(t, json.Unmarshal(items[0].Payload, &req))
	require.Equal(t, "whitefly", req.Pest)
}

func TestReportSightingKeepsUnrecognizedPest(t *testing.T) {
	svc, _ := newTestService(t)

	sighting, err := svc.ReportSighting(context.Background(), Report{Pest: "mystery bug", Severity: "high"})
	require.NoError(t, err)
	require.Equal(t, PestUnknown, sighting.Pest)
	require.Equal(t, "high", sighting.Severity)
}

func TestRecentSightingsWindow(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, time.July, 20, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base.AddDate(0, 0, -10) }
	_, err := svc.ReportSighting(ctx, Report{Pest: "aphids"})
	require.NoError(t, err)

	svc.now = func() time.Time { return base.AddDate(0, 0, -2) }
	fresh, err := svc.ReportSighting(ctx, Report{Pest: "thrips"})
	require.NoError(t, err)

	svc.now = func() time.Time { return base }

	recent := svc.RecentSightings(ctx, 0)
	require.Len(t, recent, 1)
	require.Equal(t, fresh.ID, recent[0].ID)

	all := svc.RecentSightings(ctx, 30)
	require.Len(t, all, 2)
	// Newest first.
	require.Equal(t, fresh.ID, all[0].ID)
}
