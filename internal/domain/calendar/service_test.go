package calendar

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/infra/kvstore"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

func newTestService(t *testing.T, now time.Time) *Service {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := cache.NewKV(kvstore.NewMemoryStore(), "agroai_", logger)
	cacheSvc := cache.NewService(cache.Config{
		WeatherTTL:     15 * time.Minute,
		ScanHistoryCap: 50,
		ChatHistoryCap: 100,
		CoordPrecision: 2,
	}, kv, logger)
	svc := NewService(cacheSvc, logger)
	svc.now = func() time.Time { return now }
	return svc
}

func TestAddCropSchedulesStageTaskAndHarvestReminders(t *testing.T) {
	planted := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, planted)
	ctx := context.Background()

	crop, err := svc.AddCrop(ctx, AddCropRequest{Name: "Backyard Tomato", Type: "tomato", PlantedAt: planted})
	require.NoError(t, err)
	require.NotEmpty(t, crop.ID)
	require.Equal(t, CropTomato, crop.Type)
	require.Equal(t, "Field 1", crop.FieldName)
	require.Len(t, crop.Stages, 5)

	// Five stage reminders, eleven task reminders, one harvest reminder.
	all := svc.UpcomingReminders(ctx, 365)
	require.Len(t, all, 17)

	byID := make(map[string]Reminder, len(all))
	for _, r := range all {
		byID[r.ID] = r
	}

	first := byID[crop.ID+"_stage_0"]
	require.Equal(t, ReminderStageStart, first.Type)
	require.Equal(t, planted, first.Due)
	require.Contains(t, first.Title, "Seedling")
	require.Equal(t, []string{"Water daily", "Ensure sunlight"}, first.Tasks)

	// Seedling stage lasts 14 days with two tasks, so tasks land 7 days
	// apart starting at planting.
	require.Equal(t, planted, byID[fmt.Sprintf("%s_task_0_0", crop.ID)].Due)
	require.Equal(t, planted.AddDate(0, 0, 7), byID[fmt.Sprintf("%s_task_0_1", crop.ID)].Due)

	// Second stage starts once the first ends.
	require.Equal(t, planted.AddDate(0, 0, 14), byID[crop.ID+"_stage_1"].Due)

	// Harvest alert fires a week before the final stage ends (day 124).
	harvest := byID[crop.ID+"_harvest"]
	require.Equal(t, ReminderHarvest, harvest.Type)
	require.Equal(t, planted.AddDate(0, 0, 117), harvest.Due)
}

func TestAddCropRejectsEmptyName(t *testing.T) {
	svc := newTestService(t, time.Now())

	_, err := svc.AddCrop(context.Background(), AddCropRequest{Name: "   "})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestAddCropUnknownTypeFallsBackToGenericStages(t *testing.T) {
	svc := newTestService(t, time.Now())

	crop, err := svc.AddCrop(context.Background(), AddCropRequest{Name: "Okra Patch", Type: "okra"})
	require.NoError(t, err)
	require.Equal(t, CropGeneric, crop.Type)
	require.Len(t, crop.Stages, 4)
	require.Equal(t, "Seedling", crop.Stages[0].Name)
}

func TestUpcomingRemindersDefaultWindow(t *testing.T) {
	planted := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, planted)
	ctx := context.Background()

	crop, err := svc.AddCrop(ctx, AddCropRequest{Name: "Tomato", Type: "tomato", PlantedAt: planted})
	require.NoError(t, err)

	// Within the first week: the seedling stage reminder and its first task.
	// The second task lands exactly at the horizon and is excluded.
	upcoming := svc.UpcomingReminders(ctx, 0)
	require.Len(t, upcoming, 2)
	require.Equal(t, crop.ID+"_stage_0", upcoming[0].ID)
	require.Equal(t, fmt.Sprintf("%s_task_0_0", crop.ID), upcoming[1].ID)
}

func TestDueAndCompleteReminders(t *testing.T) {
	planted := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, planted)
	ctx := context.Background()

	crop, err := svc.AddCrop(ctx, AddCropRequest{Name: "Tomato", Type: "tomato", PlantedAt: planted})
	require.NoError(t, err)

	due := svc.DueReminders(ctx)
	require.Len(t, due, 2)

	require.NoError(t, svc.CompleteReminder(ctx, crop.ID+"_stage_0"))

	due = svc.DueReminders(ctx)
	require.Len(t, due, 1)
	require.Equal(t, fmt.Sprintf("%s_task_0_0", crop.ID), due[0].ID)

	err = svc.CompleteReminder(ctx, "no_such_reminder")
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRemoveCropDropsItsReminders(t *testing.T) {
	planted := time.Date(2026, time.June, 1, 9, 0, 0, 0, time.UTC)
	svc := newTestService(t, planted)
	ctx := context.Background()

	tomato, err := svc.AddCrop(ctx, AddCropRequest{Name: "Tomato", Type: "tomato", PlantedAt: planted})
	require.NoError(t, err)
	wheat, err := svc.AddCrop(ctx, AddCropRequest{Name: "Wheat", Type: "wheat", PlantedAt: planted})
	require.NoError(t, err)

	require.NoError(t, svc.RemoveCrop(ctx, tomato.ID))

	crops := svc.Crops(ctx)
	require.Len(t, crops, 1)
	require.Equal(t, wheat.ID, crops[0].ID)

	for _, r := range svc.UpcomingReminders(ctx, 365) {
		require.Equal(t, wheat.ID, r.CropID)
	}
}
