package calendar

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	apperrors "github.com/Lalithx4/agroai/pkg/errors"
)

// AddCropRequest describes a new planting to track.
type AddCropRequest struct {
	Name      string
	Type      string
	PlantedAt time.Time
	FieldName string
	Area      string
	Notes     string
}

// Service keeps the crop calendar: tracked plantings plus the stage and task
// reminders derived from them. Everything persists through the cache layer.
type Service struct {
	crops     *cache.Log[Crop]
	reminders *cache.Log[Reminder]
	logger    *slog.Logger
	now       func() time.Time
}

// NewService builds the calendar domain service.
func NewService(cacheSvc *cache.Service, logger *slog.Logger) *Service {
	kv := cacheSvc.KV()
	return &Service{
		crops:     cache.NewLog[Crop](kv, cache.KeyCalendarCrops, cache.OldestFirst, 0),
		reminders: cache.NewLog[Reminder](kv, cache.KeyReminders, cache.OldestFirst, 0),
		logger:    logger.With("component", "calendar.service"),
		now:       time.Now,
	}
}

// AddCrop registers a planting and schedules reminders for each growth
// stage, its tasks spread across the stage, and a harvest alert one week
// before the final stage ends.
func (s *Service) AddCrop(ctx context.Context, req AddCropRequest) (Crop, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Crop{}, apperrors.Wrap(apperrors.CodeInvalidInput, "crop name is empty", nil)
	}
	planted := req.PlantedAt
	if planted.IsZero() {
		planted = s.now()
	}
	fieldName := req.FieldName
	if fieldName == "" {
		fieldName = "Field 1"
	}
	cropType := ParseCropType(strings.ToLower(strings.TrimSpace(req.Type)))
	crop := Crop{
		ID:         uuid.NewString(),
		Name:       name,
		Type:       cropType,
		PlantedAt:  planted,
		FieldName:  fieldName,
		Area:       req.Area,
		Notes:      req.Notes,
		Stages:     StagesFor(cropType),
		RecordedAt: s.now(),
	}
	if err := s.crops.Append(ctx, crop); err != nil {
		return Crop{}, err
	}
	for _, rem := range scheduleReminders(crop) {
		if err := s.reminders.Append(ctx, rem); err != nil {
			s.logger.Warn("reminder write dropped", "crop", crop.ID, "error", err)
			break
		}
	}
	return crop, nil
}

// Crops lists tracked plantings in the order they were added.
func (s *Service) Crops(ctx context.Context) []Crop {
	crops, err := s.crops.List(ctx, 0)
	if err != nil {
		s.logger.Warn("crops read failed", "error", err)
		return nil
	}
	return crops
}

// RemoveCrop deletes a planting and every reminder derived from it.
func (s *Service) RemoveCrop(ctx context.Context, cropID string) error {
	if err := s.crops.RemoveWhere(ctx, func(c Crop) bool { return c.ID == cropID }); err != nil {
		return err
	}
	return s.reminders.RemoveWhere(ctx, func(r Reminder) bool { return r.CropID == cropID })
}

// UpcomingReminders returns open reminders due within the next `days` days,
// soonest first. days <= 0 defaults to a week.
func (s *Service) UpcomingReminders(ctx context.Context, days int) []Reminder {
	if days <= 0 {
		days = 7
	}
	now := s.now()
	horizon := now.AddDate(0, 0, days)
	return s.selectReminders(ctx, func(r Reminder) bool {
		return !r.Completed && !r.Due.Before(startOfDay(now)) && r.Due.Before(horizon)
	})
}

// DueReminders returns open reminders due today.
func (s *Service) DueReminders(ctx context.Context) []Reminder {
	day := startOfDay(s.now())
	next := day.AddDate(0, 0, 1)
	return s.selectReminders(ctx, func(r Reminder) bool {
		return !r.Completed && !r.Due.Before(day) && r.Due.Before(next)
	})
}

// CompleteReminder marks one reminder done.
func (s *Service) CompleteReminder(ctx context.Context, id string) error {
	all, err := s.reminders.List(ctx, 0)
	if err != nil {
		return err
	}
	found := false
	for i := range all {
		if all[i].ID == id {
			all[i].Completed = true
			found = true
			break
		}
	}
	if !found {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "reminder not found", nil)
	}
	return s.reminders.Replace(ctx, all)
}

func (s *Service) selectReminders(ctx context.Context, keep func(Reminder) bool) []Reminder {
	all, err := s.reminders.List(ctx, 0)
	if err != nil {
		s.logger.Warn("reminders read failed", "error", err)
		return nil
	}
	var out []Reminder
	for _, r := range all {
		if keep(r) {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Due.Before(out[j].Due) })
	return out
}

func scheduleReminders(crop Crop) []Reminder {
	var out []Reminder
	dayOffset := 0
	for i, stage := range crop.Stages {
		stageStart := crop.PlantedAt.AddDate(0, 0, dayOffset)
		out = append(out, Reminder{
			ID:       fmt.Sprintf("%s_stage_%d", crop.ID, i),
			CropID:   crop.ID,
			CropName: crop.Name,
			Type:     ReminderStageStart,
			Title:    fmt.Sprintf("%s: %s stage", crop.Name, stage.Name),
			Message:  fmt.Sprintf("%s is entering the %s stage. Tasks: %s", crop.Name, stage.Name, strings.Join(stage.Tasks, ", ")),
			Due:      stageStart,
			Tasks:    stage.Tasks,
		})
		if len(stage.Tasks) > 0 {
			spacing := stage.DurationDays / len(stage.Tasks)
			for j, task := range stage.Tasks {
				out = append(out, Reminder{
					ID:       fmt.Sprintf("%s_task_%d_%d", crop.ID, i, j),
					CropID:   crop.ID,
					CropName: crop.Name,
					Type:     ReminderTask,
					Title:    fmt.Sprintf("%s: %s", crop.Name, task),
					Message:  "Time to: " + task,
					Due:      stageStart.AddDate(0, 0, spacing*j),
				})
			}
		}
		dayOffset += stage.DurationDays
	}
	out = append(out, Reminder{
		ID:       crop.ID + "_harvest",
		CropID:   crop.ID,
		CropName: crop.Name,
		Type:     ReminderHarvest,
		Title:    crop.Name + ": ready to harvest",
		Message:  fmt.Sprintf("%s is ready for harvest. Plan your harvest activities.", crop.Name),
		Due:      crop.PlantedAt.AddDate(0, 0, dayOffset-7),
	})
	return out
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
