package calendar

import "time"

// CropType is the closed set of crops with dedicated stage tables. Anything
// else falls back to CropGeneric.
type CropType string

const (
	CropTomato  CropType = "tomato"
	CropRice    CropType = "rice"
	CropWheat   CropType = "wheat"
	CropCotton  CropType = "cotton"
	CropChili   CropType = "chili"
	CropGeneric CropType = "generic"
)

// ParseCropType maps a raw crop name onto the closed set.
func ParseCropType(raw string) CropType {
	switch CropType(raw) {
	case CropTomato, CropRice, CropWheat, CropCotton, CropChili:
		return CropType(raw)
	default:
		return CropGeneric
	}
}

// Stage is one growth phase with its typical duration and care tasks.
type Stage struct {
	Name         string   `json:"name"`
	DurationDays int      `json:"durationDays"`
	Tasks        []string `json:"tasks"`
}

var stageTables = map[CropType][]Stage{
	CropTomato: {
		{Name: "Seedling", DurationDays: 14, Tasks: []string{"Water daily", "Ensure sunlight"}},
		{Name: "Vegetative", DurationDays: 30, Tasks: []string{"Apply nitrogen fertilizer", "Stake plants"}},
		{Name: "Flowering", DurationDays: 20, Tasks: []string{"Reduce nitrogen", "Apply phosphorus", "Check for pests"}},
		{Name: "Fruiting", DurationDays: 30, Tasks: []string{"Support heavy branches", "Regular watering"}},
		{Name: "Harvest", DurationDays: 30, Tasks: []string{"Pick ripe fruits", "Check daily"}},
	},
	CropRice: {
		{Name: "Nursery", DurationDays: 25, Tasks: []string{"Prepare seedbed", "Maintain water level"}},
		{Name: "Transplanting", DurationDays: 7, Tasks: []string{"Transplant seedlings", "Maintain 2-3cm water"}},
		{Name: "Tillering", DurationDays: 30, Tasks: []string{"Apply urea", "Weed control"}},
		{Name: "Panicle", DurationDays: 35, Tasks: []string{"Drain field", "Apply potash"}},
		{Name: "Harvest", DurationDays: 30, Tasks: []string{"Drain completely", "Harvest at 80% maturity"}},
	},
	CropWheat: {
		{Name: "Germination", DurationDays: 10, Tasks: []string{"Light irrigation", "Monitor emergence"}},
		{Name: "Tillering", DurationDays: 35, Tasks: []string{"First irrigation", "Apply nitrogen"}},
		{Name: "Jointing", DurationDays: 25, Tasks: []string{"Second irrigation", "Weed control"}},
		{Name: "Heading", DurationDays: 20, Tasks: []string{"Third irrigation", "Watch for rust"}},
		{Name: "Harvest", DurationDays: 20, Tasks: []string{"Harvest at golden color", "Moisture 12-14%"}},
	},
	CropCotton: {
		{Name: "Seedling", DurationDays: 20, Tasks: []string{"Thin plants", "Light irrigation"}},
		{Name: "Vegetative", DurationDays: 40, Tasks: []string{"Apply fertilizer", "Pest monitoring"}},
		{Name: "Squaring", DurationDays: 25, Tasks: []string{"Reduce nitrogen", "Check for bollworm"}},
		{Name: "Flowering", DurationDays: 30, Tasks: []string{"Regular irrigation", "Pest control"}},
		{Name: "Boll Opening", DurationDays: 40, Tasks: []string{"Stop irrigation", "Prepare for harvest"}},
	},
	CropChili: {
		{Name: "Seedling", DurationDays: 21, Tasks: []string{"Harden seedlings", "Prepare field"}},
		{Name: "Transplanting", DurationDays: 14, Tasks: []string{"Transplant carefully", "Mulching"}},
		{Name: "Vegetative", DurationDays: 30, Tasks: []string{"Apply NPK", "Stake if needed"}},
		{Name: "Flowering", DurationDays: 25, Tasks: []string{"Foliar spray", "Check for aphids"}},
		{Name: "Fruiting", DurationDays: 60, Tasks: []string{"Regular picking", "Continue care"}},
	},
	CropGeneric: {
		{Name: "Seedling", DurationDays: 14, Tasks: []string{"Regular watering", "Sunlight exposure"}},
		{Name: "Growth", DurationDays: 45, Tasks: []string{"Fertilizer application", "Pest monitoring"}},
		{Name: "Flowering", DurationDays: 20, Tasks: []string{"Reduce water stress", "Pollination check"}},
		{Name: "Harvest", DurationDays: 30, Tasks: []string{"Monitor maturity", "Timely harvest"}},
	},
}

// StagesFor returns the growth-stage table for a crop type.
func StagesFor(t CropType) []Stage {
	if stages, ok := stageTables[t]; ok {
		return stages
	}
	return stageTables[CropGeneric]
}

// Crop is one tracked planting.
type Crop struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Type       CropType  `json:"type"`
	PlantedAt  time.Time `json:"plantedAt"`
	FieldName  string    `json:"fieldName"`
	Area       string    `json:"area,omitempty"`
	Notes      string    `json:"notes,omitempty"`
	Stages     []Stage   `json:"stages"`
	RecordedAt time.Time `json:"recordedAt"`
}

// ReminderType distinguishes the kinds of calendar reminders.
type ReminderType string

const (
	ReminderStageStart ReminderType = "stage_start"
	ReminderTask       ReminderType = "task"
	ReminderHarvest    ReminderType = "harvest"
)

// Reminder is one scheduled calendar entry.
type Reminder struct {
	ID        string       `json:"id"`
	CropID    string       `json:"cropId"`
	CropName  string       `json:"cropName"`
	Type      ReminderType `json:"type"`
	Title     string       `json:"title"`
	Message   string       `json:"message"`
	Due       time.Time    `json:"due"`
	Tasks     []string     `json:"tasks,omitempty"`
	Completed bool         `json:"completed"`
}
