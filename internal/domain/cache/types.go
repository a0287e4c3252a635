package cache

import (
	"encoding/json"
	"time"
)

// HealthStatus is the closed set of plant conditions a scan can report.
type HealthStatus string

const (
	HealthHealthy  HealthStatus = "healthy"
	HealthMild     HealthStatus = "mild"
	HealthModerate HealthStatus = "moderate"
	HealthSevere   HealthStatus = "severe"
	HealthUnknown  HealthStatus = "unknown"
)

// ParseHealthStatus maps free-form backend values onto the closed set.
func ParseHealthStatus(raw string) HealthStatus {
	switch HealthStatus(raw) {
	case HealthHealthy, HealthMild, HealthModerate, HealthSevere:
		return HealthStatus(raw)
	default:
		return HealthUnknown
	}
}

// Disease describes one detected issue on a scanned plant.
type Disease struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
}

// ScanRecord is one completed analysis, online or offline. Immutable after
// creation except for the Synced flag and the authoritative remote result
// attached when an offline scan is reconciled.
type ScanRecord struct {
	ID              string       `json:"id"`
	PlantName       string       `json:"plantName"`
	PlantType       string       `json:"plantType"`
	HealthStatus    HealthStatus `json:"healthStatus"`
	Diseases        []Disease    `json:"diseases"`
	Recommendations []string     `json:"recommendations"`
	Confidence      float64      `json:"confidence"`
	ImageRef        string       `json:"imageRef,omitempty"`
	CapturedAt      time.Time    `json:"capturedAt"`
	Offline         bool         `json:"offline,omitempty"`
	Synced          bool         `json:"synced"`
}

// ChatSender identifies which side of the plant conversation spoke.
type ChatSender string

const (
	SenderUser  ChatSender = "user"
	SenderPlant ChatSender = "plant"
)

// ChatMessage is one line of the plant chat transcript.
type ChatMessage struct {
	Sender ChatSender `json:"sender"`
	Text   string     `json:"text"`
	SentAt time.Time  `json:"sentAt"`
}

// Settings holds the user preferences persisted across sessions.
type Settings struct {
	TTSEnabled           bool   `json:"ttsEnabled"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
	OrganicPreference    bool   `json:"organicPreference"`
	Language             string `json:"language"`
}

// DefaultSettings returns the preferences used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		TTSEnabled:           true,
		NotificationsEnabled: true,
		OrganicPreference:    false,
		Language:             "en",
	}
}

// Location is a stored coordinate pair.
type Location struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Stats summarizes the scan history for the dashboard.
type Stats struct {
	Total   int `json:"total"`
	Healthy int `json:"healthy"`
	Issues  int `json:"issues"`
}

// weatherEnvelope wraps a cached weather payload; the payload itself is
// opaque to the cache layer.
type weatherEnvelope struct {
	Payload  json.RawMessage `json:"payload"`
	CachedAt time.Time       `json:"cachedAt"`
}
