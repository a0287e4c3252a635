package cache

// Logical keys, prefixed with the configured namespace before they reach the
// raw store.
const (
	KeyScanHistory   = "scan_history"
	KeyChatHistory   = "chat_history"
	KeySettings      = "settings"
	KeyPendingSync   = "pending_sync"
	KeyUserLocation  = "user_location"
	KeyPestSightings = "pest_sightings"
	KeyCalendarCrops = "calendar_crops"
	KeyReminders     = "calendar_reminders"

	weatherKeyPrefix = "weather_"
)
