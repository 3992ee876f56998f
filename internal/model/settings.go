package model

// ReminderSettings is the user-scoped notification configuration, backed by
// the settings key/value table and read on every scheduling pass.
type ReminderSettings struct {
	NotificationsEnabled bool   `json:"notifications_enabled"`
	ReminderOffset       int    `json:"reminder_offset"` // default minutes before due: 10, 30, or 60
	QuietHoursEnabled    bool   `json:"quiet_hours_enabled"`
	QuietHoursStart      string `json:"quiet_hours_start"` // "HH:mm"
	QuietHoursEnd        string `json:"quiet_hours_end"`   // "HH:mm"
}
