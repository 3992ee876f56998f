package store

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/EanHD/homework-app/internal/model"
)

var reminderKeys = []string{
	"notifications_enabled",
	"reminder_offset_minutes",
	"quiet_hours_enabled",
	"quiet_hours_start",
	"quiet_hours_end",
}

type SettingsStore struct {
	db *sql.DB
}

func NewSettingsStore(db *sql.DB) *SettingsStore {
	return &SettingsStore{db: db}
}

func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("setting %q not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

// ReminderSettings reads the typed notification configuration. Missing keys
// fall back to the defaults the migration seeds.
func (s *SettingsStore) ReminderSettings() (model.ReminderSettings, error) {
	cfg := model.ReminderSettings{
		NotificationsEnabled: true,
		ReminderOffset:       30,
		QuietHoursStart:      "22:00",
		QuietHoursEnd:        "07:00",
	}

	all, err := s.GetAll()
	if err != nil {
		return cfg, err
	}

	if v, ok := all["notifications_enabled"]; ok {
		cfg.NotificationsEnabled = v == "true"
	}
	if v, ok := all["reminder_offset_minutes"]; ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.ReminderOffset = n
		}
	}
	if v, ok := all["quiet_hours_enabled"]; ok {
		cfg.QuietHoursEnabled = v == "true"
	}
	if v, ok := all["quiet_hours_start"]; ok && v != "" {
		cfg.QuietHoursStart = v
	}
	if v, ok := all["quiet_hours_end"]; ok && v != "" {
		cfg.QuietHoursEnd = v
	}
	return cfg, nil
}

// SetReminderSettings writes the typed notification configuration back to
// the key/value table.
func (s *SettingsStore) SetReminderSettings(cfg model.ReminderSettings) error {
	values := map[string]string{
		"notifications_enabled":   strconv.FormatBool(cfg.NotificationsEnabled),
		"reminder_offset_minutes": strconv.Itoa(cfg.ReminderOffset),
		"quiet_hours_enabled":     strconv.FormatBool(cfg.QuietHoursEnabled),
		"quiet_hours_start":       cfg.QuietHoursStart,
		"quiet_hours_end":         cfg.QuietHoursEnd,
	}
	for _, key := range reminderKeys {
		if err := s.Set(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}
