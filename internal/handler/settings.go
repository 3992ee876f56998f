package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"

	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/reminder"
	"github.com/EanHD/homework-app/internal/store"
	"github.com/EanHD/homework-app/internal/websocket"
)

var timeFormatRegexp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

var (
	errInvalidOffset     = errors.New("reminder_offset must be 10, 30, or 60")
	errInvalidQuietHours = errors.New("quiet hours must be HH:mm times")
)

type SettingsHandler struct {
	settingsStore *store.SettingsStore
	hub           *websocket.Hub
	scheduler     *reminder.Scheduler
}

func NewSettingsHandler(ss *store.SettingsStore, hub *websocket.Hub, sched *reminder.Scheduler) *SettingsHandler {
	return &SettingsHandler{settingsStore: ss, hub: hub, scheduler: sched}
}

func (h *SettingsHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settingsStore.ReminderSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req model.ReminderSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if err := validateReminderSettings(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.settingsStore.SetReminderSettings(req); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save settings")
		return
	}

	h.broadcast(websocket.NewMessage("settings", "updated", "", nil))
	if h.scheduler != nil {
		h.scheduler.Resync()
	}

	writeJSON(w, http.StatusOK, req)
}

func validateReminderSettings(s model.ReminderSettings) error {
	switch s.ReminderOffset {
	case 10, 30, 60:
	default:
		return errInvalidOffset
	}
	if s.QuietHoursEnabled {
		if !timeFormatRegexp.MatchString(s.QuietHoursStart) || !timeFormatRegexp.MatchString(s.QuietHoursEnd) {
			return errInvalidQuietHours
		}
	}
	return nil
}
