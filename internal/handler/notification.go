package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/push"
	"github.com/EanHD/homework-app/internal/store"
)

// notificationScheduler is the store surface Schedule needs.
type notificationScheduler interface {
	Upsert(userID *string, assignmentID, title, body, url string, sendAt time.Time) (*model.ScheduledNotification, error)
	CancelPending(userID *string, assignmentID string, at time.Time) (int64, error)
}

// NotificationHandler is the ingestion endpoint for durable reminders:
// schedule (insert or re-arm) and cancel, plus the on-demand delivery sweep.
type NotificationHandler struct {
	notificationStore notificationScheduler
	sweep             *push.Sweep
	logger            *slog.Logger
}

func NewNotificationHandler(ns *store.NotificationStore, sweep *push.Sweep, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{notificationStore: ns, sweep: sweep, logger: logger}
}

type scheduleRequest struct {
	AssignmentID string `json:"assignment_id"`
	Title        string `json:"title"`
	Body         string `json:"body"`
	URL          string `json:"url"`
	SendAt       string `json:"send_at"`
	UserID       string `json:"user_id"`
	Cancel       bool   `json:"cancel"`
}

// Schedule handles POST /api/notifications. A cancel:true body marks all
// pending rows for the caller's (assignment_id, user_id) key; otherwise the
// row is inserted, falling back to an update when the key already exists.
func (h *NotificationHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.AssignmentID == "" {
		writeError(w, http.StatusBadRequest, "assignment_id is required")
		return
	}

	owner, status, msg := resolveOwner(r, req.UserID)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	if req.Cancel {
		count, err := h.notificationStore.CancelPending(owner, req.AssignmentID, time.Now().UTC())
		if err != nil {
			h.logger.Error("cancel notification", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to cancel notification")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "notification cancelled",
			"count":   count,
		})
		return
	}

	if req.Title == "" || req.Body == "" || req.SendAt == "" {
		writeError(w, http.StatusBadRequest, "title, body, and send_at are required")
		return
	}

	sendAt, err := time.Parse(time.RFC3339, req.SendAt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "send_at must be a valid RFC 3339 timestamp")
		return
	}

	n, err := h.notificationStore.Upsert(owner, req.AssignmentID, req.Title, req.Body, req.URL, sendAt.UTC())
	if err != nil {
		h.logger.Error("schedule notification", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to schedule notification")
		return
	}
	if n == nil {
		// The row was deleted between the conflict update and the
		// re-read. The client can simply retry.
		h.logger.Warn("scheduled notification vanished before read-back", "assignment_id", req.AssignmentID)
		writeError(w, http.StatusInternalServerError, "failed to schedule notification")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "notification scheduled",
		"notification_id": n.ID,
		"scheduled_for":   n.SendAt.UTC().Format(time.RFC3339),
	})
}

// RunSweep handles POST /api/notifications/sweep, delivering all due rows and
// returning the summary counts.
func (h *NotificationHandler) RunSweep(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sweep.Run()
	if err != nil {
		h.logger.Error("delivery sweep", "error", err)
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}
