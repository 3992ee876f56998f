package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/reminder"
	"github.com/EanHD/homework-app/internal/store"
	"github.com/EanHD/homework-app/internal/websocket"
)

// AssignmentHandler serves assignment CRUD. Every mutation resyncs the
// in-process scheduler and notifies the remote gateway so both reminder
// paths track the latest state.
type AssignmentHandler struct {
	assignmentStore *store.AssignmentStore
	classStore      *store.ClassStore
	hub             *websocket.Hub
	scheduler       *reminder.Scheduler
	gateway         *reminder.Gateway
	logger          *slog.Logger
}

func NewAssignmentHandler(as *store.AssignmentStore, cs *store.ClassStore, hub *websocket.Hub, sched *reminder.Scheduler, gw *reminder.Gateway, logger *slog.Logger) *AssignmentHandler {
	return &AssignmentHandler{
		assignmentStore: as,
		classStore:      cs,
		hub:             hub,
		scheduler:       sched,
		gateway:         gw,
		logger:          logger,
	}
}

func (h *AssignmentHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

func (h *AssignmentHandler) resync() {
	if h.scheduler != nil {
		h.scheduler.Resync()
	}
}

func (h *AssignmentHandler) notifyChanged(a model.Assignment) {
	if h.gateway != nil {
		h.gateway.AssignmentChanged(a)
	}
}

func (h *AssignmentHandler) notifyDeleted(id string) {
	if h.gateway != nil {
		h.gateway.AssignmentDeleted(id)
	}
}

type assignmentRequest struct {
	ClassID         string    `json:"class_id"`
	Title           string    `json:"title"`
	Notes           string    `json:"notes"`
	DueAt           time.Time `json:"due_at"`
	RemindAtMinutes *int      `json:"remind_at_minutes"`
}

func (h *AssignmentHandler) validate(req *assignmentRequest) (int, string) {
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		return http.StatusBadRequest, "title is required"
	}
	if req.DueAt.IsZero() {
		return http.StatusBadRequest, "due_at is required"
	}
	if req.RemindAtMinutes != nil && *req.RemindAtMinutes < 0 {
		return http.StatusBadRequest, "remind_at_minutes must not be negative"
	}

	if req.ClassID != "" {
		class, err := h.classStore.GetByID(req.ClassID)
		if err != nil {
			return http.StatusInternalServerError, "failed to check class"
		}
		if class == nil {
			return http.StatusBadRequest, "class not found"
		}
	}
	return 0, ""
}

func (h *AssignmentHandler) List(w http.ResponseWriter, r *http.Request) {
	assignments, err := h.assignmentStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list assignments")
		return
	}
	if assignments == nil {
		assignments = []model.Assignment{}
	}
	writeJSON(w, http.StatusOK, assignments)
}

func (h *AssignmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.assignmentStore.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignment")
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if status, msg := h.validate(&req); status != 0 {
		writeError(w, status, msg)
		return
	}

	a, err := h.assignmentStore.Create(req.ClassID, req.Title, req.Notes, req.DueAt, req.RemindAtMinutes)
	if err != nil {
		h.logger.Error("create assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create assignment")
		return
	}

	h.resync()
	h.notifyChanged(*a)
	h.broadcast(websocket.NewMessage("assignment", "created", a.ID, nil))

	writeJSON(w, http.StatusCreated, a)
}

func (h *AssignmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.assignmentStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignment")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if status, msg := h.validate(&req); status != 0 {
		writeError(w, status, msg)
		return
	}

	a, err := h.assignmentStore.Update(id, req.ClassID, req.Title, req.Notes, req.DueAt, req.RemindAtMinutes)
	if err != nil {
		h.logger.Error("update assignment", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update assignment")
		return
	}

	h.resync()
	h.notifyChanged(*a)
	h.broadcast(websocket.NewMessage("assignment", "updated", a.ID, nil))

	writeJSON(w, http.StatusOK, a)
}

type completeRequest struct {
	Completed bool `json:"completed"`
}

// SetCompleted handles marking an assignment done or undone. Completing
// cancels the durable reminder through the gateway; un-completing re-arms it.
func (h *AssignmentHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.assignmentStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get assignment")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "assignment not found")
		return
	}

	var req completeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	a, err := h.assignmentStore.SetCompleted(id, req.Completed, time.Now().UTC())
	if err != nil {
		h.logger.Error("set assignment completed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update assignment")
		return
	}

	h.resync()
	h.notifyChanged(*a)
	h.broadcast(websocket.NewMessage("assignment", "updated", a.ID, nil))

	writeJSON(w, http.StatusOK, a)
}

func (h *AssignmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.assignmentStore.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete assignment")
		return
	}

	h.resync()
	h.notifyDeleted(id)
	h.broadcast(websocket.NewMessage("assignment", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
