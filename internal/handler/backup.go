package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/EanHD/homework-app/internal/backup"
	"github.com/EanHD/homework-app/internal/reminder"
	"github.com/EanHD/homework-app/internal/websocket"
)

type BackupHandler struct {
	service   *backup.Service
	manager   *backup.Manager
	hub       *websocket.Hub
	scheduler *reminder.Scheduler
	logger    *slog.Logger
}

func NewBackupHandler(svc *backup.Service, mgr *backup.Manager, hub *websocket.Hub, sched *reminder.Scheduler, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{service: svc, manager: mgr, hub: hub, scheduler: sched, logger: logger}
}

// Export handles GET /api/backup/export, streaming a JSON snapshot.
func (h *BackupHandler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="homework-backup.json"`)
	if err := h.service.ExportJSON(w); err != nil {
		h.logger.Error("export backup", "error", err)
	}
}

// Import handles POST /api/backup/import, replacing current data with the
// uploaded snapshot and resyncing reminders afterwards.
func (h *BackupHandler) Import(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ImportJSON(r.Body); err != nil {
		h.logger.Error("import backup", "error", err)
		writeError(w, http.StatusBadRequest, "invalid backup file")
		return
	}

	if h.scheduler != nil {
		h.scheduler.Resync()
	}
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("backup", "imported", "", nil))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "backup imported"})
}

// Status handles GET /api/backup/status.
func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.Status())
}

// RunNow handles POST /api/backup/run, uploading an encrypted snapshot to
// remote storage.
func (h *BackupHandler) RunNow(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeError(w, http.StatusConflict, "remote backup is not configured")
		return
	}

	key, err := h.manager.RunNow(r.Context())
	if err != nil {
		h.logger.Error("run backup", "error", err)
		writeError(w, http.StatusInternalServerError, "backup failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "key": key})
}

type restoreRequest struct {
	Key string `json:"key"`
}

// Restore handles POST /api/backup/restore, replacing current data with a
// previously uploaded remote snapshot.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if !h.manager.Enabled() {
		writeError(w, http.StatusConflict, "remote backup is not configured")
		return
	}

	var req restoreRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Key == "" {
		writeError(w, http.StatusBadRequest, "key is required")
		return
	}

	if err := h.manager.Restore(r.Context(), req.Key); err != nil {
		h.logger.Error("restore backup", "error", err)
		writeError(w, http.StatusInternalServerError, "restore failed")
		return
	}

	if h.scheduler != nil {
		h.scheduler.Resync()
	}
	if h.hub != nil {
		h.hub.Broadcast(websocket.NewMessage("backup", "imported", "", nil))
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
