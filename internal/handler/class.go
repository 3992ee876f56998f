package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/EanHD/homework-app/internal/model"
	"github.com/EanHD/homework-app/internal/store"
	"github.com/EanHD/homework-app/internal/websocket"
)

type ClassHandler struct {
	classStore *store.ClassStore
	hub        *websocket.Hub
}

func NewClassHandler(cs *store.ClassStore, hub *websocket.Hub) *ClassHandler {
	return &ClassHandler{classStore: cs, hub: hub}
}

func (h *ClassHandler) broadcast(msg websocket.Message) {
	if h.hub != nil {
		h.hub.Broadcast(msg)
	}
}

type classRequest struct {
	Name  string `json:"name"`
	Emoji string `json:"emoji"`
}

func (h *ClassHandler) List(w http.ResponseWriter, r *http.Request) {
	classes, err := h.classStore.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list classes")
		return
	}
	if classes == nil {
		classes = []model.Class{}
	}
	writeJSON(w, http.StatusOK, classes)
}

func (h *ClassHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	class, err := h.classStore.Create(req.Name, req.Emoji)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create class")
		return
	}

	h.broadcast(websocket.NewMessage("class", "created", class.ID, nil))

	writeJSON(w, http.StatusCreated, class)
}

func (h *ClassHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	existing, err := h.classStore.GetByID(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get class")
		return
	}
	if existing == nil {
		writeError(w, http.StatusNotFound, "class not found")
		return
	}

	var req classRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}

	class, err := h.classStore.Update(id, req.Name, req.Emoji)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to update class")
		return
	}

	h.broadcast(websocket.NewMessage("class", "updated", class.ID, nil))

	writeJSON(w, http.StatusOK, class)
}

func (h *ClassHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.classStore.Delete(id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete class")
		return
	}

	h.broadcast(websocket.NewMessage("class", "deleted", id, nil))

	w.WriteHeader(http.StatusNoContent)
}
