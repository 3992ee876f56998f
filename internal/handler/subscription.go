package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/EanHD/homework-app/internal/push"
	"github.com/EanHD/homework-app/internal/store"
)

// SubscriptionHandler is the push subscription registry: one active
// subscription per identity, identity-scoped deletes, and the VAPID public
// key the browser needs to subscribe.
type SubscriptionHandler struct {
	subscriptionStore *store.SubscriptionStore
	service           *push.Service
	logger            *slog.Logger
}

func NewSubscriptionHandler(ss *store.SubscriptionStore, svc *push.Service, logger *slog.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subscriptionStore: ss, service: svc, logger: logger}
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
	UserID     string `json:"user_id"`
	DeviceName string `json:"device_name"`
}

// Subscribe handles POST /api/subscriptions. Prior subscriptions for the
// caller's identity are replaced rather than accumulated.
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		writeError(w, http.StatusBadRequest, "subscription endpoint and keys are required")
		return
	}

	owner, status, msg := resolveOwner(r, req.UserID)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	saved, err := h.subscriptionStore.Replace(owner, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth, req.DeviceName)
	if err != nil {
		h.logger.Error("save subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"message":         "subscription saved",
		"subscription_id": saved.ID,
	})
}

type unsubscribeRequest struct {
	Endpoint string `json:"endpoint"`
	UserID   string `json:"user_id"`
}

// Unsubscribe handles DELETE /api/subscriptions. The delete is scoped to the
// caller's identity, so knowing another user's endpoint is not enough to
// remove it.
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	var req unsubscribeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	if req.Endpoint == "" {
		writeError(w, http.StatusBadRequest, "endpoint is required")
		return
	}

	owner, status, msg := resolveOwner(r, req.UserID)
	if status != 0 {
		writeError(w, status, msg)
		return
	}

	if _, err := h.subscriptionStore.Delete(req.Endpoint, owner); err != nil {
		h.logger.Error("delete subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete subscription")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// VAPIDKey handles GET /api/subscriptions/vapid-key.
func (h *SubscriptionHandler) VAPIDKey(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"public_key": h.service.VAPIDPublicKey()})
}
