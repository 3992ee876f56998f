package handler

import (
	"encoding/json"
	"net/http"

	"github.com/EanHD/homework-app/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

// resolveOwner binds the caller's identity for a request that may carry a
// user_id in its body. A body user_id without a verified credential is
// rejected as unauthorized; a mismatch with the verified identity is
// forbidden. The returned owner is the verified identity, or nil for
// anonymous callers.
func resolveOwner(r *http.Request, bodyUserID string) (*string, int, string) {
	verified := auth.UserID(r.Context())

	if bodyUserID != "" {
		if verified == nil {
			return nil, http.StatusUnauthorized, "user_id requires authentication"
		}
		if *verified != bodyUserID {
			return nil, http.StatusForbidden, "user_id does not match authenticated user"
		}
	}

	return verified, 0, ""
}
