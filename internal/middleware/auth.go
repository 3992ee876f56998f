package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/EanHD/homework-app/internal/auth"
)

// Identity verifies an optional Authorization bearer token and binds the
// resulting user ID into the request context. Requests without a credential
// pass through as anonymous; a credential that fails verification is
// rejected with 401 rather than silently downgraded to anonymous.
func Identity(verifier *auth.Verifier, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				unauthorized(w, "malformed authorization header")
				return
			}

			userID, err := verifier.Verify(token)
			if err != nil {
				logger.Debug("bearer verification failed", "error", err)
				unauthorized(w, "invalid credentials")
				return
			}

			ctx := auth.WithUser(r.Context(), userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]any{"success": false, "error": msg})
}
