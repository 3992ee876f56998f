package auth

import "context"

type contextKey struct{}

// WithUser returns a context carrying the verified user ID.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the verified user ID from the context, or nil if the
// request is anonymous. The pointer form matches the nullable user_id column
// on server-owned rows.
func UserID(ctx context.Context) *string {
	id, ok := ctx.Value(contextKey{}).(string)
	if !ok || id == "" {
		return nil
	}
	return &id
}

// IsAuthenticated reports whether the context carries a verified identity.
func IsAuthenticated(ctx context.Context) bool {
	return UserID(ctx) != nil
}
