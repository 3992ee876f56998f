package model

import "time"

// ScheduledNotification is a durable reminder row: one pending or resolved
// push obligation for one assignment and one user. UserID is nil for
// anonymous rows. SentAt doubles as the cancellation marker: a cancelled
// reminder keeps its row with SentAt set, so a stale send_at can never be
// resurrected by accident.
type ScheduledNotification struct {
	ID           int64      `json:"id"`
	UserID       *string    `json:"user_id,omitempty"`
	AssignmentID string     `json:"assignment_id"`
	Title        string     `json:"title"`
	Body         string     `json:"body"`
	URL          string     `json:"url,omitempty"`
	SendAt       time.Time  `json:"send_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Pending reports whether the reminder is still waiting to be delivered.
func (n *ScheduledNotification) Pending() bool {
	return n.SentAt == nil
}
