package model

import "time"

// Assignment is one homework item. RemindAtMinutes is the per-assignment
// reminder lead time in minutes before DueAt; nil means the assignment has
// no explicit reminder of its own.
type Assignment struct {
	ID              string     `json:"id"`
	ClassID         string     `json:"class_id,omitempty"`
	ClassName       string     `json:"class_name,omitempty"`
	Title           string     `json:"title"`
	Notes           string     `json:"notes,omitempty"`
	DueAt           time.Time  `json:"due_at"`
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	RemindAtMinutes *int       `json:"remind_at_minutes,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}
