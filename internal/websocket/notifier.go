package websocket

import "github.com/EanHD/homework-app/internal/reminder"

// ReminderNotifier surfaces in-process reminders to connected tabs over the
// hub. A reminder can only be shown when at least one tab is connected, so
// PermissionGranted doubles as a presence check.
type ReminderNotifier struct {
	hub *Hub
}

// NewReminderNotifier creates a ReminderNotifier backed by the given hub.
func NewReminderNotifier(hub *Hub) *ReminderNotifier {
	return &ReminderNotifier{hub: hub}
}

// PermissionGranted reports whether any client is connected to receive
// reminders.
func (n *ReminderNotifier) PermissionGranted() bool {
	return n.hub.ClientCount() > 0
}

// Show broadcasts the reminder to all connected clients.
func (n *ReminderNotifier) Show(note reminder.Notification) error {
	n.hub.Broadcast(NewMessage("reminder", "fired", note.AssignmentID, map[string]any{
		"title": note.Title,
		"body":  note.Body,
		"url":   note.URL,
		"tag":   note.Tag,
	}))
	return nil
}
