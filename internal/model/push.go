package model

import "time"

// PushSubscription is a browser-issued Web Push endpoint plus its encryption
// keys, registered under a user identity or anonymously (UserID nil).
// Endpoint is unique and acts as the natural key for pruning.
type PushSubscription struct {
	ID         int64     `json:"id"`
	UserID     *string   `json:"user_id,omitempty"`
	Endpoint   string    `json:"endpoint"`
	P256dhKey  string    `json:"p256dh_key"`
	AuthKey    string    `json:"auth_key"`
	DeviceName string    `json:"device_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
