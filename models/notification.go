package models

import "time"

// Notification types.
const (
	NotifySuccess = "success"
	NotifyInfo    = "info"
	NotifyError   = "error"
)

// Notification is a toast message kept in client storage.
type Notification struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Read      bool      `json:"read"`
}
