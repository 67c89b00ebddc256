package store

import (
	"github.com/google/uuid"

	"github.com/cppla/arz/models"
)

// Notify records a toast, newest first, trimming the list to the configured cap.
func (s *Store) Notify(kind, message string) (models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := models.Notification{
		ID:        uuid.NewString(),
		Type:      kind,
		Message:   message,
		Timestamp: s.now().UTC(),
	}
	next := make([]models.Notification, 0, len(s.notifications)+1)
	next = append(next, n)
	next = append(next, s.notifications...)
	if len(next) > s.maxNotes {
		next = next[:s.maxNotes]
	}
	if err := s.commitNotifications(next); err != nil {
		return models.Notification{}, err
	}
	return n, nil
}

// Notifications returns the stored toasts, newest first.
func (s *Store) Notifications() []models.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Notification{}, s.notifications...)
}

// UnreadCount returns how many toasts are unread.
func (s *Store) UnreadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, note := range s.notifications {
		if !note.Read {
			n++
		}
	}
	return n
}

// MarkAllRead flags every toast as read.
func (s *Store) MarkAllRead() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := append([]models.Notification{}, s.notifications...)
	for i := range next {
		next[i].Read = true
	}
	return s.commitNotifications(next)
}

// ClearNotifications drops every toast.
func (s *Store) ClearNotifications() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.commitNotifications([]models.Notification{})
}

func (s *Store) commitNotifications(next []models.Notification) error {
	if err := s.writeJSON(KeyNotifications, next); err != nil {
		return err
	}
	s.notifications = next
	return nil
}
