package domain

import "time"

// NotificationCategory tags a notification with the event that raised it.
type NotificationCategory string

const (
	NotificationNewComplaint   NotificationCategory = "NEW_COMPLAINT"
	NotificationAssigned       NotificationCategory = "ASSIGNED"
	NotificationRejected       NotificationCategory = "REJECTED"
	NotificationResolved       NotificationCategory = "RESOLVED"
	NotificationVerified       NotificationCategory = "VERIFIED"
	NotificationDeadlineMissed NotificationCategory = "DEADLINE_MISSED"
)

// Notification targets exactly one user. The read flag flips once.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Category  NotificationCategory
	Read      bool
	CreatedAt time.Time
}
