package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// NotificationResponse response.
type NotificationResponse struct {
	ID        string                      `json:"id"`
	Title     string                      `json:"title"`
	Message   string                      `json:"message"`
	Category  domain.NotificationCategory `json:"category"`
	Read      bool                        `json:"read"`
	CreatedAt time.Time                   `json:"created_at"`
}

// NotificationListResponse wraps the inbox with its unread counter.
type NotificationListResponse struct {
	Items  []NotificationResponse `json:"items"`
	Unread int                    `json:"unread"`
}

// NewNotificationList maps domain notifications.
func NewNotificationList(notifications []domain.Notification, unread int) NotificationListResponse {
	items := make([]NotificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, NotificationResponse{
			ID:        n.ID,
			Title:     n.Title,
			Message:   n.Message,
			Category:  n.Category,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}
	return NotificationListResponse{Items: items, Unread: unread}
}
