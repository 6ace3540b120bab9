package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// NotificationService turns lifecycle events into per-user notifications and
// serves the notification inbox. Delivery is best-effort: a failed insert is
// logged and dropped, never propagated back to the transition that caused it.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	logger        *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(
	notifications repository.NotificationRepository,
	users repository.UserRepository,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		logger:        logger,
	}
}

// Register subscribes the service to every lifecycle event.
func (s *NotificationService) Register(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventComplaintCreated, s.onCreated)
	dispatcher.Subscribe(events.EventComplaintAssigned, s.onAssigned)
	dispatcher.Subscribe(events.EventComplaintAccepted, s.onAccepted)
	dispatcher.Subscribe(events.EventComplaintRejected, s.onRejected)
	dispatcher.Subscribe(events.EventComplaintResolved, s.onResolved)
	dispatcher.Subscribe(events.EventComplaintVerified, s.onVerified)
	dispatcher.Subscribe(events.EventComplaintEscalated, s.onEscalated)
}

func (s *NotificationService) onCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintCreatedPayload)
	if !ok {
		return nil
	}
	s.notifyAdmins(ctx, domain.Notification{
		Title:    "New Complaint",
		Message:  fmt.Sprintf("New complaint submitted by %s: %s", payload.StudentName, payload.Title),
		Category: domain.NotificationNewComplaint,
	})
	return nil
}

func (s *NotificationService) onAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintAssignedPayload)
	if !ok {
		return nil
	}
	s.deliver(ctx, domain.Notification{
		UserID:   payload.TechnicianID,
		Title:    "New Assignment",
		Message:  fmt.Sprintf("You have been assigned complaint: %s", payload.Title),
		Category: domain.NotificationAssigned,
	})
	return nil
}

func (s *NotificationService) onAccepted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintAcceptedPayload)
	if !ok {
		return nil
	}
	s.notifyAdmins(ctx, domain.Notification{
		Title:    "Complaint Accepted",
		Message:  fmt.Sprintf("%s accepted complaint: %s", payload.TechnicianName, payload.Title),
		Category: domain.NotificationAssigned,
	})
	return nil
}

func (s *NotificationService) onRejected(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintRejectedPayload)
	if !ok {
		return nil
	}
	s.notifyAdmins(ctx, domain.Notification{
		Title:    "Complaint Rejected",
		Message:  fmt.Sprintf("%s rejected complaint: %s. Reason: %s", payload.TechnicianName, payload.Title, payload.Reason),
		Category: domain.NotificationRejected,
	})
	return nil
}

func (s *NotificationService) onResolved(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintResolvedPayload)
	if !ok {
		return nil
	}
	s.notifyAdmins(ctx, domain.Notification{
		Title:    "Complaint Resolved",
		Message:  fmt.Sprintf("%s resolved complaint: %s", payload.TechnicianName, payload.Title),
		Category: domain.NotificationResolved,
	})
	s.deliver(ctx, domain.Notification{
		UserID:   payload.StudentID,
		Title:    "Complaint Resolved",
		Message:  fmt.Sprintf("Your complaint %q has been resolved and awaits verification", payload.Title),
		Category: domain.NotificationResolved,
	})
	return nil
}

func (s *NotificationService) onVerified(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintVerifiedPayload)
	if !ok {
		return nil
	}
	s.deliver(ctx, domain.Notification{
		UserID:   payload.StudentID,
		Title:    "Complaint Verified",
		Message:  fmt.Sprintf("Your complaint %q has been verified. You can now submit feedback", payload.Title),
		Category: domain.NotificationVerified,
	})
	return nil
}

func (s *NotificationService) onEscalated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ComplaintEscalatedPayload)
	if !ok {
		return nil
	}
	s.notifyAdmins(ctx, domain.Notification{
		Title:    "Complaint Overdue",
		Message:  fmt.Sprintf("Complaint %q assigned to %s is overdue (escalation level %d)", payload.Title, payload.TechnicianName, payload.Level),
		Category: domain.NotificationDeadlineMissed,
	})
	return nil
}

func (s *NotificationService) notifyAdmins(ctx context.Context, template domain.Notification) {
	admins, err := s.users.ListByRole(ctx, domain.RoleAdmin)
	if err != nil {
		s.logger.Warn("admin lookup for notification failed", zap.Error(err))
		return
	}
	for _, admin := range admins {
		notification := template
		notification.UserID = admin.ID
		s.deliver(ctx, notification)
	}
}

func (s *NotificationService) deliver(ctx context.Context, notification domain.Notification) {
	if err := s.notifications.Create(ctx, &notification); err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("user_id", notification.UserID),
			zap.String("category", string(notification.Category)),
			zap.Error(err),
		)
	}
}

// ListForUser returns the caller's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, actor *domain.User, limit int) ([]domain.Notification, int, error) {
	if actor == nil {
		return nil, 0, apperrors.NewUnauthorized("authentication required")
	}
	notifications, err := s.notifications.ListByUser(ctx, actor.ID, limit)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	unread, err := s.notifications.CountUnread(ctx, actor.ID)
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return notifications, unread, nil
}

// MarkRead flips a notification's read flag. Only the recipient may do so.
func (s *NotificationService) MarkRead(ctx context.Context, actor *domain.User, notificationID string) error {
	if actor == nil {
		return apperrors.NewUnauthorized("authentication required")
	}
	notification, err := s.notifications.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("notification", map[string]any{"notification_id": notificationID})
		}
		return apperrors.MapError(err)
	}
	if notification.UserID != actor.ID {
		return apperrors.NewForbidden("you can only update your own notifications")
	}
	if err := s.notifications.MarkRead(ctx, notificationID); err != nil {
		return apperrors.MapError(err)
	}
	return nil
}
