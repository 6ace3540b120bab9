package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

func newNotificationFixture(t *testing.T) (*fakeNotificationRepo, events.Dispatcher, *service.NotificationService) {
	t.Helper()
	repo := &fakeNotificationRepo{}
	users := newFakeUserRepo(student, admin, tech,
		&domain.User{ID: "admin-2", Name: "Second Admin", Role: domain.RoleAdmin})
	svc := service.NewNotificationService(repo, users, zap.NewNop())
	dispatcher := events.NewInMemoryDispatcher()
	svc.Register(dispatcher)
	return repo, dispatcher, svc
}

func TestCreatedEventNotifiesAllAdmins(t *testing.T) {
	repo, dispatcher, _ := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: "c-1",
		Payload: events.ComplaintCreatedPayload{
			Title:       "WiFi down",
			StudentName: "Alice Student",
		},
	})
	require.NoError(t, err)

	for _, adminID := range []string{"admin-1", "admin-2"} {
		inbox := repo.forUser(adminID)
		require.Len(t, inbox, 1, "admin %s", adminID)
		assert.Equal(t, "New Complaint", inbox[0].Title)
		assert.Equal(t, domain.NotificationNewComplaint, inbox[0].Category)
	}
	assert.Empty(t, repo.forUser(student.ID))
}

func TestAssignedEventNotifiesTechnician(t *testing.T) {
	repo, dispatcher, _ := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: "c-1",
		Payload: events.ComplaintAssignedPayload{
			Title:        "WiFi down",
			TechnicianID: tech.ID,
			Deadline:     time.Now().Add(24 * time.Hour),
		},
	})
	require.NoError(t, err)

	inbox := repo.forUser(tech.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, "New Assignment", inbox[0].Title)
	assert.Equal(t, domain.NotificationAssigned, inbox[0].Category)
}

func TestVerifiedEventNotifiesStudent(t *testing.T) {
	repo, dispatcher, _ := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintVerified,
		ComplaintID: "c-1",
		Payload: events.ComplaintVerifiedPayload{
			Title:     "WiFi down",
			StudentID: student.ID,
		},
	})
	require.NoError(t, err)

	inbox := repo.forUser(student.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, domain.NotificationVerified, inbox[0].Category)
}

func TestEscalatedEventNotifiesAdminsAsDeadlineMissed(t *testing.T) {
	repo, dispatcher, _ := newNotificationFixture(t)

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:        events.EventComplaintEscalated,
		ComplaintID: "c-1",
		Payload: events.ComplaintEscalatedPayload{
			Title:          "WiFi down",
			TechnicianName: "John IT",
			Level:          2,
		},
	})
	require.NoError(t, err)

	inbox := repo.forUser(admin.ID)
	require.Len(t, inbox, 1)
	assert.Equal(t, "Complaint Overdue", inbox[0].Title)
	assert.Equal(t, domain.NotificationDeadlineMissed, inbox[0].Category)
}

func TestDeliveryFailureIsSwallowed(t *testing.T) {
	repo, dispatcher, _ := newNotificationFixture(t)
	repo.failCreate = true

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:    events.EventComplaintCreated,
		Payload: events.ComplaintCreatedPayload{Title: "x", StudentName: "y"},
	})
	assert.NoError(t, err)
}

func TestInboxAndMarkRead(t *testing.T) {
	_, dispatcher, svc := newNotificationFixture(t)
	ctx := context.Background()

	err := dispatcher.Publish(ctx, events.Event{
		Type: events.EventComplaintVerified,
		Payload: events.ComplaintVerifiedPayload{
			Title:     "WiFi down",
			StudentID: student.ID,
		},
	})
	require.NoError(t, err)

	inbox, unread, err := svc.ListForUser(ctx, student, 0)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	assert.Equal(t, 1, unread)

	// Another user cannot mark it read.
	err = svc.MarkRead(ctx, tech, inbox[0].ID)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	require.NoError(t, svc.MarkRead(ctx, student, inbox[0].ID))
	_, unread, err = svc.ListForUser(ctx, student, 0)
	require.NoError(t, err)
	assert.Zero(t, unread)

	err = svc.MarkRead(ctx, student, "missing")
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}
