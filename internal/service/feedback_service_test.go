package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/service"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

type feedbackFixture struct {
	lifecycle *lifecycleFixture
	service   *service.FeedbackService
	repo      *fakeFeedbackRepo
}

func newFeedbackFixture(t *testing.T) *feedbackFixture {
	t.Helper()
	lf := newLifecycleFixture(t)
	repo := &fakeFeedbackRepo{complaints: lf.complaints}
	return &feedbackFixture{
		lifecycle: lf,
		service:   service.NewFeedbackService(repo, lf.complaints),
		repo:      repo,
	}
}

// closedComplaint drives a complaint through the full lifecycle so it is
// CLOSED with admin verification.
func (f *feedbackFixture) closedComplaint(t *testing.T) *domain.Complaint {
	t.Helper()
	ctx := context.Background()
	complaint := f.lifecycle.createComplaint(t)
	f.lifecycle.assignTo(t, complaint.ID, tech.ID)
	_, err := f.lifecycle.service.AcceptComplaint(ctx, tech, complaint.ID)
	require.NoError(t, err)
	_, err = f.lifecycle.service.CompleteComplaint(ctx, tech, complaint.ID)
	require.NoError(t, err)
	closed, err := f.lifecycle.service.VerifyComplaint(ctx, admin, complaint.ID)
	require.NoError(t, err)
	return closed
}

func TestSubmitFeedback(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()
	complaint := f.closedComplaint(t)

	feedback, err := f.service.Submit(ctx, student, service.FeedbackInput{
		ComplaintID: complaint.ID,
		Rating:      4,
		Message:     "Fixed quickly",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.FeedbackTypeGeneral, feedback.Type)

	stored, err := f.lifecycle.complaints.GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.True(t, stored.FeedbackSubmitted)

	actions := f.lifecycle.complaints.actions(complaint.ID)
	assert.Equal(t, domain.ActionFeedbackSubmitted, actions[len(actions)-1])
}

func TestSubmitFeedbackGate(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()

	// Not yet closed.
	open := f.lifecycle.createComplaint(t)
	_, err := f.service.Submit(ctx, student, service.FeedbackInput{ComplaintID: open.ID, Rating: 5})
	assert.True(t, apperrors.IsCode(err, "INVALID_TRANSITION"))

	closed := f.closedComplaint(t)

	// Not the owner.
	other := &domain.User{ID: "student-2", Role: domain.RoleStudent}
	_, err = f.service.Submit(ctx, other, service.FeedbackInput{ComplaintID: closed.ID, Rating: 5})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	// Not a student.
	_, err = f.service.Submit(ctx, admin, service.FeedbackInput{ComplaintID: closed.ID, Rating: 5})
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	// Bad rating.
	_, err = f.service.Submit(ctx, student, service.FeedbackInput{ComplaintID: closed.ID, Rating: 6})
	assert.True(t, apperrors.IsCode(err, "VALIDATION_FAILED"))

	// Unknown complaint.
	_, err = f.service.Submit(ctx, student, service.FeedbackInput{ComplaintID: "missing", Rating: 5})
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestSubmitFeedbackTwiceConflicts(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()
	complaint := f.closedComplaint(t)

	_, err := f.service.Submit(ctx, student, service.FeedbackInput{ComplaintID: complaint.ID, Rating: 3})
	require.NoError(t, err)

	_, err = f.service.Submit(ctx, student, service.FeedbackInput{ComplaintID: complaint.ID, Rating: 5})
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
}

func TestListFeedbackAdminOnly(t *testing.T) {
	f := newFeedbackFixture(t)
	ctx := context.Background()

	_, err := f.service.List(ctx, student, 0, 0)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	complaint := f.closedComplaint(t)
	_, err = f.service.Submit(ctx, student, service.FeedbackInput{ComplaintID: complaint.ID, Rating: 5})
	require.NoError(t, err)

	feedback, err := f.service.List(ctx, admin, 0, 0)
	require.NoError(t, err)
	assert.Len(t, feedback, 1)
}
