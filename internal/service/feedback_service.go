package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// FeedbackService guards the one-shot feedback submission that follows a
// verified closure. The order of checks matters: ownership first, then the
// closure gate, then field validation, with duplicates surfacing as CONFLICT.
type FeedbackService struct {
	feedback   repository.FeedbackRepository
	complaints repository.ComplaintRepository
}

// FeedbackInput is the submission payload.
type FeedbackInput struct {
	ComplaintID string
	Rating      int
	Message     string
	Type        domain.FeedbackType
	Anonymous   bool
}

// NewFeedbackService constructs the service.
func NewFeedbackService(feedback repository.FeedbackRepository, complaints repository.ComplaintRepository) *FeedbackService {
	return &FeedbackService{feedback: feedback, complaints: complaints}
}

// Submit records feedback for the actor's own closed and verified complaint.
func (s *FeedbackService) Submit(ctx context.Context, actor *domain.User, input FeedbackInput) (*domain.Feedback, error) {
	if actor == nil || actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("only students can submit feedback")
	}
	if input.ComplaintID == "" {
		return nil, apperrors.NewValidationError("complaint_id required", nil)
	}

	complaint, err := s.complaints.GetByID(ctx, input.ComplaintID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": input.ComplaintID})
		}
		return nil, apperrors.MapError(err)
	}
	if complaint.StudentID != actor.ID {
		return nil, apperrors.NewForbidden("you can only submit feedback for your own complaints")
	}
	if complaint.Status != domain.ComplaintStatusClosed || !complaint.AdminVerification {
		return nil, apperrors.NewInvalidTransition("submit feedback for", string(complaint.Status))
	}
	if complaint.FeedbackSubmitted {
		return nil, apperrors.NewConflict("feedback already submitted", map[string]any{"complaint_id": complaint.ID})
	}

	if input.Rating < 1 || input.Rating > 5 {
		return nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{"rating": input.Rating})
	}
	if input.Type == "" {
		input.Type = domain.FeedbackTypeGeneral
	}
	if !domain.ValidFeedbackType(input.Type) {
		return nil, apperrors.NewValidationError("invalid feedback type", map[string]any{"type": input.Type})
	}

	feedback := &domain.Feedback{
		ComplaintID: complaint.ID,
		Rating:      input.Rating,
		Message:     strings.TrimSpace(input.Message),
		Type:        input.Type,
		Anonymous:   input.Anonymous,
	}
	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionFeedbackSubmitted,
		Description: fmt.Sprintf("Feedback submitted with rating %d", input.Rating),
	}
	if err := s.feedback.CreateWithLog(ctx, feedback, entry); err != nil {
		// The guarded update also loses when a concurrent submission got
		// there first between our read and the write.
		if errors.Is(err, repository.ErrStaleStatus) {
			return nil, apperrors.NewConflict("feedback already submitted", map[string]any{"complaint_id": complaint.ID})
		}
		return nil, apperrors.MapError(err)
	}
	return feedback, nil
}

// List returns recent feedback entries for admin review.
func (s *FeedbackService) List(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Feedback, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can list feedback")
	}
	result, err := s.feedback.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return result, nil
}
