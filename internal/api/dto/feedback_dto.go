package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// SubmitFeedbackRequest payload.
type SubmitFeedbackRequest struct {
	ComplaintID string `json:"complaint_id" validate:"required"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Message     string `json:"message"`
	Type        string `json:"type" validate:"omitempty,oneof=ACADEMIC FACILITY GENERAL"`
	Anonymous   bool   `json:"anonymous"`
}

// FeedbackResponse response.
type FeedbackResponse struct {
	ID          string              `json:"id"`
	ComplaintID string              `json:"complaint_id"`
	Rating      int                 `json:"rating"`
	Message     string              `json:"message,omitempty"`
	Type        domain.FeedbackType `json:"type"`
	Anonymous   bool                `json:"anonymous"`
	CreatedAt   time.Time           `json:"created_at"`
}

// NewFeedbackResponse maps domain feedback.
func NewFeedbackResponse(feedback *domain.Feedback) FeedbackResponse {
	return FeedbackResponse{
		ID:          feedback.ID,
		ComplaintID: feedback.ComplaintID,
		Rating:      feedback.Rating,
		Message:     feedback.Message,
		Type:        feedback.Type,
		Anonymous:   feedback.Anonymous,
		CreatedAt:   feedback.CreatedAt,
	}
}
