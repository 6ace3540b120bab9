package dto

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// CreateComplaintRequest payload.
type CreateComplaintRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description" validate:"required"`
	CategoryID  string `json:"category_id" validate:"required"`
	Department  string `json:"department" validate:"required"`
	Priority    string `json:"priority" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
}

// AssignComplaintRequest payload.
type AssignComplaintRequest struct {
	TechnicianID string    `json:"technician_id" validate:"required"`
	Deadline     time.Time `json:"deadline" validate:"required"`
}

// RejectComplaintRequest payload.
type RejectComplaintRequest struct {
	Reason string `json:"reason" validate:"required"`
}

// ComplaintSummary response.
type ComplaintSummary struct {
	ID              string                   `json:"id"`
	StudentID       string                   `json:"student_id"`
	Title           string                   `json:"title"`
	CategoryID      string                   `json:"category_id"`
	Department      string                   `json:"department"`
	Status          domain.ComplaintStatus   `json:"status"`
	Priority        domain.ComplaintPriority `json:"priority"`
	TechnicianID    *string                  `json:"technician_id,omitempty"`
	Deadline        *time.Time               `json:"deadline,omitempty"`
	EscalationLevel int                      `json:"escalation_level"`
	CreatedAt       time.Time                `json:"created_at"`
	UpdatedAt       time.Time                `json:"updated_at"`
}

// ComplaintDetailResponse provides full complaint info with its activity trail.
type ComplaintDetailResponse struct {
	ComplaintSummary
	Description       string             `json:"description"`
	RejectionReason   *string            `json:"rejection_reason,omitempty"`
	AdminVerification bool               `json:"admin_verification"`
	FeedbackSubmitted bool               `json:"feedback_submitted"`
	Activity          []ActivityResponse `json:"activity"`
}

// ActivityResponse represents one audit trail entry.
type ActivityResponse struct {
	ID          string                `json:"id"`
	UserID      string                `json:"user_id"`
	Action      domain.ActivityAction `json:"action"`
	Description string                `json:"description"`
	CreatedAt   time.Time             `json:"created_at"`
}

// NewComplaintSummary maps a domain complaint.
func NewComplaintSummary(complaint *domain.Complaint) ComplaintSummary {
	return ComplaintSummary{
		ID:              complaint.ID,
		StudentID:       complaint.StudentID,
		Title:           complaint.Title,
		CategoryID:      complaint.CategoryID,
		Department:      complaint.Department,
		Status:          complaint.Status,
		Priority:        complaint.Priority,
		TechnicianID:    complaint.TechnicianID,
		Deadline:        complaint.Deadline,
		EscalationLevel: complaint.EscalationLevel,
		CreatedAt:       complaint.CreatedAt,
		UpdatedAt:       complaint.UpdatedAt,
	}
}

// NewComplaintDetail maps a complaint with its activity trail.
func NewComplaintDetail(complaint *domain.Complaint, trail []domain.ActivityLogEntry) ComplaintDetailResponse {
	activity := make([]ActivityResponse, 0, len(trail))
	for _, entry := range trail {
		activity = append(activity, ActivityResponse{
			ID:          entry.ID,
			UserID:      entry.UserID,
			Action:      entry.Action,
			Description: entry.Description,
			CreatedAt:   entry.CreatedAt,
		})
	}
	return ComplaintDetailResponse{
		ComplaintSummary:  NewComplaintSummary(complaint),
		Description:       complaint.Description,
		RejectionReason:   complaint.RejectionReason,
		AdminVerification: complaint.AdminVerification,
		FeedbackSubmitted: complaint.FeedbackSubmitted,
		Activity:          activity,
	}
}
