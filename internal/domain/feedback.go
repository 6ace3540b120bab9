package domain

import "time"

// FeedbackType categorizes feedback submissions.
type FeedbackType string

const (
	FeedbackTypeAcademic FeedbackType = "ACADEMIC"
	FeedbackTypeFacility FeedbackType = "FACILITY"
	FeedbackTypeGeneral  FeedbackType = "GENERAL"
)

// ValidFeedbackType reports whether t is a known feedback type.
func ValidFeedbackType(t FeedbackType) bool {
	switch t {
	case FeedbackTypeAcademic, FeedbackTypeFacility, FeedbackTypeGeneral:
		return true
	}
	return false
}

// Feedback is a one-to-one post-closure rating for a complaint. The pairing
// is enforced through Complaint.FeedbackSubmitted.
type Feedback struct {
	ID          string
	ComplaintID string
	Rating      int
	Message     string
	Type        FeedbackType
	Anonymous   bool
	CreatedAt   time.Time
}
