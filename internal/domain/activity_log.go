package domain

import "time"

// ActivityAction tags an activity log entry with the event that produced it.
type ActivityAction string

const (
	ActionComplaintCreated   ActivityAction = "COMPLAINT_CREATED"
	ActionComplaintAssigned  ActivityAction = "COMPLAINT_ASSIGNED"
	ActionComplaintAccepted  ActivityAction = "COMPLAINT_ACCEPTED"
	ActionComplaintRejected  ActivityAction = "COMPLAINT_REJECTED"
	ActionComplaintResolved  ActivityAction = "COMPLAINT_RESOLVED"
	ActionComplaintVerified  ActivityAction = "COMPLAINT_VERIFIED"
	ActionComplaintEscalated ActivityAction = "COMPLAINT_ESCALATED"
	ActionFeedbackSubmitted  ActivityAction = "FEEDBACK_SUBMITTED"
)

// ActivityLogEntry is an immutable audit trail record for one complaint.
// Entries are only ever appended, never updated or deleted.
type ActivityLogEntry struct {
	ID          string
	ComplaintID string
	UserID      string
	Action      ActivityAction
	Description string
	CreatedAt   time.Time
}
