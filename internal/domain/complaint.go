package domain

import "time"

// ComplaintStatus enumerates lifecycle states for complaints.
type ComplaintStatus string

const (
	ComplaintStatusPending    ComplaintStatus = "PENDING"
	ComplaintStatusAssigned   ComplaintStatus = "ASSIGNED"
	ComplaintStatusInProgress ComplaintStatus = "IN_PROGRESS"
	ComplaintStatusResolved   ComplaintStatus = "RESOLVED"
	ComplaintStatusClosed     ComplaintStatus = "CLOSED"
	ComplaintStatusRejected   ComplaintStatus = "REJECTED"
	ComplaintStatusEscalated  ComplaintStatus = "ESCALATED"
)

// ComplaintPriority enumerates urgency levels.
type ComplaintPriority string

const (
	ComplaintPriorityLow    ComplaintPriority = "LOW"
	ComplaintPriorityMedium ComplaintPriority = "MEDIUM"
	ComplaintPriorityHigh   ComplaintPriority = "HIGH"
)

// ValidPriority reports whether p is a known priority value.
func ValidPriority(p ComplaintPriority) bool {
	switch p {
	case ComplaintPriorityLow, ComplaintPriorityMedium, ComplaintPriorityHigh:
		return true
	}
	return false
}

// Complaint is the aggregate for student-filed complaints.
// Status, technician, deadline, rejection reason, escalation level and the
// verification flag are owned by the lifecycle service; FeedbackSubmitted is
// owned by the feedback service.
type Complaint struct {
	ID                string
	StudentID         string
	Title             string
	Description       string
	CategoryID        string
	Department        string
	Status            ComplaintStatus
	Priority          ComplaintPriority
	TechnicianID      *string
	Deadline          *time.Time
	RejectionReason   *string
	EscalationLevel   int
	AdminVerification bool
	FeedbackSubmitted bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TechnicianHeld reports whether a technician currently holds the complaint,
// i.e. the assigned technician may act on it.
func (c *Complaint) TechnicianHeld() bool {
	switch c.Status {
	case ComplaintStatusAssigned, ComplaintStatusInProgress, ComplaintStatusEscalated:
		return c.TechnicianID != nil
	}
	return false
}

// Overdue reports whether the deadline has passed at the given instant.
func (c *Complaint) Overdue(now time.Time) bool {
	return c.Deadline != nil && c.Deadline.Before(now)
}
