package events

import (
	"time"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventComplaintCreated   EventType = "complaint_created"
	EventComplaintAssigned  EventType = "complaint_assigned"
	EventComplaintAccepted  EventType = "complaint_accepted"
	EventComplaintRejected  EventType = "complaint_rejected"
	EventComplaintResolved  EventType = "complaint_resolved"
	EventComplaintVerified  EventType = "complaint_verified"
	EventComplaintEscalated EventType = "complaint_escalated"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID          string      `json:"id"`
	Type        EventType   `json:"type"`
	ComplaintID string      `json:"complaint_id"`
	ActorID     string      `json:"actor_id"`
	Timestamp   time.Time   `json:"timestamp"`
	Payload     interface{} `json:"payload"`
}

// ComplaintCreatedPayload payload.
type ComplaintCreatedPayload struct {
	Title       string                   `json:"title"`
	StudentID   string                   `json:"student_id"`
	StudentName string                   `json:"student_name"`
	Department  string                   `json:"department"`
	Priority    domain.ComplaintPriority `json:"priority"`
}

// ComplaintAssignedPayload payload.
type ComplaintAssignedPayload struct {
	Title        string    `json:"title"`
	TechnicianID string    `json:"technician_id"`
	Deadline     time.Time `json:"deadline"`
}

// ComplaintAcceptedPayload payload.
type ComplaintAcceptedPayload struct {
	Title          string `json:"title"`
	TechnicianName string `json:"technician_name"`
}

// ComplaintRejectedPayload payload.
type ComplaintRejectedPayload struct {
	Title          string `json:"title"`
	TechnicianName string `json:"technician_name"`
	Reason         string `json:"reason"`
}

// ComplaintResolvedPayload payload.
type ComplaintResolvedPayload struct {
	Title          string `json:"title"`
	StudentID      string `json:"student_id"`
	TechnicianName string `json:"technician_name"`
}

// ComplaintVerifiedPayload payload.
type ComplaintVerifiedPayload struct {
	Title     string `json:"title"`
	StudentID string `json:"student_id"`
}

// ComplaintEscalatedPayload payload.
type ComplaintEscalatedPayload struct {
	Title          string `json:"title"`
	TechnicianName string `json:"technician_name"`
	Level          int    `json:"level"`
}
