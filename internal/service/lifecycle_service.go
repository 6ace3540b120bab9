package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/events"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// LifecycleService validates and executes every complaint status transition.
// It is the sole writer of status, technician, deadline, rejection reason,
// escalation level and the verification flag.
//
// Every transition runs the same sequence: authorize (role, then ownership),
// validate the state precondition, apply the mutation together with its
// activity-log entry in one guarded transaction, then publish the event that
// drives notification fan-out. Authorization failures are reported before
// precondition failures, so acting on someone else's complaint is always
// FORBIDDEN rather than INVALID_TRANSITION.
type LifecycleService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	categories repository.CategoryRepository
	activity   repository.ActivityLogRepository
	dispatcher events.Dispatcher
	now        func() time.Time
}

// LifecycleDependencies bundles repositories for the lifecycle service.
type LifecycleDependencies struct {
	ComplaintRepo repository.ComplaintRepository
	UserRepo      repository.UserRepository
	CategoryRepo  repository.CategoryRepository
	ActivityRepo  repository.ActivityLogRepository
	Dispatcher    events.Dispatcher
	Now           func() time.Time
}

// ComplaintCreateInput describes complaint creation payload.
type ComplaintCreateInput struct {
	Title       string
	Description string
	CategoryID  string
	Department  string
	Priority    domain.ComplaintPriority
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &LifecycleService{
		complaints: deps.ComplaintRepo,
		users:      deps.UserRepo,
		categories: deps.CategoryRepo,
		activity:   deps.ActivityRepo,
		dispatcher: deps.Dispatcher,
		now:        now,
	}
}

// CreateComplaint files a new complaint for a student.
func (s *LifecycleService) CreateComplaint(ctx context.Context, actor *domain.User, input ComplaintCreateInput) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleStudent {
		return nil, apperrors.NewForbidden("only students can create complaints")
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if input.Title == "" || input.Description == "" || input.CategoryID == "" || input.Department == "" {
		return nil, apperrors.NewValidationError("title, description, category_id, department required", nil)
	}
	if input.Priority == "" {
		input.Priority = domain.ComplaintPriorityMedium
	}
	if !domain.ValidPriority(input.Priority) {
		return nil, apperrors.NewValidationError("invalid priority", map[string]any{"priority": input.Priority})
	}
	if _, err := s.categories.GetByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("category", map[string]any{"category_id": input.CategoryID})
		}
		return nil, apperrors.MapError(err)
	}

	complaint := &domain.Complaint{
		StudentID:   actor.ID,
		Title:       input.Title,
		Description: input.Description,
		CategoryID:  input.CategoryID,
		Department:  input.Department,
		Status:      domain.ComplaintStatusPending,
		Priority:    input.Priority,
	}
	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionComplaintCreated,
		Description: fmt.Sprintf("Complaint created: %s", complaint.Title),
	}
	if err := s.complaints.Create(ctx, complaint, entry); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintCreated,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintCreatedPayload{
			Title:       complaint.Title,
			StudentID:   actor.ID,
			StudentName: actor.Name,
			Department:  complaint.Department,
			Priority:    complaint.Priority,
		},
	})
	return complaint, nil
}

// AssignComplaint routes a complaint to a technician with a deadline. Assigning
// works from any status: it is also the recovery path for REJECTED and
// ESCALATED complaints.
func (s *LifecycleService) AssignComplaint(ctx context.Context, actor *domain.User, complaintID, technicianID string, deadline time.Time) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can assign complaints")
	}
	if technicianID == "" || deadline.IsZero() {
		return nil, apperrors.NewValidationError("technician_id and deadline required", nil)
	}

	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	technician, err := s.users.GetByID(ctx, technicianID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("technician", map[string]any{"technician_id": technicianID})
		}
		return nil, apperrors.MapError(err)
	}
	if technician.Role != domain.RoleTechnician {
		return nil, apperrors.NewValidationError("user is not a technician", map[string]any{"technician_id": technicianID})
	}

	observed := complaint.Status
	complaint.Status = domain.ComplaintStatusAssigned
	complaint.TechnicianID = &technician.ID
	complaint.Deadline = &deadline

	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionComplaintAssigned,
		Description: fmt.Sprintf("Assigned to %s", technician.Name),
	}
	if err := s.applyTransition(ctx, complaint, observed, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintAssigned,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintAssignedPayload{
			Title:        complaint.Title,
			TechnicianID: technician.ID,
			Deadline:     deadline,
		},
	})
	return complaint, nil
}

// AcceptComplaint moves an assigned complaint into progress.
func (s *LifecycleService) AcceptComplaint(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.authorizeTechnician(ctx, actor, complaintID, "accept")
	if err != nil {
		return nil, err
	}
	if complaint.Status != domain.ComplaintStatusAssigned {
		return nil, apperrors.NewInvalidTransition("accept", string(complaint.Status))
	}

	observed := complaint.Status
	complaint.Status = domain.ComplaintStatusInProgress
	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionComplaintAccepted,
		Description: fmt.Sprintf("Complaint accepted by %s", actor.Name),
	}
	if err := s.applyTransition(ctx, complaint, observed, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintAccepted,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintAcceptedPayload{
			Title:          complaint.Title,
			TechnicianName: actor.Name,
		},
	})
	return complaint, nil
}

// RejectComplaint hands a complaint back with a reason. The technician is
// cleared so the complaint can be re-assigned.
func (s *LifecycleService) RejectComplaint(ctx context.Context, actor *domain.User, complaintID, reason string) (*domain.Complaint, error) {
	complaint, err := s.authorizeTechnician(ctx, actor, complaintID, "reject")
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apperrors.NewValidationError("rejection reason required", nil)
	}
	if !complaint.TechnicianHeld() {
		return nil, apperrors.NewInvalidTransition("reject", string(complaint.Status))
	}

	observed := complaint.Status
	complaint.Status = domain.ComplaintStatusRejected
	complaint.TechnicianID = nil
	complaint.RejectionReason = &reason

	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionComplaintRejected,
		Description: fmt.Sprintf("Rejected by %s. Reason: %s", actor.Name, reason),
	}
	if err := s.applyTransition(ctx, complaint, observed, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintRejected,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintRejectedPayload{
			Title:          complaint.Title,
			TechnicianName: actor.Name,
			Reason:         reason,
		},
	})
	return complaint, nil
}

// CompleteComplaint marks an in-progress complaint as resolved.
func (s *LifecycleService) CompleteComplaint(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.authorizeTechnician(ctx, actor, complaintID, "complete")
	if err != nil {
		return nil, err
	}
	if complaint.Status != domain.ComplaintStatusInProgress {
		return nil, apperrors.NewInvalidTransition("complete", string(complaint.Status))
	}

	observed := complaint.Status
	complaint.Status = domain.ComplaintStatusResolved
	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionComplaintResolved,
		Description: fmt.Sprintf("Marked as resolved by %s", actor.Name),
	}
	if err := s.applyTransition(ctx, complaint, observed, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintResolved,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintResolvedPayload{
			Title:          complaint.Title,
			StudentID:      complaint.StudentID,
			TechnicianName: actor.Name,
		},
	})
	return complaint, nil
}

// VerifyComplaint closes a resolved complaint after admin review, unlocking
// feedback submission.
func (s *LifecycleService) VerifyComplaint(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can verify complaints")
	}
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.Status != domain.ComplaintStatusResolved {
		return nil, apperrors.NewInvalidTransition("verify", string(complaint.Status))
	}

	observed := complaint.Status
	complaint.Status = domain.ComplaintStatusClosed
	complaint.AdminVerification = true
	entry := &domain.ActivityLogEntry{
		UserID:      actor.ID,
		Action:      domain.ActionComplaintVerified,
		Description: fmt.Sprintf("Verified and closed by %s", actor.Name),
	}
	if err := s.applyTransition(ctx, complaint, observed, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintVerified,
		ComplaintID: complaint.ID,
		ActorID:     actor.ID,
		Payload: events.ComplaintVerifiedPayload{
			Title:     complaint.Title,
			StudentID: complaint.StudentID,
		},
	})
	return complaint, nil
}

// Escalate promotes an overdue in-flight complaint. Invoked by the escalation
// sweeper, never by a user. An already ESCALATED complaint whose deadline is
// still in the past escalates again, incrementing the level each sweep.
func (s *LifecycleService) Escalate(ctx context.Context, complaintID string) (*domain.Complaint, error) {
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	switch complaint.Status {
	case domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress, domain.ComplaintStatusEscalated:
	default:
		return nil, apperrors.NewInvalidTransition("escalate", string(complaint.Status))
	}
	if !complaint.Overdue(s.now()) {
		return nil, apperrors.NewInvalidTransition("escalate", string(complaint.Status))
	}

	technicianName := "Unknown"
	if complaint.TechnicianID != nil {
		if technician, err := s.users.GetByID(ctx, *complaint.TechnicianID); err == nil {
			technicianName = technician.Name
		}
	}

	observed := complaint.Status
	complaint.Status = domain.ComplaintStatusEscalated
	complaint.EscalationLevel++
	entry := &domain.ActivityLogEntry{
		UserID:      complaint.StudentID,
		Action:      domain.ActionComplaintEscalated,
		Description: fmt.Sprintf("Complaint escalated due to missed deadline. Escalation level: %d", complaint.EscalationLevel),
	}
	if err := s.applyTransition(ctx, complaint, observed, entry); err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:        events.EventComplaintEscalated,
		ComplaintID: complaint.ID,
		ActorID:     complaint.StudentID,
		Payload: events.ComplaintEscalatedPayload{
			Title:          complaint.Title,
			TechnicianName: technicianName,
			Level:          complaint.EscalationLevel,
		},
	})
	return complaint, nil
}

// ListComplaints returns complaints scoped by the caller's role: students see
// their own, technicians see their assignments, admins see everything.
func (s *LifecycleService) ListComplaints(ctx context.Context, actor *domain.User, limit, offset int) ([]domain.Complaint, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	filter := repository.ComplaintFilter{Limit: limit, Offset: offset}
	switch actor.Role {
	case domain.RoleStudent:
		filter.StudentID = &actor.ID
	case domain.RoleTechnician:
		filter.TechnicianID = &actor.ID
	case domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}
	complaints, err := s.complaints.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return complaints, nil
}

// GetComplaint fetches one complaint with its activity trail, enforcing
// ownership for students and technicians.
func (s *LifecycleService) GetComplaint(ctx context.Context, actor *domain.User, complaintID string) (*domain.Complaint, []domain.ActivityLogEntry, error) {
	if actor == nil {
		return nil, nil, apperrors.NewUnauthorized("authentication required")
	}
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, nil, err
	}
	switch actor.Role {
	case domain.RoleStudent:
		if complaint.StudentID != actor.ID {
			return nil, nil, apperrors.NewForbidden("you can only view your own complaints")
		}
	case domain.RoleTechnician:
		if complaint.TechnicianID == nil || *complaint.TechnicianID != actor.ID {
			return nil, nil, apperrors.NewForbidden("you can only view assigned complaints")
		}
	case domain.RoleAdmin:
	default:
		return nil, nil, apperrors.NewForbidden("unknown role")
	}

	trail, err := s.activity.ListByComplaint(ctx, complaint.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return complaint, trail, nil
}

// TechnicianOverview pairs a technician with their current workload.
type TechnicianOverview struct {
	User           domain.User
	OpenComplaints int
}

// ListTechnicians returns technicians with their open-complaint counts for the
// admin assignment picker, optionally filtered by department.
func (s *LifecycleService) ListTechnicians(ctx context.Context, actor *domain.User, department string) ([]TechnicianOverview, error) {
	if actor == nil || actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("only admins can list technicians")
	}
	var filter *string
	if department = strings.TrimSpace(department); department != "" {
		filter = &department
	}
	technicians, err := s.users.ListTechnicians(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	result := make([]TechnicianOverview, 0, len(technicians))
	for _, technician := range technicians {
		open, err := s.complaints.CountOpenByTechnician(ctx, technician.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		result = append(result, TechnicianOverview{User: technician, OpenComplaints: open})
	}
	return result, nil
}

// authorizeTechnician loads the complaint and verifies the acting technician
// owns it. Ownership is checked before any state precondition.
func (s *LifecycleService) authorizeTechnician(ctx context.Context, actor *domain.User, complaintID, action string) (*domain.Complaint, error) {
	if actor == nil || actor.Role != domain.RoleTechnician {
		return nil, apperrors.NewForbidden(fmt.Sprintf("only technicians can %s complaints", action))
	}
	complaint, err := s.getComplaint(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if complaint.TechnicianID == nil || *complaint.TechnicianID != actor.ID {
		return nil, apperrors.NewForbidden(fmt.Sprintf("you can only %s complaints assigned to you", action))
	}
	return complaint, nil
}

func (s *LifecycleService) getComplaint(ctx context.Context, id string) (*domain.Complaint, error) {
	complaint, err := s.complaints.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("complaint", map[string]any{"complaint_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return complaint, nil
}

// applyTransition persists the mutation and log entry atomically, mapping a
// lost compare-and-swap to CONFLICT.
func (s *LifecycleService) applyTransition(ctx context.Context, complaint *domain.Complaint, observed domain.ComplaintStatus, entry *domain.ActivityLogEntry) error {
	err := s.complaints.UpdateWithLog(ctx, complaint, []domain.ComplaintStatus{observed}, entry)
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrStaleStatus) {
		return apperrors.NewConflict("complaint was modified concurrently", map[string]any{"complaint_id": complaint.ID})
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("complaint", map[string]any{"complaint_id": complaint.ID})
	}
	return apperrors.MapError(err)
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
