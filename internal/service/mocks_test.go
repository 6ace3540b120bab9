package service_test

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// In-memory fakes implementing the repository interfaces. The complaint fake
// reproduces the compare-and-swap semantics of the real store so concurrency
// paths can be exercised without Postgres.

type fakeComplaintRepo struct {
	mu         sync.Mutex
	complaints map[string]*domain.Complaint
	logs       []domain.ActivityLogEntry

	// beforeUpdate runs inside UpdateWithLog before the CAS check, letting a
	// test interleave a competing write.
	beforeUpdate func()
}

func newFakeComplaintRepo() *fakeComplaintRepo {
	return &fakeComplaintRepo{complaints: make(map[string]*domain.Complaint)}
}

func (r *fakeComplaintRepo) Create(_ context.Context, complaint *domain.Complaint, entry *domain.ActivityLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	complaint.ID = uuid.NewString()
	complaint.CreatedAt = time.Now()
	complaint.UpdatedAt = complaint.CreatedAt
	clone := *complaint
	r.complaints[complaint.ID] = &clone
	r.appendLog(complaint.ID, entry)
	return nil
}

func (r *fakeComplaintRepo) GetByID(_ context.Context, id string) (*domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.complaints[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *stored
	return &clone, nil
}

func (r *fakeComplaintRepo) List(_ context.Context, filter repository.ComplaintFilter) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Complaint
	for _, c := range r.complaints {
		if filter.StudentID != nil && c.StudentID != *filter.StudentID {
			continue
		}
		if filter.TechnicianID != nil && (c.TechnicianID == nil || *c.TechnicianID != *filter.TechnicianID) {
			continue
		}
		result = append(result, *c)
	}
	return result, nil
}

func (r *fakeComplaintRepo) ListOverdue(_ context.Context, now time.Time) ([]domain.Complaint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Complaint
	for _, c := range r.complaints {
		switch c.Status {
		case domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress, domain.ComplaintStatusEscalated:
		default:
			continue
		}
		if c.Deadline != nil && c.Deadline.Before(now) {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (r *fakeComplaintRepo) UpdateWithLog(_ context.Context, complaint *domain.Complaint, fromStatuses []domain.ComplaintStatus, entry *domain.ActivityLogEntry) error {
	if r.beforeUpdate != nil {
		r.beforeUpdate()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.complaints[complaint.ID]
	if !ok {
		return pgx.ErrNoRows
	}
	if len(fromStatuses) > 0 {
		matched := false
		for _, status := range fromStatuses {
			if stored.Status == status {
				matched = true
				break
			}
		}
		if !matched {
			return repository.ErrStaleStatus
		}
	}
	complaint.UpdatedAt = time.Now()
	clone := *complaint
	r.complaints[complaint.ID] = &clone
	r.appendLog(complaint.ID, entry)
	return nil
}

func (r *fakeComplaintRepo) CountByStatus(_ context.Context, filter repository.ComplaintFilter) (map[domain.ComplaintStatus]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ComplaintStatus]int)
	for _, c := range r.complaints {
		if filter.StudentID != nil && c.StudentID != *filter.StudentID {
			continue
		}
		if filter.TechnicianID != nil && (c.TechnicianID == nil || *c.TechnicianID != *filter.TechnicianID) {
			continue
		}
		counts[c.Status]++
	}
	return counts, nil
}

func (r *fakeComplaintRepo) CountOpenByTechnician(_ context.Context, technicianID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, c := range r.complaints {
		if c.TechnicianID == nil || *c.TechnicianID != technicianID {
			continue
		}
		if c.Status == domain.ComplaintStatusAssigned || c.Status == domain.ComplaintStatusInProgress {
			count++
		}
	}
	return count, nil
}

func (r *fakeComplaintRepo) appendLog(complaintID string, entry *domain.ActivityLogEntry) {
	if entry == nil {
		return
	}
	entry.ID = uuid.NewString()
	entry.ComplaintID = complaintID
	entry.CreatedAt = time.Now()
	r.logs = append(r.logs, *entry)
}

// set force-writes a complaint, bypassing the CAS.
func (r *fakeComplaintRepo) set(complaint domain.Complaint) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complaints[complaint.ID] = &complaint
}

func (r *fakeComplaintRepo) actions(complaintID string) []domain.ActivityAction {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.ActivityAction
	for _, entry := range r.logs {
		if entry.ComplaintID == complaintID {
			result = append(result, entry.Action)
		}
	}
	return result
}

// fakeActivityRepo serves reads from the complaint fake's shared log.
type fakeActivityRepo struct {
	complaints *fakeComplaintRepo
}

func (r *fakeActivityRepo) Append(_ context.Context, entry *domain.ActivityLogEntry) error {
	r.complaints.mu.Lock()
	defer r.complaints.mu.Unlock()
	r.complaints.appendLog(entry.ComplaintID, entry)
	return nil
}

func (r *fakeActivityRepo) ListByComplaint(_ context.Context, complaintID string) ([]domain.ActivityLogEntry, error) {
	r.complaints.mu.Lock()
	defer r.complaints.mu.Unlock()
	var result []domain.ActivityLogEntry
	for _, entry := range r.complaints.logs {
		if entry.ComplaintID == complaintID {
			result = append(result, entry)
		}
	}
	return result, nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]*domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user.ID = uuid.NewString()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) ListByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.User
	for _, user := range r.users {
		if user.Role == role {
			result = append(result, *user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) ListTechnicians(ctx context.Context, department *string) ([]domain.User, error) {
	technicians, _ := r.ListByRole(ctx, domain.RoleTechnician)
	if department == nil {
		return technicians, nil
	}
	var result []domain.User
	for _, user := range technicians {
		if user.Department != nil && *user.Department == *department {
			result = append(result, user)
		}
	}
	return result, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role domain.UserRole) (int, error) {
	users, _ := r.ListByRole(ctx, role)
	return len(users), nil
}

type fakeCategoryRepo struct {
	categories map[string]*domain.Category
}

func newFakeCategoryRepo(categories ...*domain.Category) *fakeCategoryRepo {
	repo := &fakeCategoryRepo{categories: make(map[string]*domain.Category)}
	for _, category := range categories {
		repo.categories[category.ID] = category
	}
	return repo
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id string) (*domain.Category, error) {
	category, ok := r.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return category, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var result []domain.Category
	for _, category := range r.categories {
		result = append(result, *category)
	}
	return result, nil
}

type fakeNotificationRepo struct {
	mu            sync.Mutex
	notifications []domain.Notification
	failCreate    bool
}

func (r *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate {
		return fmt.Errorf("insert failed")
	}
	notification.ID = uuid.NewString()
	notification.CreatedAt = time.Now()
	r.notifications = append(r.notifications, *notification)
	return nil
}

func (r *fakeNotificationRepo) GetByID(_ context.Context, id string) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			clone := r.notifications[i]
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeNotificationRepo) ListByUser(_ context.Context, userID string, _ int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result, nil
}

func (r *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

func (r *fakeNotificationRepo) MarkRead(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.notifications {
		if r.notifications[i].ID == id {
			r.notifications[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r *fakeNotificationRepo) forUser(userID string) []domain.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Notification
	for _, n := range r.notifications {
		if n.UserID == userID {
			result = append(result, n)
		}
	}
	return result
}

// fakeFeedbackRepo reproduces the guarded flag flip against the complaint fake.
type fakeFeedbackRepo struct {
	mu         sync.Mutex
	complaints *fakeComplaintRepo
	feedback   []domain.Feedback
}

func (r *fakeFeedbackRepo) CreateWithLog(_ context.Context, feedback *domain.Feedback, entry *domain.ActivityLogEntry) error {
	r.complaints.mu.Lock()
	defer r.complaints.mu.Unlock()
	stored, ok := r.complaints.complaints[feedback.ComplaintID]
	if !ok {
		return pgx.ErrNoRows
	}
	if stored.Status != domain.ComplaintStatusClosed || !stored.AdminVerification || stored.FeedbackSubmitted {
		return repository.ErrStaleStatus
	}
	stored.FeedbackSubmitted = true

	r.mu.Lock()
	feedback.ID = uuid.NewString()
	feedback.CreatedAt = time.Now()
	r.feedback = append(r.feedback, *feedback)
	r.mu.Unlock()

	r.complaints.appendLog(feedback.ComplaintID, entry)
	return nil
}

func (r *fakeFeedbackRepo) List(_ context.Context, _, _ int) ([]domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]domain.Feedback{}, r.feedback...), nil
}

func (r *fakeFeedbackRepo) AverageRating(_ context.Context) (float64, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.feedback) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, f := range r.feedback {
		sum += f.Rating
	}
	return float64(sum) / float64(len(r.feedback)), len(r.feedback), nil
}
