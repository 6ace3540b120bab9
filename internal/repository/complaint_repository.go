package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ErrStaleStatus reports that a guarded update found the complaint in a
// different status than the transition was validated against.
var ErrStaleStatus = fmt.Errorf("complaint status changed concurrently")

// ComplaintFilter captures listing parameters.
type ComplaintFilter struct {
	StudentID    *string
	TechnicianID *string
	Statuses     []domain.ComplaintStatus
	Department   *string
	Limit        int
	Offset       int
}

// ComplaintRepository encapsulates complaint persistence.
//
// UpdateWithLog applies a status transition and its activity-log entry as one
// transaction, guarded by a compare-and-swap on the current status: if the row
// is no longer in one of fromStatuses the transaction rolls back and
// ErrStaleStatus is returned, so concurrent transitions from the same
// precondition state cannot both succeed.
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *domain.Complaint, entry *domain.ActivityLogEntry) error
	GetByID(ctx context.Context, id string) (*domain.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error)
	ListOverdue(ctx context.Context, now time.Time) ([]domain.Complaint, error)
	UpdateWithLog(ctx context.Context, complaint *domain.Complaint, fromStatuses []domain.ComplaintStatus, entry *domain.ActivityLogEntry) error
	CountByStatus(ctx context.Context, filter ComplaintFilter) (map[domain.ComplaintStatus]int, error)
	CountOpenByTechnician(ctx context.Context, technicianID string) (int, error)
}

type complaintRepository struct {
	pool *pgxpool.Pool
}

// NewComplaintRepository instantiates the repository.
func NewComplaintRepository(pool *pgxpool.Pool) ComplaintRepository {
	return &complaintRepository{pool: pool}
}

const complaintColumns = `id, student_id, title, description, category_id, department,
               status, priority, technician_id, deadline, rejection_reason,
               escalation_level, admin_verification, feedback_submitted, created_at, updated_at`

func (r *complaintRepository) Create(ctx context.Context, complaint *domain.Complaint, entry *domain.ActivityLogEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const query = `
        INSERT INTO complaints (student_id, title, description, category_id, department, status, priority)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		complaint.StudentID,
		complaint.Title,
		complaint.Description,
		complaint.CategoryID,
		complaint.Department,
		complaint.Status,
		complaint.Priority,
	).Scan(&complaint.ID, &complaint.CreatedAt, &complaint.UpdatedAt); err != nil {
		return err
	}

	entry.ComplaintID = complaint.ID
	if err := insertActivityLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *complaintRepository) GetByID(ctx context.Context, id string) (*domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + ` FROM complaints WHERE id=$1`
	row := r.pool.QueryRow(ctx, query, id)
	return scanComplaint(row)
}

func (r *complaintRepository) List(ctx context.Context, filter ComplaintFilter) ([]domain.Complaint, error) {
	base := `SELECT ` + complaintColumns + ` FROM complaints`
	clauses := []string{"1=1"}
	args := []any{}

	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}
	if filter.Department != nil {
		args = append(args, *filter.Department)
		clauses = append(clauses, fmt.Sprintf("department=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`%s WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		base, strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) ListOverdue(ctx context.Context, now time.Time) ([]domain.Complaint, error) {
	query := `SELECT ` + complaintColumns + `
        FROM complaints
        WHERE status IN ($1,$2,$3) AND deadline IS NOT NULL AND deadline < $4
        ORDER BY deadline ASC`
	rows, err := r.pool.Query(ctx, query,
		domain.ComplaintStatusAssigned,
		domain.ComplaintStatusInProgress,
		domain.ComplaintStatusEscalated,
		now,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanComplaints(rows)
}

func (r *complaintRepository) UpdateWithLog(ctx context.Context, complaint *domain.Complaint, fromStatuses []domain.ComplaintStatus, entry *domain.ActivityLogEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	args := []any{
		complaint.Status,
		complaint.TechnicianID,
		complaint.Deadline,
		complaint.RejectionReason,
		complaint.EscalationLevel,
		complaint.AdminVerification,
		complaint.FeedbackSubmitted,
		complaint.ID,
	}
	query := `
        UPDATE complaints SET status=$1, technician_id=$2, deadline=$3, rejection_reason=$4,
            escalation_level=$5, admin_verification=$6, feedback_submitted=$7, updated_at=NOW()
        WHERE id=$8`
	if len(fromStatuses) > 0 {
		placeholders := make([]string, len(fromStatuses))
		for i, status := range fromStatuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		query += fmt.Sprintf(" AND status IN (%s)", strings.Join(placeholders, ","))
	}

	cmd, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	if entry != nil {
		entry.ComplaintID = complaint.ID
		if err := insertActivityLog(ctx, tx, entry); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *complaintRepository) CountByStatus(ctx context.Context, filter ComplaintFilter) (map[domain.ComplaintStatus]int, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if filter.StudentID != nil {
		args = append(args, *filter.StudentID)
		clauses = append(clauses, fmt.Sprintf("student_id=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("technician_id=$%d", len(args)))
	}

	query := fmt.Sprintf(`SELECT status, COUNT(*) FROM complaints WHERE %s GROUP BY status`,
		strings.Join(clauses, " AND "))
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.ComplaintStatus]int)
	for rows.Next() {
		var status domain.ComplaintStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

func (r *complaintRepository) CountOpenByTechnician(ctx context.Context, technicianID string) (int, error) {
	const query = `
        SELECT COUNT(*) FROM complaints
        WHERE technician_id=$1 AND status IN ($2,$3)`
	var count int
	err := r.pool.QueryRow(ctx, query, technicianID,
		domain.ComplaintStatusAssigned, domain.ComplaintStatusInProgress).Scan(&count)
	return count, err
}

func insertActivityLog(ctx context.Context, tx pgx.Tx, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_logs (complaint_id, user_id, action, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return tx.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.UserID,
		entry.Action,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func scanComplaint(row pgx.Row) (*domain.Complaint, error) {
	var c domain.Complaint
	if err := row.Scan(
		&c.ID,
		&c.StudentID,
		&c.Title,
		&c.Description,
		&c.CategoryID,
		&c.Department,
		&c.Status,
		&c.Priority,
		&c.TechnicianID,
		&c.Deadline,
		&c.RejectionReason,
		&c.EscalationLevel,
		&c.AdminVerification,
		&c.FeedbackSubmitted,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &c, nil
}

func scanComplaints(rows pgx.Rows) ([]domain.Complaint, error) {
	var result []domain.Complaint
	for rows.Next() {
		complaint, err := scanComplaint(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *complaint)
	}
	return result, rows.Err()
}
