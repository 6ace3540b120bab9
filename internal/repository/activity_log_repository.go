package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// ActivityLogRepository stores append-only audit entries.
type ActivityLogRepository interface {
	Append(ctx context.Context, entry *domain.ActivityLogEntry) error
	ListByComplaint(ctx context.Context, complaintID string) ([]domain.ActivityLogEntry, error)
}

type activityLogRepository struct {
	pool *pgxpool.Pool
}

// NewActivityLogRepository builds the repository.
func NewActivityLogRepository(pool *pgxpool.Pool) ActivityLogRepository {
	return &activityLogRepository{pool: pool}
}

func (r *activityLogRepository) Append(ctx context.Context, entry *domain.ActivityLogEntry) error {
	const query = `
        INSERT INTO activity_logs (complaint_id, user_id, action, description)
        VALUES ($1,$2,$3,$4)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		entry.ComplaintID,
		entry.UserID,
		entry.Action,
		entry.Description,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) ListByComplaint(ctx context.Context, complaintID string) ([]domain.ActivityLogEntry, error) {
	const query = `
        SELECT id, complaint_id, user_id, action, description, created_at
        FROM activity_logs WHERE complaint_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, complaintID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLogEntry
	for rows.Next() {
		var entry domain.ActivityLogEntry
		if err := rows.Scan(
			&entry.ID,
			&entry.ComplaintID,
			&entry.UserID,
			&entry.Action,
			&entry.Description,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
