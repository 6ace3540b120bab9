package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/complaint-service/internal/domain"
)

// FeedbackRepository stores post-closure feedback.
//
// CreateWithLog inserts the feedback, flips the complaint's feedback_submitted
// flag and appends the activity-log entry in one transaction. The flag flip is
// guarded so a concurrent duplicate submission loses with ErrStaleStatus.
type FeedbackRepository interface {
	CreateWithLog(ctx context.Context, feedback *domain.Feedback, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, limit, offset int) ([]domain.Feedback, error)
	AverageRating(ctx context.Context) (float64, int, error)
}

type feedbackRepository struct {
	pool *pgxpool.Pool
}

// NewFeedbackRepository builds the repository.
func NewFeedbackRepository(pool *pgxpool.Pool) FeedbackRepository {
	return &feedbackRepository{pool: pool}
}

func (r *feedbackRepository) CreateWithLog(ctx context.Context, feedback *domain.Feedback, entry *domain.ActivityLogEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	const guard = `
        UPDATE complaints SET feedback_submitted=true, updated_at=NOW()
        WHERE id=$1 AND status=$2 AND admin_verification=true AND feedback_submitted=false`
	cmd, err := tx.Exec(ctx, guard, feedback.ComplaintID, domain.ComplaintStatusClosed)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleStatus
	}

	const insert = `
        INSERT INTO feedback (complaint_id, rating, message, type, anonymous)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	if err := tx.QueryRow(ctx, insert,
		feedback.ComplaintID,
		feedback.Rating,
		feedback.Message,
		feedback.Type,
		feedback.Anonymous,
	).Scan(&feedback.ID, &feedback.CreatedAt); err != nil {
		return err
	}

	entry.ComplaintID = feedback.ComplaintID
	if err := insertActivityLog(ctx, tx, entry); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *feedbackRepository) List(ctx context.Context, limit, offset int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT id, complaint_id, rating, message, type, anonymous, created_at
        FROM feedback ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Feedback
	for rows.Next() {
		var f domain.Feedback
		if err := rows.Scan(&f.ID, &f.ComplaintID, &f.Rating, &f.Message, &f.Type, &f.Anonymous, &f.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	return result, rows.Err()
}

func (r *feedbackRepository) AverageRating(ctx context.Context) (float64, int, error) {
	const query = `SELECT COALESCE(AVG(rating), 0), COUNT(*) FROM feedback`
	var avg float64
	var count int
	err := r.pool.QueryRow(ctx, query).Scan(&avg, &count)
	return avg, count, err
}
