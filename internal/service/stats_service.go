package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/domain"
	"github.com/spec-kit/complaint-service/internal/repository"
	apperrors "github.com/spec-kit/complaint-service/pkg/util"
)

// StatsService computes role-scoped dashboard counters. Results are cached in
// Redis for a short TTL since the dashboard polls; the cache is strictly an
// optimization and every Redis failure falls through to Postgres.
type StatsService struct {
	complaints repository.ComplaintRepository
	users      repository.UserRepository
	feedback   repository.FeedbackRepository
	cache      *redis.Client
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// DashboardStats is the counters payload.
type DashboardStats struct {
	Total         int     `json:"total"`
	Pending       int     `json:"pending"`
	Assigned      int     `json:"assigned"`
	InProgress    int     `json:"in_progress"`
	Resolved      int     `json:"resolved"`
	Closed        int     `json:"closed"`
	Rejected      int     `json:"rejected"`
	Escalated     int     `json:"escalated"`
	Students      int     `json:"students,omitempty"`
	Technicians   int     `json:"technicians,omitempty"`
	FeedbackCount int     `json:"feedback_count,omitempty"`
	AverageRating float64 `json:"average_rating,omitempty"`
}

// NewStatsService constructs the service. cache may be nil.
func NewStatsService(
	complaints repository.ComplaintRepository,
	users repository.UserRepository,
	feedback repository.FeedbackRepository,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) *StatsService {
	return &StatsService{
		complaints: complaints,
		users:      users,
		feedback:   feedback,
		cache:      cache,
		cacheTTL:   cacheTTL,
		logger:     logger,
	}
}

// Dashboard returns counters scoped to the caller: students over their own
// complaints, technicians over their assignments, admins over everything plus
// user and feedback totals.
func (s *StatsService) Dashboard(ctx context.Context, actor *domain.User) (*DashboardStats, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("authentication required")
	}

	key := fmt.Sprintf("stats:dashboard:%s:%s", actor.Role, actor.ID)
	if cached := s.fromCache(ctx, key); cached != nil {
		return cached, nil
	}

	filter := repository.ComplaintFilter{}
	switch actor.Role {
	case domain.RoleStudent:
		filter.StudentID = &actor.ID
	case domain.RoleTechnician:
		filter.TechnicianID = &actor.ID
	case domain.RoleAdmin:
	default:
		return nil, apperrors.NewForbidden("unknown role")
	}

	counts, err := s.complaints.CountByStatus(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	stats := &DashboardStats{
		Pending:    counts[domain.ComplaintStatusPending],
		Assigned:   counts[domain.ComplaintStatusAssigned],
		InProgress: counts[domain.ComplaintStatusInProgress],
		Resolved:   counts[domain.ComplaintStatusResolved],
		Closed:     counts[domain.ComplaintStatusClosed],
		Rejected:   counts[domain.ComplaintStatusRejected],
		Escalated:  counts[domain.ComplaintStatusEscalated],
	}
	for _, count := range counts {
		stats.Total += count
	}

	if actor.Role == domain.RoleAdmin {
		if students, err := s.users.CountByRole(ctx, domain.RoleStudent); err == nil {
			stats.Students = students
		}
		if technicians, err := s.users.CountByRole(ctx, domain.RoleTechnician); err == nil {
			stats.Technicians = technicians
		}
		if avg, count, err := s.feedback.AverageRating(ctx); err == nil {
			stats.AverageRating = avg
			stats.FeedbackCount = count
		}
	}

	s.toCache(ctx, key, stats)
	return stats, nil
}

func (s *StatsService) fromCache(ctx context.Context, key string) *DashboardStats {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil
	}
	raw, err := s.cache.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var stats DashboardStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil
	}
	return &stats
}

func (s *StatsService) toCache(ctx context.Context, key string, stats *DashboardStats) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, raw, s.cacheTTL).Err(); err != nil {
		s.logger.Debug("stats cache write failed", zap.Error(err))
	}
}
