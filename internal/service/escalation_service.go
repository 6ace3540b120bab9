package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/observability"
	"github.com/spec-kit/complaint-service/internal/repository"
)

// EscalationService sweeps for overdue complaints and escalates each one
// through the lifecycle engine. A failure on one complaint never blocks the
// rest of the sweep.
type EscalationService struct {
	complaints repository.ComplaintRepository
	lifecycle  *LifecycleService
	metrics    *observability.Metrics
	logger     *zap.Logger
	now        func() time.Time
}

// SweepReport summarizes a single sweep run.
type SweepReport struct {
	Scanned   int
	Escalated int
	Failed    int
}

// NewEscalationService constructs the sweeper.
func NewEscalationService(
	complaints repository.ComplaintRepository,
	lifecycle *LifecycleService,
	metrics *observability.Metrics,
	logger *zap.Logger,
	now func() time.Time,
) *EscalationService {
	if now == nil {
		now = time.Now
	}
	return &EscalationService{
		complaints: complaints,
		lifecycle:  lifecycle,
		metrics:    metrics,
		logger:     logger,
		now:        now,
	}
}

// Sweep finds every in-flight complaint whose deadline has passed and
// escalates it. Each escalation re-reads and compare-and-swaps the complaint,
// so a sweep racing a technician action simply skips that complaint.
func (s *EscalationService) Sweep(ctx context.Context) (SweepReport, error) {
	report := SweepReport{}

	overdue, err := s.complaints.ListOverdue(ctx, s.now())
	if err != nil {
		return report, err
	}
	report.Scanned = len(overdue)

	for i := range overdue {
		complaint := &overdue[i]
		if _, err := s.lifecycle.Escalate(ctx, complaint.ID); err != nil {
			report.Failed++
			s.logger.Warn("escalation skipped",
				zap.String("complaint_id", complaint.ID),
				zap.Error(err),
			)
			continue
		}
		report.Escalated++
	}

	if s.metrics != nil {
		s.metrics.RecordSweep(report.Escalated)
	}
	s.logger.Info("escalation sweep finished",
		zap.Int("scanned", report.Scanned),
		zap.Int("escalated", report.Escalated),
		zap.Int("failed", report.Failed),
	)
	return report, nil
}
