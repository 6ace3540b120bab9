package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/spec-kit/complaint-service/internal/service"
)

// EscalationWorker runs the overdue-complaint sweep on a fixed schedule.
type EscalationWorker struct {
	sweeper  *service.EscalationService
	interval time.Duration
	logger   *zap.Logger
	cron     *cron.Cron
}

// NewEscalationWorker builds the worker. interval controls how often the
// sweep fires.
func NewEscalationWorker(sweeper *service.EscalationService, interval time.Duration, logger *zap.Logger) *EscalationWorker {
	return &EscalationWorker{
		sweeper:  sweeper,
		interval: interval,
		logger:   logger,
	}
}

// Start schedules the sweep and launches the cron runner. The first sweep
// fires after one full interval, not at startup.
func (w *EscalationWorker) Start(ctx context.Context) error {
	if w.cron != nil {
		return nil
	}
	runner := cron.New()
	spec := fmt.Sprintf("@every %s", w.interval)
	_, err := runner.AddFunc(spec, func() {
		sweepCtx, cancel := context.WithTimeout(ctx, w.interval)
		defer cancel()
		if _, err := w.sweeper.Sweep(sweepCtx); err != nil {
			w.logger.Error("escalation sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}
	w.cron = runner
	w.cron.Start()
	w.logger.Info("escalation worker started", zap.Duration("interval", w.interval))
	return nil
}

// Stop halts the schedule and waits for an in-flight sweep to finish.
func (w *EscalationWorker) Stop() {
	if w.cron == nil {
		return
	}
	<-w.cron.Stop().Done()
	w.logger.Info("escalation worker stopped")
}
