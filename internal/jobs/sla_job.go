package jobs

import (
	"context"
	"time"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"go.uber.org/zap"
)

// SLASweepJobName is the name of the periodic SLA sweep job
const SLASweepJobName = "sla_sweep"

// AutoCloseJobName is the name of the ticket auto-close job
const AutoCloseJobName = "ticket_auto_close"

// SLASweeper is the slice of the SLA service the sweep job calls
type SLASweeper interface {
	CheckWarningTasks(ctx context.Context) (*domain.SweepResult, error)
	CheckOverdueTasks(ctx context.Context) (*domain.SweepResult, error)
}

// TicketCloser is the slice of the status service the auto-close job calls
type TicketCloser interface {
	AutoCloseCompletedTickets(ctx context.Context) (*domain.AutoCloseResult, error)
}

// SLASweepJob runs the warning and escalation scans on a schedule
type SLASweepJob struct {
	sweeper SLASweeper
	logger  *zap.Logger
	timeout time.Duration
}

func NewSLASweepJob(sweeper SLASweeper, logger *zap.Logger, timeout time.Duration) *SLASweepJob {
	return &SLASweepJob{
		sweeper: sweeper,
		logger:  logger,
		timeout: timeout,
	}
}

// Run executes one full sweep. A failed warning scan does not stop the
// escalation scan.
func (j *SLASweepJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	var warned, escalated int
	if result, err := j.sweeper.CheckWarningTasks(ctx); err != nil {
		j.logger.Error("warning scan failed", zap.Error(err))
	} else {
		warned = result.Sent
	}

	if result, err := j.sweeper.CheckOverdueTasks(ctx); err != nil {
		j.logger.Error("escalation scan failed", zap.Error(err))
	} else {
		escalated = result.Sent
	}

	j.logger.Info("SLA sweep completed",
		zap.Int("warnings_sent", warned),
		zap.Int("escalations_sent", escalated),
		zap.Duration("duration", time.Since(start)))
}

// AutoCloseJob closes tickets whose tasks have all been closed
type AutoCloseJob struct {
	closer  TicketCloser
	logger  *zap.Logger
	timeout time.Duration
}

func NewAutoCloseJob(closer TicketCloser, logger *zap.Logger, timeout time.Duration) *AutoCloseJob {
	return &AutoCloseJob{
		closer:  closer,
		logger:  logger,
		timeout: timeout,
	}
}

func (j *AutoCloseJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()

	result, err := j.closer.AutoCloseCompletedTickets(ctx)
	if err != nil {
		j.logger.Error("ticket auto-close failed", zap.Error(err))
		return
	}

	j.logger.Info("ticket auto-close completed",
		zap.Int("closed", result.Closed),
		zap.Duration("duration", time.Since(start)))
}

// RegisterSLAJobs wires the sweep and auto-close jobs into the scheduler
func RegisterSLAJobs(
	scheduler *Scheduler,
	sweeper SLASweeper,
	closer TicketCloser,
	logger *zap.Logger,
	sweepCron, autoCloseCron string,
	timeout time.Duration,
) error {
	sweepJob := NewSLASweepJob(sweeper, logger, timeout)
	if err := scheduler.AddJob(SLASweepJobName, sweepCron, sweepJob.Run); err != nil {
		return err
	}

	closeJob := NewAutoCloseJob(closer, logger, timeout)
	return scheduler.AddJob(AutoCloseJobName, autoCloseCron, closeJob.Run)
}
