package jobs_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/jobs"
)

type sweeperStub struct {
	warningCalls int
	overdueCalls int
	err          error
}

func (s *sweeperStub) CheckWarningTasks(ctx context.Context) (*domain.SweepResult, error) {
	s.warningCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.SweepResult{Checked: 1, Sent: 1}, nil
}

func (s *sweeperStub) CheckOverdueTasks(ctx context.Context) (*domain.SweepResult, error) {
	s.overdueCalls++
	if s.err != nil {
		return nil, s.err
	}
	return &domain.SweepResult{Checked: 2, Sent: 1}, nil
}

type closerStub struct {
	calls int
}

func (c *closerStub) AutoCloseCompletedTickets(ctx context.Context) (*domain.AutoCloseResult, error) {
	c.calls++
	return &domain.AutoCloseResult{Closed: 1}, nil
}

func TestScheduler_AddJob_RejectsDuplicateName(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	require.NoError(t, scheduler.AddJob("sweep", "@hourly", func() {}))
	err := scheduler.AddJob("sweep", "@hourly", func() {})
	assert.Error(t, err)
}

func TestScheduler_AddJob_InvalidExpression(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	err := scheduler.AddJob("broken", "not a cron expr", func() {})
	assert.Error(t, err)
	assert.Empty(t, scheduler.JobNames())
}

func TestRegisterSLAJobs(t *testing.T) {
	scheduler := jobs.NewScheduler(zap.NewNop())

	err := jobs.RegisterSLAJobs(
		scheduler,
		&sweeperStub{},
		&closerStub{},
		zap.NewNop(),
		"0 0 7 * * *",
		"0 30 7 * * *",
		time.Second,
	)
	require.NoError(t, err)

	assert.Equal(t, []string{jobs.SLASweepJobName, jobs.AutoCloseJobName}, scheduler.JobNames())
}

func TestSLASweepJob_Run(t *testing.T) {
	sweeper := &sweeperStub{}
	job := jobs.NewSLASweepJob(sweeper, zap.NewNop(), time.Second)

	job.Run()

	assert.Equal(t, 1, sweeper.warningCalls)
	assert.Equal(t, 1, sweeper.overdueCalls)
}

func TestSLASweepJob_Run_WarningFailureStillEscalates(t *testing.T) {
	sweeper := &sweeperStub{err: assert.AnError}
	job := jobs.NewSLASweepJob(sweeper, zap.NewNop(), time.Second)

	job.Run()

	assert.Equal(t, 1, sweeper.warningCalls)
	assert.Equal(t, 1, sweeper.overdueCalls)
}

func TestAutoCloseJob_Run(t *testing.T) {
	closer := &closerStub{}
	job := jobs.NewAutoCloseJob(closer, zap.NewNop(), time.Second)

	job.Run()

	assert.Equal(t, 1, closer.calls)
}
