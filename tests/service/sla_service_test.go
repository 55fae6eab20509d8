package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enduser-digital/intelligence-api/internal/config"
	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/internal/service"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

type slaFixture struct {
	db     *gorm.DB
	mailer *testutil.MailRecorder
}

func newSLAFixture(t *testing.T) *slaFixture {
	return &slaFixture{
		db:     testutil.SetupTestDB(t),
		mailer: &testutil.MailRecorder{},
	}
}

// newSLAService builds the scanner over the fixture's database with the
// given re-notify interval in hours
func newSLAService(f *slaFixture, renotifyHours int) *service.SLAService {
	log := zap.NewNop()
	cfg := testutil.TestConfig()
	cfg.SLA.RenotifyIntervalHours = renotifyHours

	taskRepo := repository.NewTaskRepository(f.db)
	catalogRepo := repository.NewCatalogRepository(f.db)
	ownerRepo := repository.NewOwnerRepository(f.db)
	notificationRepo := repository.NewNotificationRepository(f.db)

	notificationSvc := service.NewNotificationService(f.mailer, notificationRepo, ownerRepo, cfg, log)
	return service.NewSLAService(taskRepo, catalogRepo, notificationSvc, &cfg.SLA, log)
}

// seedSLATask creates an owned task under a milestone/template with the
// given thresholds, due at the given instant
func seedSLATask(t *testing.T, f *slaFixture, due time.Time, warningDays, escalationDays int) *domain.Task {
	owner := testutil.CreateOwner(t, f.db, "Mario", "Rossi", "mario.rossi+"+due.Format("150405.000000")+"@test.local")
	milestone := testutil.CreateMilestone(t, f.db, "F40", "Analisi", 1, 5)

	template := &domain.PhaseTemplate{
		Code:           "tpl",
		Type:           "standard",
		Description:    "Raccolta documentazione",
		MilestoneID:    milestone.ID,
		Order:          1,
		SLADays:        3,
		WarningDays:    warningDays,
		EscalationDays: escalationDays,
	}
	require.NoError(t, f.db.Create(template).Error)

	ticket := testutil.CreateTicket(t, f.db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	task := &domain.Task{
		TicketID:        ticket.ID,
		PhaseTemplateID: &template.ID,
		Title:           "Raccolta documentazione",
		Description:     "Raccolta documentazione",
		Status:          domain.WorkStatusOpen,
		Priority:        2,
		DueDate:         &due,
		Order:           1,
		OwnerID:         &owner.ID,
		CustomerName:    "ACME SPA",
	}
	require.NoError(t, f.db.Create(task).Error)
	return task
}

func TestSLAService_Classify(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	now := time.Now().UTC()

	past := now.Add(-time.Hour)
	soon := now.Add(24 * time.Hour)
	far := now.AddDate(0, 0, 10)

	closed := &domain.Task{Status: domain.WorkStatusClosed, DueDate: &past}
	assert.Equal(t, domain.SLAStateOnTrack, svc.Classify(closed, now))

	noDue := &domain.Task{Status: domain.WorkStatusOpen}
	assert.Equal(t, domain.SLAStateOnTrack, svc.Classify(noDue, now))

	overdue := &domain.Task{Status: domain.WorkStatusOpen, DueDate: &past}
	assert.Equal(t, domain.SLAStateOverdue, svc.Classify(overdue, now))

	warning := &domain.Task{Status: domain.WorkStatusOpen, DueDate: &soon}
	assert.Equal(t, domain.SLAStateWarning, svc.Classify(warning, now))

	onTrack := &domain.Task{Status: domain.WorkStatusOpen, DueDate: &far}
	assert.Equal(t, domain.SLAStateOnTrack, svc.Classify(onTrack, now))
}

func TestSLAService_CheckOverdueTasks_Escalates(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	due := time.Now().UTC().Add(-4 * 24 * time.Hour)
	task := seedSLATask(t, f, due, 2, 3)

	result, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Sent)
	assert.Equal(t, 1, f.mailer.Count())
	assert.Contains(t, f.mailer.Sent[0].Subject, "ESCALATION")

	var reloaded domain.Task
	require.NoError(t, f.db.First(&reloaded, "id = ?", task.ID).Error)
	assert.NotNil(t, reloaded.LastEscalatedAt)

	var logged domain.Notification
	require.NoError(t, f.db.First(&logged, "kind = ?", domain.NotificationKindSLAEscalation).Error)
	assert.True(t, logged.Delivered)
	assert.NotNil(t, logged.SentAt)
}

func TestSLAService_CheckOverdueTasks_BelowThreshold(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	// Overdue by one day against a three day escalation threshold
	due := time.Now().UTC().Add(-26 * time.Hour)
	seedSLATask(t, f, due, 2, 3)

	result, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, f.mailer.Count())
}

func TestSLAService_CheckOverdueTasks_ThresholdBoundary(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	// Exactly at the escalation threshold counts as escalatable
	due := time.Now().UTC().Add(-(3*24 + 1) * time.Hour)
	seedSLATask(t, f, due, 2, 3)

	result, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestSLAService_CheckOverdueTasks_Watermark(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	due := time.Now().UTC().Add(-5 * 24 * time.Hour)
	seedSLATask(t, f, due, 2, 3)

	first, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	// A second sweep within the re-notify interval stays quiet
	second, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Sent)
	assert.Equal(t, 1, f.mailer.Count())

	// A zero interval restores notify-on-every-sweep
	legacy := newSLAService(f, 0)
	third, err := legacy.CheckOverdueTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, third.Sent)
	assert.Equal(t, 2, f.mailer.Count())
}

func TestSLAService_CheckOverdueTasks_NoOwner(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, f.db, "TCK-F40-bbbb-01", "ACME SPA", domain.WorkStatusOpen)
	due := time.Now().UTC().Add(-5 * 24 * time.Hour)
	testutil.CreateTask(t, f.db, ticket.ID, "Raccolta documentazione", domain.WorkStatusOpen, &due)

	result, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)

	// No recipient means no send and no watermark
	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 0, result.Sent)
	assert.Equal(t, 0, f.mailer.Count())
}

func TestSLAService_CheckOverdueTasks_DefaultThresholds(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	// Task without any template falls back to the default escalation
	// threshold of three days
	owner := testutil.CreateOwner(t, f.db, "Mario", "Rossi", "mario.rossi@test.local")
	ticket := testutil.CreateTicket(t, f.db, "TCK-F40-cccc-01", "ACME SPA", domain.WorkStatusOpen)
	due := time.Now().UTC().Add(-4 * 24 * time.Hour)
	task := testutil.CreateTask(t, f.db, ticket.ID, "Attività legacy", domain.WorkStatusOpen, &due)
	task.OwnerID = &owner.ID
	require.NoError(t, f.db.Save(task).Error)

	result, err := svc.CheckOverdueTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Sent)
}

func TestSLAService_CheckWarningTasks(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	// Due tomorrow, inside the two day warning threshold
	due := time.Now().UTC().Add(24 * time.Hour)
	task := seedSLATask(t, f, due, 2, 3)

	result, err := svc.CheckWarningTasks(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Checked)
	assert.Equal(t, 1, result.Sent)
	require.Equal(t, 1, f.mailer.Count())
	assert.Contains(t, f.mailer.Sent[0].Subject, "WARNING")

	var reloaded domain.Task
	require.NoError(t, f.db.First(&reloaded, "id = ?", task.ID).Error)
	assert.NotNil(t, reloaded.LastWarnedAt)

	// Within the re-notify interval the second sweep is silent
	second, err := svc.CheckWarningTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Sent)
}

func TestSLAService_CheckWarningTasks_OutsideLookahead(t *testing.T) {
	f := newSLAFixture(t)
	svc := newSLAService(f, 24)
	ctx := context.Background()

	// Due in five days: outside the warning lookahead entirely
	due := time.Now().UTC().AddDate(0, 0, 5)
	seedSLATask(t, f, due, 2, 3)

	result, err := svc.CheckWarningTasks(ctx)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Checked)
	assert.Equal(t, 0, result.Sent)
}

func TestSLAService_SweepConfig(t *testing.T) {
	cfg := config.SLAConfig{RenotifyIntervalHours: 24, JobTimeout: 300}
	assert.Equal(t, 24*time.Hour, cfg.RenotifyInterval())
	assert.Equal(t, 5*time.Minute, cfg.JobTimeoutDuration())
}
