package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/internal/service"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

func newNotificationService(db *gorm.DB, mailer *testutil.MailRecorder) *service.NotificationService {
	return service.NewNotificationService(
		mailer,
		repository.NewNotificationRepository(db),
		repository.NewOwnerRepository(db),
		testutil.TestConfig(),
		zap.NewNop(),
	)
}

func TestNotificationService_SendTicketAssigned(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &testutil.MailRecorder{}
	svc := newNotificationService(db, mailer)
	ctx := context.Background()

	owner := testutil.CreateOwner(t, db, "Mario", "Rossi", "mario.rossi@test.local")
	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	ticket.OwnerID = &owner.ID
	require.NoError(t, db.Save(ticket).Error)

	delivered, err := svc.SendTicketAssigned(ctx, ticket)
	require.NoError(t, err)
	assert.True(t, delivered)

	require.Equal(t, 1, mailer.Count())
	sent := mailer.Sent[0]
	assert.Equal(t, "mario.rossi@test.local", sent.To)
	assert.Contains(t, sent.Subject, "Formazione 4.0", "subject carries the service accent label")
	assert.Contains(t, sent.Body, "TCK-F40-aaaa-01")
	assert.Contains(t, sent.Body, "http://localhost:3000/dashboard/ticket/")

	var rows []domain.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, domain.NotificationKindTicketAssigned, rows[0].Kind)
	assert.True(t, rows[0].Delivered)
	assert.NotNil(t, rows[0].SentAt)
}

func TestNotificationService_SendTicketAssigned_NoOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &testutil.MailRecorder{}
	svc := newNotificationService(db, mailer)

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	delivered, err := svc.SendTicketAssigned(context.Background(), ticket)
	require.NoError(t, err)
	assert.False(t, delivered)
	assert.Equal(t, 0, mailer.Count())
}

func TestNotificationService_SendTicketAssigned_OwnerWithoutEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &testutil.MailRecorder{}
	svc := newNotificationService(db, mailer)

	owner := testutil.CreateOwner(t, db, "Mario", "Rossi", "")
	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	ticket.OwnerID = &owner.ID
	require.NoError(t, db.Save(ticket).Error)

	delivered, err := svc.SendTicketAssigned(context.Background(), ticket)
	require.NoError(t, err)
	assert.False(t, delivered)
	assert.Equal(t, 0, mailer.Count())
}

func TestNotificationService_SendTicketAssigned_SMTPFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &testutil.MailRecorder{Err: assert.AnError}
	svc := newNotificationService(db, mailer)

	owner := testutil.CreateOwner(t, db, "Mario", "Rossi", "mario.rossi@test.local")
	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	ticket.OwnerID = &owner.ID
	require.NoError(t, db.Save(ticket).Error)

	// Delivery failure is recorded, not returned as an error
	delivered, err := svc.SendTicketAssigned(context.Background(), ticket)
	require.NoError(t, err)
	assert.False(t, delivered)

	var rows []domain.Notification
	require.NoError(t, db.Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.False(t, rows[0].Delivered)
	assert.Nil(t, rows[0].SentAt)
}

func TestNotificationService_SendTicketAssigned_UnknownServiceAccent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &testutil.MailRecorder{}
	svc := newNotificationService(db, mailer)

	owner := testutil.CreateOwner(t, db, "Mario", "Rossi", "mario.rossi@test.local")
	ticket := testutil.CreateTicket(t, db, "TCK-ZZZ-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	ticket.OwnerID = &owner.ID
	require.NoError(t, db.Save(ticket).Error)

	delivered, err := svc.SendTicketAssigned(context.Background(), ticket)
	require.NoError(t, err)
	assert.True(t, delivered)
	assert.Contains(t, mailer.Sent[0].Subject, "Servizio", "unknown codes fall back to the generic accent")
}

func TestNotificationService_List(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mailer := &testutil.MailRecorder{}
	svc := newNotificationService(db, mailer)
	ctx := context.Background()

	repo := repository.NewNotificationRepository(db)
	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, &domain.Notification{
			Kind:      domain.NotificationKindSLAWarning,
			Recipient: "warn@test.local",
			Subject:   "warning",
			Delivered: true,
		}))
	}
	require.NoError(t, repo.Create(ctx, &domain.Notification{
		Kind:      domain.NotificationKindSLAEscalation,
		Recipient: "esc@test.local",
		Subject:   "escalation",
		Delivered: true,
	}))

	page, err := svc.List(ctx, domain.NotificationKindSLAWarning, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Data.([]domain.NotificationDTO), 2)

	all, err := svc.List(ctx, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(4), all.Total)
	assert.Equal(t, 1, all.TotalPages)
}
