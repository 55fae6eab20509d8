package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enduser-digital/intelligence-api/internal/domain"
	"github.com/enduser-digital/intelligence-api/internal/repository"
	"github.com/enduser-digital/intelligence-api/tests/testutil"
)

func TestTaskRepository_CountByTicket(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	due := time.Now().UTC().Add(72 * time.Hour)
	testutil.CreateTask(t, db, ticket.ID, "Raccolta documentazione", domain.WorkStatusClosed, &due)
	testutil.CreateTask(t, db, ticket.ID, "Redazione relazione", domain.WorkStatusOpen, &due)
	testutil.CreateTask(t, db, ticket.ID, "Invio relazione", domain.WorkStatusOpen, &due)

	total, closed, err := repo.CountByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(1), closed)

	open, err := repo.CountOpenByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), open)
}

func TestTaskRepository_ListOverdue(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	pastDue := now.Add(-48 * time.Hour)
	futureDue := now.Add(48 * time.Hour)
	older := now.Add(-96 * time.Hour)
	testutil.CreateTask(t, db, ticket.ID, "Scaduto", domain.WorkStatusOpen, &pastDue)
	testutil.CreateTask(t, db, ticket.ID, "Scaduto da più tempo", domain.WorkStatusOpen, &older)
	testutil.CreateTask(t, db, ticket.ID, "Scaduto ma chiuso", domain.WorkStatusClosed, &pastDue)
	testutil.CreateTask(t, db, ticket.ID, "Futuro", domain.WorkStatusOpen, &futureDue)
	testutil.CreateTask(t, db, ticket.ID, "Senza scadenza", domain.WorkStatusOpen, nil)

	tasks, err := repo.ListOverdue(ctx, now)
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "Scaduto da più tempo", tasks[0].Title, "oldest due date first")
	assert.Equal(t, "Scaduto", tasks[1].Title)
}

func TestTaskRepository_ListDueWithin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)

	soon := now.Add(24 * time.Hour)
	far := now.Add(120 * time.Hour)
	past := now.Add(-24 * time.Hour)
	testutil.CreateTask(t, db, ticket.ID, "In scadenza", domain.WorkStatusOpen, &soon)
	testutil.CreateTask(t, db, ticket.ID, "Lontano", domain.WorkStatusOpen, &far)
	testutil.CreateTask(t, db, ticket.ID, "Già scaduto", domain.WorkStatusOpen, &past)
	testutil.CreateTask(t, db, ticket.ID, "In scadenza ma chiuso", domain.WorkStatusClosed, &soon)

	tasks, err := repo.ListDueWithin(ctx, now, 48*time.Hour)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "In scadenza", tasks[0].Title)
}

func TestTaskRepository_Watermarks(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	due := time.Now().UTC().Add(-24 * time.Hour)
	task := testutil.CreateTask(t, db, ticket.ID, "Scaduto", domain.WorkStatusOpen, &due)

	warnedAt := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, repo.MarkWarned(ctx, task.ID, warnedAt))
	require.NoError(t, repo.MarkEscalated(ctx, task.ID, warnedAt))

	reloaded, err := repo.GetByID(ctx, task.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded)
	require.NotNil(t, reloaded.LastWarnedAt)
	require.NotNil(t, reloaded.LastEscalatedAt)
	assert.WithinDuration(t, warnedAt, *reloaded.LastWarnedAt, time.Second)
	assert.WithinDuration(t, warnedAt, *reloaded.LastEscalatedAt, time.Second)
}

func TestTaskRepository_ListByTicket_Ordered(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewTaskRepository(db)
	ctx := context.Background()

	ticket := testutil.CreateTicket(t, db, "TCK-F40-aaaa-01", "ACME SPA", domain.WorkStatusOpen)
	for i, title := range []string{"Terzo", "Primo", "Secondo"} {
		task := testutil.CreateTask(t, db, ticket.ID, title, domain.WorkStatusOpen, nil)
		task.Order = []int{3, 1, 2}[i]
		require.NoError(t, db.Save(task).Error)
	}

	tasks, err := repo.ListByTicket(ctx, ticket.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Primo", tasks[0].Title)
	assert.Equal(t, "Secondo", tasks[1].Title)
	assert.Equal(t, "Terzo", tasks[2].Title)
}
