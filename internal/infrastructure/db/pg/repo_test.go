package pg_test

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminhub/internal/domain"
	"adminhub/internal/domain/audit"
	"adminhub/internal/domain/contract"
	"adminhub/internal/domain/lead"
	"adminhub/internal/domain/notification"
	"adminhub/internal/domain/webhook"
	"adminhub/internal/infrastructure/db/pg"
)

var migrateOnce sync.Once

func openDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))

	migrateOnce.Do(func() {
		require.NoError(t, goose.SetDialect("postgres"))
		require.NoError(t, goose.Up(db, filepath.Join("..", "..", "..", "..", "migrations")))
	})

	_, err = db.ExecContext(ctx, `
		TRUNCATE TABLE webhook_deliveries, webhook_endpoints, audit_logs, notifications, contracts, leads
		RESTART IDENTITY CASCADE;
	`)
	require.NoError(t, err)
	return db
}

func TestLeadRepository_ConvertInsideTx(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	uow := pg.NewTxManager(db)
	repo := pg.NewLeadRepository(db)

	created, err := repo.Create(ctx, lead.Lead{ID: "l1", Name: "Ada", Email: "ada@example.com", Status: lead.StatusNew})
	require.NoError(t, err)
	require.NotNil(t, created.CreatedAt)

	_, err = repo.Create(ctx, lead.Lead{ID: "l1", Name: "Ada", Email: "ada@example.com", Status: lead.StatusNew})
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeLeadExists, de.Code)

	var converted lead.Lead
	err = uow.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := repo.LockByID(ctx, "l1"); err != nil {
			return err
		}
		converted, err = repo.MarkConverted(ctx, "l1", "client-1")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, lead.StatusConverted, converted.Status)
	require.NotNil(t, converted.ClientID)
	assert.Equal(t, "client-1", *converted.ClientID)
	assert.NotNil(t, converted.ConvertedAt)

	_, err = repo.LockByID(ctx, "missing")
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeNotFound, de.Code)
}

func TestContractRepository_StatusTimestamps(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := pg.NewContractRepository(db)

	_, err := repo.Create(ctx, contract.Contract{ID: "k1", ClientID: "c1", Title: "Retainer", AmountCents: 1000, Status: contract.StatusDraft})
	require.NoError(t, err)

	sent, err := repo.UpdateStatus(ctx, "k1", contract.StatusSent)
	require.NoError(t, err)
	require.NotNil(t, sent.SentAt)
	assert.Nil(t, sent.SignedAt)

	signed, err := repo.UpdateStatus(ctx, "k1", contract.StatusSigned)
	require.NoError(t, err)
	assert.Equal(t, contract.StatusSigned, signed.Status)
	require.NotNil(t, signed.SignedAt)
	assert.Equal(t, sent.SentAt.UTC(), signed.SentAt.UTC())
}

func TestNotificationRepository_ListAndRead(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := pg.NewNotificationRepository(db)

	client := "c1"
	now := time.Now().UTC()
	require.NoError(t, repo.Insert(ctx, notification.Notification{
		ID: "n1", RecipientType: notification.RecipientAdmin, Type: "contract.signed",
		Title: "Contract Signed", Message: "m", Priority: notification.PriorityHigh,
		Metadata: map[string]any{"clientId": client}, CreatedAt: now,
	}))
	require.NoError(t, repo.Insert(ctx, notification.Notification{
		ID: "n2", RecipientType: notification.RecipientClient, RecipientID: &client, ClientID: &client,
		Type: "contract.signed", Title: "Contract Signed", Message: "m", Priority: notification.PriorityNormal,
		CreatedAt: now,
	}))

	admin, err := repo.List(ctx, notification.Filter{RecipientType: notification.RecipientAdmin, Limit: 10})
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, "c1", admin[0].Metadata["clientId"])

	count, err := repo.UnreadCount(ctx, notification.RecipientClient, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	read, err := repo.MarkRead(ctx, "n2")
	require.NoError(t, err)
	assert.True(t, read.IsRead)
	assert.NotNil(t, read.ReadAt)

	unread, err := repo.List(ctx, notification.Filter{RecipientType: notification.RecipientClient, ClientID: "c1", UnreadOnly: true, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, unread)

	_, err = repo.MarkRead(ctx, "missing")
	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.ErrorCodeNotFound, de.Code)
}

func TestAuditRepository_FilterByResource(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	repo := pg.NewAuditRepository(db)

	ip := "10.0.0.1"
	for _, id := range []string{"k1", "k2"} {
		require.NoError(t, repo.Insert(ctx, audit.Entry{
			ID: uuid.NewString(), ActorID: "u1", ActorName: "Ann", Action: audit.ActionSign,
			ResourceType: "contract", ResourceID: id, Details: map[string]any{"event": "contract.signed"},
			IPAddress: &ip, CreatedAt: time.Now().UTC(),
		}))
	}

	got, err := repo.List(ctx, audit.Filter{ResourceType: "contract", ResourceID: "k2", Limit: 10})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, audit.ActionSign, got[0].Action)
	assert.Equal(t, "contract.signed", got[0].Details["event"])
	require.NotNil(t, got[0].IPAddress)
	assert.Equal(t, ip, *got[0].IPAddress)
}

func TestWebhookRepositories(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	endpoints := pg.NewWebhookEndpointRepository(db)
	deliveries := pg.NewWebhookDeliveryRepository(db)

	ep, err := endpoints.Create(ctx, webhook.Endpoint{
		ID: "e1", URL: "https://example.com/hook", Secret: "s",
		EventTypes: []domain.EventType{domain.EventContractSigned}, Active: true,
	})
	require.NoError(t, err)
	assert.Equal(t, []domain.EventType{domain.EventContractSigned}, ep.EventTypes)

	active, err := endpoints.ActiveEndpoints(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.True(t, active[0].Accepts(domain.EventContractSigned))
	assert.False(t, active[0].Accepts(domain.EventLeadCreated))

	require.NoError(t, deliveries.Record(ctx, webhook.Delivery{
		ID: uuid.NewString(), EndpointID: "e1", EventType: domain.EventContractSigned,
		EntityID: "k1", StatusCode: 200, Attempts: 1, DurationMS: 12, CreatedAt: time.Now().UTC(),
	}))
	list, err := deliveries.ListByEndpoint(ctx, "e1", 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Succeeded())

	require.NoError(t, endpoints.Delete(ctx, "e1"))
	var de *domain.DomainError
	require.ErrorAs(t, endpoints.Delete(ctx, "e1"), &de)
	assert.Equal(t, domain.ErrorCodeNotFound, de.Code)
}
