package httpapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httpapi "adminhub/internal/app/http"
	"adminhub/internal/app/http/handler"
	"adminhub/internal/domain"
	"adminhub/internal/domain/audit"
	"adminhub/internal/domain/contract"
	"adminhub/internal/domain/lead"
	"adminhub/internal/domain/notification"
	"adminhub/internal/domain/webhook"
	"adminhub/internal/infrastructure/async"
	"adminhub/internal/infrastructure/metrics"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type uowStub struct{}

func (uowStub) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// memStore backs every repository the router needs.
type memStore struct {
	mu            sync.Mutex
	leads         map[string]lead.Lead
	contracts     map[string]contract.Contract
	notifications []notification.Notification
	audit         []audit.Entry
	endpoints     []webhook.Endpoint
}

func newMemStore() *memStore {
	return &memStore{
		leads:     map[string]lead.Lead{},
		contracts: map[string]contract.Contract{},
	}
}

type leadRepo struct{ *memStore }

func (s leadRepo) Create(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.leads[l.ID] = l
	return l, nil
}

func (s leadRepo) LockByID(ctx context.Context, id string) (lead.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.leads[id]
	if !ok {
		return lead.Lead{}, &domain.DomainError{Code: domain.ErrorCodeNotFound, Message: "lead not found", HTTPStatus: 404}
	}
	return l, nil
}

func (s leadRepo) MarkConverted(ctx context.Context, id, clientID string) (lead.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l := s.leads[id]
	l.Status = lead.StatusConverted
	l.ClientID = &clientID
	s.leads[id] = l
	return l, nil
}

type contractRepo struct{ *memStore }

func (s contractRepo) Create(ctx context.Context, c contract.Contract) (contract.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contracts[c.ID] = c
	return c, nil
}

func (s contractRepo) LockByID(ctx context.Context, id string) (contract.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.contracts[id]
	if !ok {
		return contract.Contract{}, &domain.DomainError{Code: domain.ErrorCodeNotFound, Message: "contract not found", HTTPStatus: 404}
	}
	return c, nil
}

func (s contractRepo) UpdateStatus(ctx context.Context, id string, status contract.Status) (contract.Contract, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := s.contracts[id]
	c.Status = status
	s.contracts[id] = c
	return c, nil
}

type notificationRepo struct{ *memStore }

func (s notificationRepo) Insert(ctx context.Context, n notification.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, n)
	return nil
}

func (s notificationRepo) List(ctx context.Context, f notification.Filter) ([]notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []notification.Notification
	for _, n := range s.notifications {
		if n.RecipientType != f.RecipientType {
			continue
		}
		if f.ClientID != "" && (n.ClientID == nil || *n.ClientID != f.ClientID) {
			continue
		}
		if f.UnreadOnly && n.IsRead {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s notificationRepo) MarkRead(ctx context.Context, id string) (notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			return s.notifications[i], nil
		}
	}
	return notification.Notification{}, &domain.DomainError{Code: domain.ErrorCodeNotFound, Message: "notification not found", HTTPStatus: 404}
}

func (s notificationRepo) UnreadCount(ctx context.Context, recipient notification.RecipientType, clientID string) (int, error) {
	items, err := s.List(ctx, notification.Filter{RecipientType: recipient, ClientID: clientID, UnreadOnly: true})
	return len(items), err
}

type auditRepo struct{ *memStore }

func (s auditRepo) Insert(ctx context.Context, e audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, e)
	return nil
}

func (s auditRepo) List(ctx context.Context, f audit.Filter) ([]audit.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []audit.Entry
	for _, e := range s.audit {
		if f.ResourceType != "" && e.ResourceType != f.ResourceType {
			continue
		}
		if f.ResourceID != "" && e.ResourceID != f.ResourceID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

type webhookRepo struct{ *memStore }

func (s webhookRepo) ActiveEndpoints(ctx context.Context) ([]webhook.Endpoint, error) {
	return s.List(ctx)
}

func (s webhookRepo) Create(ctx context.Context, e webhook.Endpoint) (webhook.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.CreatedAt = time.Now().UTC()
	s.endpoints = append(s.endpoints, e)
	return e, nil
}

func (s webhookRepo) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.endpoints {
		if e.ID == id {
			s.endpoints = append(s.endpoints[:i], s.endpoints[i+1:]...)
			return nil
		}
	}
	return &domain.DomainError{Code: domain.ErrorCodeNotFound, Message: "webhook endpoint not found", HTTPStatus: 404}
}

func (s webhookRepo) List(ctx context.Context) ([]webhook.Endpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]webhook.Endpoint(nil), s.endpoints...), nil
}

type deliveryRepo struct{}

func (deliveryRepo) Record(ctx context.Context, d webhook.Delivery) error { return nil }

func (deliveryRepo) ListByEndpoint(ctx context.Context, endpointID string, limit int) ([]webhook.Delivery, error) {
	return nil, nil
}

type testEnv struct {
	router *gin.Engine
	bus    *async.Dispatcher
	store  *memStore
}

// newTestEnv wires the API the way main does, with webhook delivery disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := zap.NewNop()
	reg := prometheus.NewRegistry()
	store := newMemStore()

	bus := async.NewDispatcher(context.Background(), log,
		async.WithHandlerTimeout(time.Second),
		async.WithMetrics(metrics.NewBus(reg)),
	)
	t.Cleanup(func() { _ = bus.Close(context.Background()) })

	notification.NewSubscriber(notificationRepo{store}, log).Register(bus)
	audit.NewSubscriber(auditRepo{store}, log).Register(bus)
	webhook.NewSubscriber(nil, log).Register(bus)

	h := handler.New(
		lead.NewService(uowStub{}, leadRepo{store}, bus),
		contract.NewService(uowStub{}, contractRepo{store}, bus),
		notification.NewService(notificationRepo{store}),
		audit.NewService(auditRepo{store}),
		webhook.NewService(webhookRepo{store}, deliveryRepo{}),
		log,
	)

	return &testEnv{
		router: httpapi.NewRouter(h, reg, log),
		bus:    bus,
		store:  store,
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Actor-ID", "admin-1")
	req.Header.Set("X-Actor-Name", "Ann Admin")
	req.RemoteAddr = "192.0.2.10:5555"

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// drain waits for every handler started so far.
func (e *testEnv) drain(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, e.bus.Close(ctx))
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestContractSigning_FansOutWithoutWebhooks(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/contracts", map[string]any{
		"contract_id": "k1", "client_id": "client-9", "title": "Annual retainer", "amount_cents": 120000,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, "/contracts/k1/send", nil).Code)

	w = env.do(t, http.MethodPost, "/contracts/k1/sign", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	signed := decode[struct {
		Contract struct {
			Status string `json:"status"`
		} `json:"contract"`
	}](t, w)
	assert.Equal(t, "SIGNED", signed.Contract.Status)

	env.drain(t)

	env.store.mu.Lock()
	defer env.store.mu.Unlock()

	var kinds []string
	var clientCopies int
	for _, n := range env.store.notifications {
		kinds = append(kinds, n.Type)
		if n.RecipientType == notification.RecipientClient {
			clientCopies++
			require.NotNil(t, n.ClientID)
			assert.Equal(t, "client-9", *n.ClientID)
		}
	}
	assert.ElementsMatch(t, []string{"contract_sent", "contract_sent", "contract_signed", "contract_signed"}, kinds)
	assert.Equal(t, 2, clientCopies)

	require.Len(t, env.store.audit, 3)
	var actions []audit.Action
	for _, e := range env.store.audit {
		actions = append(actions, e.Action)
		assert.Equal(t, "admin-1", e.ActorID)
		assert.Equal(t, "Ann Admin", e.ActorName)
		assert.Equal(t, "contract", e.ResourceType)
		require.NotNil(t, e.IPAddress)
		assert.Equal(t, "192.0.2.10", *e.IPAddress)
	}
	assert.ElementsMatch(t, []audit.Action{audit.ActionCreate, audit.ActionSend, audit.ActionSign}, actions)
}

func TestContractSign_DraftIsConflict(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/contracts", map[string]any{
		"contract_id": "k1", "client_id": "c1", "title": "Draft",
	}).Code)

	w := env.do(t, http.MethodPost, "/contracts/k1/sign", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":{"code":"CONTRACT_NOT_SENT","message":"contract must be sent before it can be signed"}}`, w.Body.String())

	w = env.do(t, http.MethodPost, "/contracts/missing/sign", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLeadConvert_SecondTimeIsConflict(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/leads", map[string]any{
		"lead_id": "l1", "name": "Grace", "email": "grace@example.com",
	}).Code)

	w := env.do(t, http.MethodPost, "/leads/l1/convert", map[string]any{"client_id": "c7"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(t, http.MethodPost, "/leads/l1/convert", nil)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "LEAD_CONVERTED")

	env.drain(t)

	w = env.do(t, http.MethodGet, "/notifications/unread-count?recipient=client&client_id=c7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"unread":1}`, w.Body.String())
}

func TestNotifications_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/notifications?recipient=client", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/notifications?limit=lots", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/notifications", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"notifications":[]}`, w.Body.String())
}

func TestWebhooks_CreateListDelete(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/webhooks", map[string]any{
		"url": "https://hooks.example.com/in", "event_types": []string{"contract.signed"},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[struct {
		Webhook struct {
			ID         string   `json:"id"`
			Secret     string   `json:"secret"`
			EventTypes []string `json:"event_types"`
		} `json:"webhook"`
	}](t, w)
	assert.True(t, strings.HasPrefix(created.Webhook.Secret, "whsec_"))
	assert.Equal(t, []string{"contract.signed"}, created.Webhook.EventTypes)

	w = env.do(t, http.MethodGet, "/webhooks", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), created.Webhook.Secret)

	w = env.do(t, http.MethodPost, "/webhooks", map[string]any{
		"url": "https://hooks.example.com/in", "event_types": []string{"contract.exploded"},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/webhooks/"+created.Webhook.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/webhooks/"+created.Webhook.ID, nil).Code)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)

	require.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/leads", map[string]any{
		"name": "Linus", "email": "linus@example.com",
	}).Code)
	env.drain(t)

	w := env.do(t, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `adminhub_events_emitted_total{type="lead.created"} 1`)
}
