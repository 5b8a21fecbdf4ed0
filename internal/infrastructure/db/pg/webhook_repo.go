package pg

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"adminhub/internal/domain"
	"adminhub/internal/domain/webhook"
)

type WebhookEndpointRepository struct {
	db *sql.DB
}

func NewWebhookEndpointRepository(db *sql.DB) *WebhookEndpointRepository {
	return &WebhookEndpointRepository{db: db}
}

const endpointColumns = `endpoint_id, url, secret, event_types, description, active, created_at`

func scanEndpoint(row interface{ Scan(...any) error }) (webhook.Endpoint, error) {
	var e webhook.Endpoint
	var types []byte

	if err := row.Scan(&e.ID, &e.URL, &e.Secret, &types, &e.Description, &e.Active, &e.CreatedAt); err != nil {
		return webhook.Endpoint{}, err
	}

	var names []string
	if len(types) > 0 {
		if err := json.Unmarshal(types, &names); err != nil {
			return webhook.Endpoint{}, fmt.Errorf("decode event_types of %s: %w", e.ID, err)
		}
	}
	for _, name := range names {
		if t, ok := domain.ParseEventType(name); ok {
			e.EventTypes = append(e.EventTypes, t)
		}
	}
	// A filter made only of retired names must not widen into "every event".
	if len(names) > 0 && len(e.EventTypes) == 0 {
		e.Active = false
	}
	return e, nil
}

func (r *WebhookEndpointRepository) Create(ctx context.Context, e webhook.Endpoint) (webhook.Endpoint, error) {
	names := make([]string, 0, len(e.EventTypes))
	for _, t := range e.EventTypes {
		names = append(names, t.String())
	}
	types, err := marshalJSON(names)
	if err != nil {
		return webhook.Endpoint{}, err
	}

	return scanEndpoint(queryRow(ctx, r.db,
		`INSERT INTO webhook_endpoints (endpoint_id, url, secret, event_types, description, active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+endpointColumns,
		e.ID, e.URL, e.Secret, types, e.Description, e.Active,
	))
}

func (r *WebhookEndpointRepository) Delete(ctx context.Context, id string) error {
	res, err := exec(ctx, r.db, `DELETE FROM webhook_endpoints WHERE endpoint_id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("webhook endpoint")
	}
	return nil
}

func (r *WebhookEndpointRepository) List(ctx context.Context) ([]webhook.Endpoint, error) {
	return r.list(ctx, `SELECT `+endpointColumns+` FROM webhook_endpoints ORDER BY created_at`)
}

func (r *WebhookEndpointRepository) ActiveEndpoints(ctx context.Context) ([]webhook.Endpoint, error) {
	return r.list(ctx, `SELECT `+endpointColumns+` FROM webhook_endpoints WHERE active ORDER BY created_at`)
}

func (r *WebhookEndpointRepository) list(ctx context.Context, q string) ([]webhook.Endpoint, error) {
	rows, err := query(ctx, r.db, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []webhook.Endpoint
	for rows.Next() {
		e, err := scanEndpoint(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, e)
	}
	return res, rows.Err()
}

type WebhookDeliveryRepository struct {
	db *sql.DB
}

func NewWebhookDeliveryRepository(db *sql.DB) *WebhookDeliveryRepository {
	return &WebhookDeliveryRepository{db: db}
}

func (r *WebhookDeliveryRepository) Record(ctx context.Context, d webhook.Delivery) error {
	_, err := exec(ctx, r.db,
		`INSERT INTO webhook_deliveries
		   (delivery_id, endpoint_id, event_type, entity_id, status_code, attempts, error, duration_ms, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.EndpointID, d.EventType.String(), d.EntityID, d.StatusCode, d.Attempts,
		d.Error, d.DurationMS, d.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("record delivery: %w", err)
	}
	return nil
}

func (r *WebhookDeliveryRepository) ListByEndpoint(ctx context.Context, endpointID string, limit int) ([]webhook.Delivery, error) {
	rows, err := query(ctx, r.db,
		`SELECT delivery_id, event_type, entity_id, status_code, attempts, error, duration_ms, created_at
		   FROM webhook_deliveries
		  WHERE endpoint_id = $1
		  ORDER BY created_at DESC
		  LIMIT $2`,
		endpointID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []webhook.Delivery
	for rows.Next() {
		var d webhook.Delivery
		var eventType string
		if err := rows.Scan(&d.ID, &eventType, &d.EntityID, &d.StatusCode, &d.Attempts,
			&d.Error, &d.DurationMS, &d.CreatedAt); err != nil {
			return nil, err
		}
		// Rows naming a retired event type keep a zero EventType.
		d.EventType, _ = domain.ParseEventType(eventType)
		d.EndpointID = endpointID
		res = append(res, d)
	}
	return res, rows.Err()
}
