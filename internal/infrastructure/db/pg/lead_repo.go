package pg

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"adminhub/internal/domain"
	"adminhub/internal/domain/lead"
)

type LeadRepository struct {
	db *sql.DB
}

func NewLeadRepository(db *sql.DB) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `name, email, company, source, status, client_id, created_at, converted_at`

func scanLead(row interface{ Scan(...any) error }, l *lead.Lead) error {
	var status string
	var clientID sql.NullString
	var createdAt, convertedAt sql.NullTime

	if err := row.Scan(&l.Name, &l.Email, &l.Company, &l.Source, &status, &clientID, &createdAt, &convertedAt); err != nil {
		return err
	}
	l.Status = lead.Status(status)
	l.ClientID = stringPtr(clientID)
	l.CreatedAt = timePtr(createdAt)
	l.ConvertedAt = timePtr(convertedAt)
	return nil
}

func (r *LeadRepository) Create(ctx context.Context, l lead.Lead) (lead.Lead, error) {
	var exists bool
	if err := queryRow(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM leads WHERE lead_id = $1)`,
		l.ID,
	).Scan(&exists); err != nil {
		return lead.Lead{}, err
	}
	if exists {
		return lead.Lead{}, &domain.DomainError{
			Code:       domain.ErrorCodeLeadExists,
			Message:    "lead id already exists",
			HTTPStatus: http.StatusConflict,
		}
	}

	var out lead.Lead
	err := scanLead(queryRow(ctx, r.db,
		`INSERT INTO leads (lead_id, name, email, company, source, status)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+leadColumns,
		l.ID, l.Name, l.Email, l.Company, l.Source, string(l.Status),
	), &out)
	if err != nil {
		return lead.Lead{}, err
	}
	out.ID = l.ID
	return out, nil
}

func (r *LeadRepository) LockByID(ctx context.Context, id string) (lead.Lead, error) {
	var l lead.Lead
	err := scanLead(queryRow(ctx, r.db,
		`SELECT `+leadColumns+`
		   FROM leads
		  WHERE lead_id = $1
		  FOR UPDATE`,
		id,
	), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return lead.Lead{}, notFound("lead")
	}
	if err != nil {
		return lead.Lead{}, err
	}
	l.ID = id
	return l, nil
}

func (r *LeadRepository) MarkConverted(ctx context.Context, id, clientID string) (lead.Lead, error) {
	var l lead.Lead
	err := scanLead(queryRow(ctx, r.db,
		`UPDATE leads
		    SET status = 'CONVERTED',
		        client_id = $2,
		        converted_at = NOW()
		  WHERE lead_id = $1
		  RETURNING `+leadColumns,
		id, clientID,
	), &l)
	if errors.Is(err, sql.ErrNoRows) {
		return lead.Lead{}, notFound("lead")
	}
	if err != nil {
		return lead.Lead{}, err
	}
	l.ID = id
	return l, nil
}
