package pg

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"adminhub/internal/domain"
	"adminhub/internal/domain/contract"
)

type ContractRepository struct {
	db *sql.DB
}

func NewContractRepository(db *sql.DB) *ContractRepository {
	return &ContractRepository{db: db}
}

const contractColumns = `client_id, title, amount_cents, status, created_at, sent_at, signed_at`

func scanContract(row interface{ Scan(...any) error }, c *contract.Contract) error {
	var status string
	var createdAt, sentAt, signedAt sql.NullTime

	if err := row.Scan(&c.ClientID, &c.Title, &c.AmountCents, &status, &createdAt, &sentAt, &signedAt); err != nil {
		return err
	}
	c.Status = contract.Status(status)
	c.CreatedAt = timePtr(createdAt)
	c.SentAt = timePtr(sentAt)
	c.SignedAt = timePtr(signedAt)
	return nil
}

func (r *ContractRepository) Create(ctx context.Context, c contract.Contract) (contract.Contract, error) {
	var exists bool
	if err := queryRow(ctx, r.db,
		`SELECT EXISTS(SELECT 1 FROM contracts WHERE contract_id = $1)`,
		c.ID,
	).Scan(&exists); err != nil {
		return contract.Contract{}, err
	}
	if exists {
		return contract.Contract{}, &domain.DomainError{
			Code:       domain.ErrorCodeContractExists,
			Message:    "contract id already exists",
			HTTPStatus: http.StatusConflict,
		}
	}

	var out contract.Contract
	err := scanContract(queryRow(ctx, r.db,
		`INSERT INTO contracts (contract_id, client_id, title, amount_cents, status)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+contractColumns,
		c.ID, c.ClientID, c.Title, c.AmountCents, string(c.Status),
	), &out)
	if err != nil {
		return contract.Contract{}, err
	}
	out.ID = c.ID
	return out, nil
}

func (r *ContractRepository) LockByID(ctx context.Context, id string) (contract.Contract, error) {
	var c contract.Contract
	err := scanContract(queryRow(ctx, r.db,
		`SELECT `+contractColumns+`
		   FROM contracts
		  WHERE contract_id = $1
		  FOR UPDATE`,
		id,
	), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return contract.Contract{}, notFound("contract")
	}
	if err != nil {
		return contract.Contract{}, err
	}
	c.ID = id
	return c, nil
}

// UpdateStatus stamps sent_at or signed_at the first time the matching status is set.
func (r *ContractRepository) UpdateStatus(ctx context.Context, id string, status contract.Status) (contract.Contract, error) {
	var c contract.Contract
	err := scanContract(queryRow(ctx, r.db,
		`UPDATE contracts
		    SET status = $2::text,
		        sent_at = CASE WHEN $2::text = 'SENT' THEN COALESCE(sent_at, NOW()) ELSE sent_at END,
		        signed_at = CASE WHEN $2::text = 'SIGNED' THEN COALESCE(signed_at, NOW()) ELSE signed_at END
		  WHERE contract_id = $1
		  RETURNING `+contractColumns,
		id, string(status),
	), &c)
	if errors.Is(err, sql.ErrNoRows) {
		return contract.Contract{}, notFound("contract")
	}
	if err != nil {
		return contract.Contract{}, err
	}
	c.ID = id
	return c, nil
}
