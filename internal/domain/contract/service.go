package contract

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"adminhub/internal/domain"
)

type Service interface {
	Create(ctx context.Context, c Contract) (Contract, error)
	Send(ctx context.Context, id string) (Contract, error)
	Sign(ctx context.Context, id string) (Contract, error)
}

type service struct {
	uow       domain.UnitOfWork
	contracts Repository
	events    domain.EventBus
}

func NewService(uow domain.UnitOfWork, contracts Repository, events domain.EventBus) Service {
	return &service{
		uow:       uow,
		contracts: contracts,
		events:    events,
	}
}

func (s *service) Create(ctx context.Context, c Contract) (Contract, error) {
	c.Title = strings.TrimSpace(c.Title)
	if c.ClientID == "" || c.Title == "" || c.AmountCents < 0 {
		return Contract{}, &domain.DomainError{
			Code:       domain.ErrorCodeValidation,
			Message:    "client_id and title are required, amount must not be negative",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.Status = StatusDraft

	var res Contract
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.contracts.Create(ctx, c)
		if err != nil {
			return err
		}
		res = created
		return nil
	})
	if err != nil {
		return Contract{}, err
	}

	s.emit(ctx, domain.EventContractCreated, res)
	return res, nil
}

// Send moves a draft to SENT. Sending an already sent contract is a no-op.
func (s *service) Send(ctx context.Context, id string) (Contract, error) {
	var res Contract
	var changed bool

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.contracts.LockByID(ctx, id)
		if err != nil {
			return err
		}

		switch current.Status {
		case StatusSent:
			res = current
			return nil
		case StatusSigned:
			return &domain.DomainError{
				Code:       domain.ErrorCodeContractSigned,
				Message:    "contract is already signed",
				HTTPStatus: http.StatusConflict,
			}
		}

		updated, err := s.contracts.UpdateStatus(ctx, id, StatusSent)
		if err != nil {
			return err
		}
		res = updated
		changed = true
		return nil
	})
	if err != nil {
		return Contract{}, err
	}

	if changed {
		s.emit(ctx, domain.EventContractSent, res)
	}
	return res, nil
}

// Sign moves a sent contract to SIGNED. Signing twice returns the signed
// contract without a second event.
func (s *service) Sign(ctx context.Context, id string) (Contract, error) {
	var res Contract
	var changed bool

	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.contracts.LockByID(ctx, id)
		if err != nil {
			return err
		}

		switch current.Status {
		case StatusSigned:
			res = current
			return nil
		case StatusDraft:
			return &domain.DomainError{
				Code:       domain.ErrorCodeContractNotSent,
				Message:    "contract must be sent before it can be signed",
				HTTPStatus: http.StatusConflict,
			}
		}

		updated, err := s.contracts.UpdateStatus(ctx, id, StatusSigned)
		if err != nil {
			return err
		}
		res = updated
		changed = true
		return nil
	})
	if err != nil {
		return Contract{}, err
	}

	if changed {
		s.emit(ctx, domain.EventContractSigned, res)
	}
	return res, nil
}

func (s *service) emit(ctx context.Context, t domain.EventType, c Contract) {
	if s.events == nil {
		return
	}
	s.events.Emit(ctx, t, domain.NewPayload(ctx, c.ID, map[string]any{
		"clientId":    c.ClientID,
		"title":       c.Title,
		"amountCents": c.AmountCents,
		"status":      string(c.Status),
	}))
}
