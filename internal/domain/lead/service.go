package lead

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"adminhub/internal/domain"
)

type Service interface {
	Create(ctx context.Context, l Lead) (Lead, error)
	Convert(ctx context.Context, id, clientID string) (Lead, error)
}

type service struct {
	uow    domain.UnitOfWork
	leads  Repository
	events domain.EventBus
}

func NewService(uow domain.UnitOfWork, leads Repository, events domain.EventBus) Service {
	return &service{
		uow:    uow,
		leads:  leads,
		events: events,
	}
}

func (s *service) Create(ctx context.Context, l Lead) (Lead, error) {
	l.Name = strings.TrimSpace(l.Name)
	l.Email = strings.TrimSpace(l.Email)
	if l.Name == "" || !strings.Contains(l.Email, "@") {
		return Lead{}, &domain.DomainError{
			Code:       domain.ErrorCodeValidation,
			Message:    "name and a valid email are required",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	l.Status = StatusNew

	var res Lead
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.leads.Create(ctx, l)
		if err != nil {
			return err
		}
		res = created
		return nil
	})
	if err != nil {
		return Lead{}, err
	}

	if s.events != nil {
		s.events.Emit(ctx, domain.EventLeadCreated, domain.NewPayload(ctx, res.ID, map[string]any{
			"name":    res.Name,
			"email":   res.Email,
			"company": res.Company,
			"source":  res.Source,
			"title":   res.Name,
		}))
	}

	return res, nil
}

// Convert turns a lead into a client. An empty clientID allocates a new one.
func (s *service) Convert(ctx context.Context, id, clientID string) (Lead, error) {
	if clientID == "" {
		clientID = uuid.NewString()
	}

	var res Lead
	err := s.uow.WithinTx(ctx, func(ctx context.Context) error {
		current, err := s.leads.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Status == StatusConverted {
			return &domain.DomainError{
				Code:       domain.ErrorCodeLeadConverted,
				Message:    "lead is already converted",
				HTTPStatus: http.StatusConflict,
			}
		}

		updated, err := s.leads.MarkConverted(ctx, id, clientID)
		if err != nil {
			return err
		}
		res = updated
		return nil
	})
	if err != nil {
		return Lead{}, err
	}

	if s.events != nil {
		s.events.Emit(ctx, domain.EventLeadConverted, domain.NewPayload(ctx, res.ID, map[string]any{
			"clientId": clientID,
			"name":     res.Name,
			"email":    res.Email,
			"title":    res.Name,
		}))
	}

	return res, nil
}
