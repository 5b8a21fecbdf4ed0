package notification

import (
	"context"
	"net/http"

	"adminhub/internal/domain"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type Service interface {
	List(ctx context.Context, f Filter) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
	UnreadCount(ctx context.Context, recipient RecipientType, clientID string) (int, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) List(ctx context.Context, f Filter) ([]Notification, error) {
	if err := validateRecipient(f.RecipientType, f.ClientID); err != nil {
		return nil, err
	}
	switch {
	case f.Limit <= 0:
		f.Limit = defaultListLimit
	case f.Limit > maxListLimit:
		f.Limit = maxListLimit
	}
	return s.repo.List(ctx, f)
}

func (s *service) MarkRead(ctx context.Context, id string) (Notification, error) {
	if id == "" {
		return Notification{}, &domain.DomainError{
			Code:       domain.ErrorCodeValidation,
			Message:    "notification id is required",
			HTTPStatus: http.StatusBadRequest,
		}
	}
	return s.repo.MarkRead(ctx, id)
}

func (s *service) UnreadCount(ctx context.Context, recipient RecipientType, clientID string) (int, error) {
	if err := validateRecipient(recipient, clientID); err != nil {
		return 0, err
	}
	return s.repo.UnreadCount(ctx, recipient, clientID)
}

func validateRecipient(recipient RecipientType, clientID string) error {
	switch recipient {
	case RecipientAdmin:
		return nil
	case RecipientClient:
		if clientID == "" {
			return &domain.DomainError{
				Code:       domain.ErrorCodeValidation,
				Message:    "client_id is required for client notifications",
				HTTPStatus: http.StatusBadRequest,
			}
		}
		return nil
	default:
		return &domain.DomainError{
			Code:       domain.ErrorCodeValidation,
			Message:    "recipient must be one of: admin, client",
			HTTPStatus: http.StatusBadRequest,
		}
	}
}
