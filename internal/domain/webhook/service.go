package webhook

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"adminhub/internal/domain"
)

type CreateInput struct {
	URL         string
	Secret      string
	EventTypes  []string
	Description string
}

type Service interface {
	Create(ctx context.Context, in CreateInput) (Endpoint, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Endpoint, error)
	Deliveries(ctx context.Context, endpointID string, limit int) ([]Delivery, error)
}

type service struct {
	endpoints  Repository
	deliveries DeliveryRepository
}

func NewService(endpoints Repository, deliveries DeliveryRepository) Service {
	return &service{endpoints: endpoints, deliveries: deliveries}
}

func (s *service) Create(ctx context.Context, in CreateInput) (Endpoint, error) {
	if err := validateURL(in.URL); err != nil {
		return Endpoint{}, err
	}

	types := make([]domain.EventType, 0, len(in.EventTypes))
	for _, name := range in.EventTypes {
		t, ok := domain.ParseEventType(strings.TrimSpace(name))
		if !ok {
			return Endpoint{}, validationError(fmt.Sprintf("unknown event type %q", name))
		}
		types = append(types, t)
	}

	secret := in.Secret
	if secret == "" {
		var err error
		if secret, err = newSecret(); err != nil {
			return Endpoint{}, fmt.Errorf("generate secret: %w", err)
		}
	}

	return s.endpoints.Create(ctx, Endpoint{
		ID:          uuid.NewString(),
		URL:         in.URL,
		Secret:      secret,
		EventTypes:  types,
		Description: in.Description,
		Active:      true,
	})
}

func (s *service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return validationError("endpoint id is required")
	}
	return s.endpoints.Delete(ctx, id)
}

func (s *service) List(ctx context.Context) ([]Endpoint, error) {
	return s.endpoints.List(ctx)
}

func (s *service) Deliveries(ctx context.Context, endpointID string, limit int) ([]Delivery, error) {
	if endpointID == "" {
		return nil, validationError("endpoint id is required")
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.deliveries.ListByEndpoint(ctx, endpointID, limit)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return validationError("url must be an absolute http or https URL")
	}
	return nil
}

func newSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "whsec_" + hex.EncodeToString(b), nil
}

func validationError(msg string) error {
	return &domain.DomainError{
		Code:       domain.ErrorCodeValidation,
		Message:    msg,
		HTTPStatus: http.StatusBadRequest,
	}
}
