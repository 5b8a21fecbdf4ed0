package webhook_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"adminhub/internal/domain"
	"adminhub/internal/domain/webhook"
)

type endpointRepoFake struct {
	created []webhook.Endpoint
	deleted []string
}

func (r *endpointRepoFake) ActiveEndpoints(ctx context.Context) ([]webhook.Endpoint, error) {
	return r.created, nil
}

func (r *endpointRepoFake) Create(ctx context.Context, e webhook.Endpoint) (webhook.Endpoint, error) {
	r.created = append(r.created, e)
	return e, nil
}

func (r *endpointRepoFake) Delete(ctx context.Context, id string) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *endpointRepoFake) List(ctx context.Context) ([]webhook.Endpoint, error) {
	return r.created, nil
}

type deliveryRepoFake struct {
	lastLimit int
}

func (r *deliveryRepoFake) Record(ctx context.Context, d webhook.Delivery) error { return nil }

func (r *deliveryRepoFake) ListByEndpoint(ctx context.Context, endpointID string, limit int) ([]webhook.Delivery, error) {
	r.lastLimit = limit
	return nil, nil
}

func TestCreate_ParsesEventTypesAndGeneratesSecret(t *testing.T) {
	repo := &endpointRepoFake{}
	svc := webhook.NewService(repo, &deliveryRepoFake{})

	ep, err := svc.Create(context.Background(), webhook.CreateInput{
		URL:        "https://hooks.example.com/in",
		EventTypes: []string{"invoice.paid", " contract.signed "},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ep.ID == "" || !ep.Active {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
	if !strings.HasPrefix(ep.Secret, "whsec_") {
		t.Fatalf("expected generated secret, got %q", ep.Secret)
	}
	if len(ep.EventTypes) != 2 || ep.EventTypes[0] != domain.EventInvoicePaid || ep.EventTypes[1] != domain.EventContractSigned {
		t.Fatalf("unexpected event types: %v", ep.EventTypes)
	}
	if len(repo.created) != 1 {
		t.Fatalf("endpoint not stored")
	}
}

func TestCreate_KeepsProvidedSecret(t *testing.T) {
	svc := webhook.NewService(&endpointRepoFake{}, &deliveryRepoFake{})

	ep, err := svc.Create(context.Background(), webhook.CreateInput{URL: "http://localhost:9000/hook", Secret: "s3cret"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if ep.Secret != "s3cret" || len(ep.EventTypes) != 0 {
		t.Fatalf("unexpected endpoint: %+v", ep)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := webhook.NewService(&endpointRepoFake{}, &deliveryRepoFake{})

	cases := []webhook.CreateInput{
		{URL: "ftp://example.com/x"},
		{URL: "/relative"},
		{URL: "https://example.com", EventTypes: []string{"invoice.payed"}},
		{URL: "https://example.com", EventTypes: []string{"*"}},
	}
	for _, in := range cases {
		_, err := svc.Create(context.Background(), in)
		var de *domain.DomainError
		if err == nil || !errors.As(err, &de) || de.Code != domain.ErrorCodeValidation {
			t.Fatalf("input %+v: expected VALIDATION_ERROR, got %v", in, err)
		}
	}
}

func TestDeliveries_DefaultLimit(t *testing.T) {
	deliveries := &deliveryRepoFake{}
	svc := webhook.NewService(&endpointRepoFake{}, deliveries)

	if _, err := svc.Deliveries(context.Background(), "ep1", 0); err != nil {
		t.Fatalf("Deliveries: %v", err)
	}
	if deliveries.lastLimit != 50 {
		t.Fatalf("expected limit 50, got %d", deliveries.lastLimit)
	}
	if _, err := svc.Deliveries(context.Background(), "", 10); err == nil {
		t.Fatalf("expected error for empty endpoint id")
	}
}
