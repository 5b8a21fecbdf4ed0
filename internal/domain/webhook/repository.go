package webhook

import "context"

// Registry resolves where events go.
type Registry interface {
	ActiveEndpoints(ctx context.Context) ([]Endpoint, error)
}

type Repository interface {
	Registry
	Create(ctx context.Context, e Endpoint) (Endpoint, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Endpoint, error)
}

type DeliveryLog interface {
	Record(ctx context.Context, d Delivery) error
}

type DeliveryRepository interface {
	DeliveryLog
	ListByEndpoint(ctx context.Context, endpointID string, limit int) ([]Delivery, error)
}
