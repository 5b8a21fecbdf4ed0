package lead

import "context"

type Repository interface {
	Create(ctx context.Context, l Lead) (Lead, error)
	LockByID(ctx context.Context, id string) (Lead, error)
	MarkConverted(ctx context.Context, id, clientID string) (Lead, error)
}
