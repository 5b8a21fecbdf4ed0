package contract

import "context"

type Repository interface {
	Create(ctx context.Context, c Contract) (Contract, error)
	LockByID(ctx context.Context, id string) (Contract, error)
	UpdateStatus(ctx context.Context, id string, status Status) (Contract, error)
}
