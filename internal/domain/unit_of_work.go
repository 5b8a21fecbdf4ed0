package domain

import "context"

// UnitOfWork runs fn inside one database transaction carried by ctx.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
