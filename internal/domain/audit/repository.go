package audit

import "context"

type Sink interface {
	Insert(ctx context.Context, e Entry) error
}

type Repository interface {
	Sink
	List(ctx context.Context, f Filter) ([]Entry, error)
}
