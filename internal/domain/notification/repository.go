package notification

import "context"

// Sink is all the subscriber needs: it never reads back what it wrote.
type Sink interface {
	Insert(ctx context.Context, n Notification) error
}

type Repository interface {
	Sink
	List(ctx context.Context, f Filter) ([]Notification, error)
	MarkRead(ctx context.Context, id string) (Notification, error)
	UnreadCount(ctx context.Context, recipient RecipientType, clientID string) (int, error)
}
