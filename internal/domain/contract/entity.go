package contract

import "time"

type Status string

const (
	StatusDraft  Status = "DRAFT"
	StatusSent   Status = "SENT"
	StatusSigned Status = "SIGNED"
)

type Contract struct {
	ID          string
	ClientID    string
	Title       string
	AmountCents int64
	Status      Status
	CreatedAt   *time.Time
	SentAt      *time.Time
	SignedAt    *time.Time
}
