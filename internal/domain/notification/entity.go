package notification

import "time"

type RecipientType string

const (
	RecipientAdmin  RecipientType = "admin"
	RecipientClient RecipientType = "client"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// Notification is an in-app notification row. A nil RecipientID on an admin
// notification means every admin sees it; client notifications always carry ClientID.
type Notification struct {
	ID            string
	RecipientType RecipientType
	RecipientID   *string
	ClientID      *string
	Type          string
	Title         string
	Message       string
	IsRead        bool
	Priority      Priority
	ActionURL     *string
	Metadata      map[string]any
	CreatedAt     time.Time
	ReadAt        *time.Time
}

type Filter struct {
	RecipientType RecipientType
	ClientID      string
	UnreadOnly    bool
	Limit         int
}
