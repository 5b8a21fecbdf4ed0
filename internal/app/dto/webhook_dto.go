package dto

import "time"

type WebhookEndpoint struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	EventTypes  []string  `json:"event_types"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"createdAt"`
	// Secret is only returned once, on creation.
	Secret string `json:"secret,omitempty"`
}

type WebhookDelivery struct {
	ID         string    `json:"id"`
	EventType  string    `json:"event_type"`
	EntityID   string    `json:"entity_id"`
	StatusCode int       `json:"status_code"`
	Attempts   int       `json:"attempts"`
	Error      string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	Succeeded  bool      `json:"succeeded"`
	CreatedAt  time.Time `json:"createdAt"`
}
