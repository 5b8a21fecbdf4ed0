package dto

import "time"

type Notification struct {
	ID            string         `json:"id"`
	RecipientType string         `json:"recipient_type"`
	RecipientID   *string        `json:"recipient_id,omitempty"`
	ClientID      *string        `json:"client_id,omitempty"`
	Type          string         `json:"type"`
	Title         string         `json:"title"`
	Message       string         `json:"message"`
	IsRead        bool           `json:"is_read"`
	Priority      string         `json:"priority"`
	ActionURL     *string        `json:"action_url,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	ReadAt        *time.Time     `json:"readAt,omitempty"`
}

type AuditEntry struct {
	ID           string         `json:"id"`
	ActorID      string         `json:"actor_id"`
	ActorName    string         `json:"actor_name"`
	Action       string         `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   string         `json:"resource_id"`
	Details      map[string]any `json:"details,omitempty"`
	IPAddress    *string        `json:"ip_address,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
}
