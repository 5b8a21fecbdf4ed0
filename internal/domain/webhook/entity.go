package webhook

import (
	"slices"
	"time"

	"adminhub/internal/domain"
)

type Endpoint struct {
	ID     string
	URL    string
	Secret string
	// EventTypes limits the endpoint to these events; empty means every event.
	EventTypes  []domain.EventType
	Description string
	Active      bool
	CreatedAt   time.Time
}

func (e Endpoint) Accepts(t domain.EventType) bool {
	if !e.Active {
		return false
	}
	return len(e.EventTypes) == 0 || slices.Contains(e.EventTypes, t)
}

type Delivery struct {
	ID         string
	EndpointID string
	EventType  domain.EventType
	EntityID   string
	StatusCode int
	Attempts   int
	Error      string
	DurationMS int64
	CreatedAt  time.Time
}

func (d Delivery) Succeeded() bool {
	return d.Error == "" && d.StatusCode >= 200 && d.StatusCode < 300
}
