package domain

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
)

// EventType is a member of the closed event vocabulary. Its only values are the
// package-level Event* variables, so an unknown event name cannot be expressed.
type EventType struct {
	name string
}

var (
	EventProposalSent     = EventType{"proposal.sent"}
	EventProposalViewed   = EventType{"proposal.viewed"}
	EventProposalAccepted = EventType{"proposal.accepted"}
	EventProposalDeclined = EventType{"proposal.declined"}

	EventInvoiceCreated = EventType{"invoice.created"}
	EventInvoiceSent    = EventType{"invoice.sent"}
	EventInvoicePaid    = EventType{"invoice.paid"}
	EventInvoiceOverdue = EventType{"invoice.overdue"}

	EventContractCreated = EventType{"contract.created"}
	EventContractSent    = EventType{"contract.sent"}
	EventContractSigned  = EventType{"contract.signed"}

	EventTicketCreated  = EventType{"ticket.created"}
	EventTicketReplied  = EventType{"ticket.replied"}
	EventTicketResolved = EventType{"ticket.resolved"}

	EventLeadCreated   = EventType{"lead.created"}
	EventLeadConverted = EventType{"lead.converted"}

	EventClientCreated = EventType{"client.created"}
	EventClientUpdated = EventType{"client.updated"}
	EventClientDeleted = EventType{"client.deleted"}

	EventProjectCreated   = EventType{"project.created"}
	EventProjectCompleted = EventType{"project.completed"}

	EventContentPublished = EventType{"content.published"}

	EventMessageReceived = EventType{"message.received"}

	EventBookingCreated = EventType{"booking.created"}
)

// AnyEvent is the wildcard. It is only meaningful for registration.
var AnyEvent = EventType{"*"}

var allEventTypes = []EventType{
	EventProposalSent, EventProposalViewed, EventProposalAccepted, EventProposalDeclined,
	EventInvoiceCreated, EventInvoiceSent, EventInvoicePaid, EventInvoiceOverdue,
	EventContractCreated, EventContractSent, EventContractSigned,
	EventTicketCreated, EventTicketReplied, EventTicketResolved,
	EventLeadCreated, EventLeadConverted,
	EventClientCreated, EventClientUpdated, EventClientDeleted,
	EventProjectCreated, EventProjectCompleted,
	EventContentPublished,
	EventMessageReceived,
	EventBookingCreated,
}

var eventTypesByName = func() map[string]EventType {
	m := make(map[string]EventType, len(allEventTypes))
	for _, t := range allEventTypes {
		m[t.name] = t
	}
	return m
}()

// AllEventTypes returns the vocabulary in declaration order.
func AllEventTypes() []EventType {
	return append([]EventType(nil), allEventTypes...)
}

// ParseEventType resolves a dotted name. The wildcard is not accepted.
func ParseEventType(name string) (EventType, bool) {
	t, ok := eventTypesByName[name]
	return t, ok
}

func (t EventType) String() string { return t.name }

func (t EventType) IsZero() bool { return t.name == "" }

func (t EventType) IsWildcard() bool { return t == AnyEvent }

// Resource is the segment before the first dot: "contract" for contract.signed.
func (t EventType) Resource() string {
	name, _, _ := strings.Cut(t.name, ".")
	return name
}

func (t EventType) MarshalText() ([]byte, error) {
	return []byte(t.name), nil
}

func (t *EventType) UnmarshalText(b []byte) error {
	parsed, ok := ParseEventType(string(b))
	if !ok {
		return fmt.Errorf("unknown event type %q", string(b))
	}
	*t = parsed
	return nil
}

type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SystemActor is used for events nobody in particular caused.
var SystemActor = Actor{ID: "system", Name: "System"}

// Payload is immutable once emitted; handlers receive their own copy of Data.
type Payload struct {
	EntityID  string
	Actor     Actor
	Timestamp time.Time
	Data      map[string]any
	// IPAddress of the caller. Only the audit trail records it; it is kept out
	// of Data so it never reaches notifications or webhook bodies.
	IPAddress string
}

// Clone deep-copies Data. Nested map[string]any and []any values are copied
// recursively; any other reference type is shared and must not be mutated.
func (p Payload) Clone() Payload {
	if p.Data != nil {
		p.Data = cloneMap(p.Data)
	}
	return p
}

func cloneMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch v := v.(type) {
	case map[string]any:
		return cloneMap(v)
	case []any:
		out := make([]any, len(v))
		for i, e := range v {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(v)
	}
	return v
}

// ClientID returns data.clientId when it is a non-empty string.
func (p Payload) ClientID() (string, bool) {
	return p.StringValue("clientId")
}

func (p Payload) StringValue(key string) (string, bool) {
	v, ok := p.Data[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

type Event struct {
	Type    EventType
	Payload Payload
}

// Timestamp renders the emit instant as RFC 3339 with millisecond precision.
func (e Event) Timestamp() string {
	return e.Payload.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

type Handler func(ctx context.Context, ev Event) error

// EventBus is the write path used by services once their transaction has committed.
type EventBus interface {
	Emit(ctx context.Context, t EventType, p Payload)
}

// Registrar is the startup-time side of the bus.
type Registrar interface {
	OnEvent(t EventType, h Handler)
}
