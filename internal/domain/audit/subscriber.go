package audit

import (
	"context"
	"maps"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adminhub/internal/domain"
)

// actionFor lists the events that leave an audit trail. Everything else is
// intentionally unaudited.
func actionFor(t domain.EventType) (Action, bool) {
	switch t {
	case domain.EventProposalSent, domain.EventInvoiceSent, domain.EventContractSent:
		return ActionSend, true
	case domain.EventProposalAccepted:
		return ActionApprove, true
	case domain.EventProposalDeclined:
		return ActionReject, true
	case domain.EventInvoiceCreated, domain.EventContractCreated, domain.EventLeadCreated,
		domain.EventClientCreated, domain.EventProjectCreated:
		return ActionCreate, true
	case domain.EventInvoicePaid:
		return ActionPay, true
	case domain.EventContractSigned:
		return ActionSign, true
	case domain.EventLeadConverted:
		return ActionConvert, true
	case domain.EventClientUpdated:
		return ActionUpdate, true
	case domain.EventClientDeleted:
		return ActionDelete, true
	case domain.EventTicketResolved, domain.EventProjectCompleted:
		return ActionResolve, true
	case domain.EventContentPublished:
		return ActionPublish, true
	}
	return "", false
}

type Subscriber struct {
	sink  Sink
	log   *zap.Logger
	newID func() string
	now   func() time.Time
}

func NewSubscriber(sink Sink, log *zap.Logger) *Subscriber {
	return &Subscriber{
		sink:  sink,
		log:   log.Named("audit"),
		newID: uuid.NewString,
		now:   time.Now,
	}
}

func (s *Subscriber) Register(r domain.Registrar) {
	for _, t := range domain.AllEventTypes() {
		if _, ok := actionFor(t); ok {
			r.OnEvent(t, s.Handle)
		}
	}
}

// Handle writes at most one entry. Sink failures are logged and dropped.
func (s *Subscriber) Handle(ctx context.Context, ev domain.Event) error {
	action, ok := actionFor(ev.Type)
	if !ok {
		return nil
	}

	entry := s.build(ev, action)
	if err := s.sink.Insert(ctx, entry); err != nil {
		s.log.Error("audit insert failed",
			zap.Stringer("type", ev.Type),
			zap.String("resource_id", entry.ResourceID),
			zap.Error(err),
		)
	}
	return nil
}

func (s *Subscriber) build(ev domain.Event, action Action) Entry {
	details := make(map[string]any, len(ev.Payload.Data)+1)
	maps.Copy(details, ev.Payload.Data)
	details["event"] = ev.Type.String()

	var ip *string
	if v := ev.Payload.IPAddress; v != "" {
		ip = &v
	}

	return Entry{
		ID:           s.newID(),
		ActorID:      ev.Payload.Actor.ID,
		ActorName:    ev.Payload.Actor.Name,
		Action:       action,
		ResourceType: ev.Type.Resource(),
		ResourceID:   ev.Payload.EntityID,
		Details:      details,
		IPAddress:    ip,
		CreatedAt:    s.now().UTC(),
	}
}
