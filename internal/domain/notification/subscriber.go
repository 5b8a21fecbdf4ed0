package notification

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"adminhub/internal/domain"
)

// Subscriber turns bus events into admin and client notifications.
type Subscriber struct {
	sink  Sink
	log   *zap.Logger
	newID func() string
	now   func() time.Time
}

func NewSubscriber(sink Sink, log *zap.Logger) *Subscriber {
	return &Subscriber{
		sink:  sink,
		log:   log.Named("notifications"),
		newID: uuid.NewString,
		now:   time.Now,
	}
}

// Register subscribes to every event type that has a notification rule.
func (s *Subscriber) Register(r domain.Registrar) {
	for _, t := range domain.AllEventTypes() {
		if _, ok := ruleFor(t); ok {
			r.OnEvent(t, s.Handle)
		}
	}
}

func (s *Subscriber) Handle(ctx context.Context, ev domain.Event) error {
	rule, ok := ruleFor(ev.Type)
	if !ok {
		return nil
	}

	records := s.build(ev, rule)

	var wg sync.WaitGroup
	for _, n := range records {
		wg.Add(1)
		go func(n Notification) {
			defer wg.Done()
			s.insert(ctx, ev.Type, n)
		}(n)
	}
	wg.Wait()

	return nil
}

func (s *Subscriber) insert(ctx context.Context, t domain.EventType, n Notification) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("notification insert panicked", zap.Stringer("type", t), zap.Any("panic", r))
		}
	}()

	if err := s.sink.Insert(ctx, n); err != nil {
		s.log.Error("notification insert failed",
			zap.Stringer("type", t),
			zap.String("recipient_type", string(n.RecipientType)),
			zap.Error(err),
		)
	}
}

func (s *Subscriber) build(ev domain.Event, r rule) []Notification {
	title := humanize(ev.Type)
	resource := ev.Type.Resource()
	createdAt := s.now().UTC()

	adminMsg := fmt.Sprintf("%s by %s", title, actorName(ev.Payload.Actor))
	if subject, ok := ev.Payload.StringValue("title"); ok {
		adminMsg += ": " + subject
	}

	out := make([]Notification, 0, 2)
	out = append(out, Notification{
		ID:            s.newID(),
		RecipientType: RecipientAdmin,
		Type:          r.kind,
		Title:         title,
		Message:       adminMsg,
		Priority:      r.priority,
		ActionURL:     actionURL("/admin", resource, ev.Payload.EntityID),
		Metadata:      metadata(ev),
		CreatedAt:     createdAt,
	})

	if clientID, ok := ev.Payload.ClientID(); ok {
		out = append(out, Notification{
			ID:            s.newID(),
			RecipientType: RecipientClient,
			RecipientID:   &clientID,
			ClientID:      &clientID,
			Type:          r.kind,
			Title:         title,
			Message:       r.clientMessage,
			Priority:      r.priority,
			ActionURL:     actionURL("/portal", resource, ev.Payload.EntityID),
			Metadata:      metadata(ev),
			CreatedAt:     createdAt,
		})
	}

	return out
}

// humanize turns "contract.signed" into "Contract Signed".
func humanize(t domain.EventType) string {
	words := strings.FieldsFunc(t.String(), func(r rune) bool {
		return r == '.' || r == '_'
	})
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func actorName(a domain.Actor) string {
	if a.Name != "" {
		return a.Name
	}
	return domain.SystemActor.Name
}

func actionURL(prefix, resource, entityID string) *string {
	if entityID == "" {
		return nil
	}
	u := fmt.Sprintf("%s/%ss/%s", prefix, resource, entityID)
	return &u
}

func metadata(ev domain.Event) map[string]any {
	m := make(map[string]any, len(ev.Payload.Data)+3)
	maps.Copy(m, ev.Payload.Data)
	m["eventType"] = ev.Type.String()
	m["entityId"] = ev.Payload.EntityID
	m["actorId"] = ev.Payload.Actor.ID
	return m
}
