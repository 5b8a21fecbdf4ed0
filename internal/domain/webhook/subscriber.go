package webhook

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"adminhub/internal/domain"
)

// Deliverer forwards one event to every interested endpoint.
type Deliverer interface {
	Deliver(ctx context.Context, ev domain.Event) error
}

// Subscriber forwards every event to the deliverer. Webhook delivery is
// optional: with a nil deliverer the subscriber registers nothing.
type Subscriber struct {
	deliverer Deliverer
	log       *zap.Logger
}

func NewSubscriber(d Deliverer, log *zap.Logger) *Subscriber {
	return &Subscriber{deliverer: d, log: log.Named("webhooks")}
}

func (s *Subscriber) Enabled() bool { return s.deliverer != nil }

func (s *Subscriber) Register(r domain.Registrar) {
	if !s.Enabled() {
		s.log.Info("webhook delivery disabled")
		return
	}
	r.OnEvent(domain.AnyEvent, s.Handle)
}

// Handle never lets a deliverer failure or panic escape.
func (s *Subscriber) Handle(ctx context.Context, ev domain.Event) (err error) {
	if s.deliverer == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("webhook deliverer panicked", zap.Stringer("type", ev.Type), zap.Any("panic", r))
			err = nil
		}
	}()

	if derr := s.deliverer.Deliver(ctx, ev); derr != nil {
		s.log.Warn("webhook delivery failed",
			zap.Stringer("type", ev.Type),
			zap.String("entity_id", ev.Payload.EntityID),
			zap.Error(fmt.Errorf("deliver: %w", derr)),
		)
	}
	return nil
}
