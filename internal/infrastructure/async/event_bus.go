package async

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"adminhub/internal/domain"
	"adminhub/internal/infrastructure/metrics"
)

const defaultHandlerTimeout = 10 * time.Second

// Dispatcher is the in-process event bus. Every Emit starts one goroutine per
// matching handler and returns without waiting for any of them.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[domain.EventType][]domain.Handler
	closed   bool
	inflight sync.WaitGroup

	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	metrics *metrics.Bus
	log     *zap.Logger
	now     func() time.Time
}

type Option func(*Dispatcher)

func WithHandlerTimeout(d time.Duration) Option {
	return func(b *Dispatcher) {
		if d > 0 {
			b.timeout = d
		}
	}
}

func WithMetrics(m *metrics.Bus) Option {
	return func(b *Dispatcher) {
		if m != nil {
			b.metrics = m
		}
	}
}

func withClock(now func() time.Time) Option {
	return func(b *Dispatcher) { b.now = now }
}

func NewDispatcher(ctx context.Context, log *zap.Logger, opts ...Option) *Dispatcher {
	ctx, cancel := context.WithCancel(ctx)
	d := &Dispatcher{
		handlers: make(map[domain.EventType][]domain.Handler),
		ctx:      ctx,
		cancel:   cancel,
		timeout:  defaultHandlerTimeout,
		log:      log.Named("events"),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = metrics.NewBus(prometheus.NewRegistry())
	}
	return d
}

// OnEvent registers h for t, or for every event when t is domain.AnyEvent.
// A zero event type or a nil handler is a programming error and panics.
func (d *Dispatcher) OnEvent(t domain.EventType, h domain.Handler) {
	if t.IsZero() {
		panic("async: OnEvent with zero event type")
	}
	if h == nil {
		panic("async: OnEvent with nil handler for " + t.String())
	}

	d.mu.Lock()
	d.handlers[t] = append(d.handlers[t], h)
	d.mu.Unlock()
}

// Emit fans the event out to the handlers registered for t followed by the
// wildcard handlers. It never blocks on handler work and never fails.
func (d *Dispatcher) Emit(ctx context.Context, t domain.EventType, p domain.Payload) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("emit panicked", zap.Stringer("type", t), zap.Any("panic", r))
		}
	}()

	if t.IsZero() || t.IsWildcard() {
		d.log.Error("emit with invalid event type", zap.Stringer("type", t))
		return
	}
	if p.Timestamp.IsZero() {
		p.Timestamp = d.now().UTC()
	}
	if p.Actor == (domain.Actor{}) {
		p.Actor = domain.SystemActor
	}

	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.metrics.EventsDropped.Inc()
		d.log.Warn("event emitted after close", zap.Stringer("type", t), zap.String("entity_id", p.EntityID))
		return
	}
	specific := d.handlers[t]
	wildcard := d.handlers[domain.AnyEvent]
	handlers := make([]domain.Handler, 0, len(specific)+len(wildcard))
	handlers = append(handlers, specific...)
	handlers = append(handlers, wildcard...)
	d.inflight.Add(len(handlers))
	d.mu.RUnlock()

	d.metrics.EventsEmitted.WithLabelValues(t.String()).Inc()

	if ctx == nil {
		ctx = context.Background()
	}
	detached := context.WithoutCancel(ctx)

	for i, h := range handlers {
		ev := domain.Event{Type: t, Payload: p.Clone()}
		go d.invoke(detached, i, h, ev)
	}
}

func (d *Dispatcher) invoke(ctx context.Context, idx int, h domain.Handler, ev domain.Event) {
	defer d.inflight.Done()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	stop := context.AfterFunc(d.ctx, cancel)
	defer stop()

	d.metrics.HandlersInflight.Inc()
	start := time.Now()
	defer func() {
		d.metrics.HandlersInflight.Dec()
		d.metrics.HandlerDuration.Observe(time.Since(start).Seconds())
	}()

	defer func() {
		if r := recover(); r != nil {
			d.metrics.HandlerFailures.WithLabelValues(ev.Type.String(), "panic").Inc()
			d.log.Error("event handler panicked",
				zap.Stringer("type", ev.Type),
				zap.Int("handler", idx),
				zap.Any("panic", r),
			)
		}
	}()

	if err := h(ctx, ev); err != nil {
		d.metrics.HandlerFailures.WithLabelValues(ev.Type.String(), "error").Inc()
		d.log.Error("event handler failed",
			zap.Stringer("type", ev.Type),
			zap.Int("handler", idx),
			zap.Error(err),
		)
	}
}

// Close stops accepting events and waits for in-flight handlers until ctx is
// done, at which point the remaining handlers are cancelled.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		d.cancel()
		return nil
	case <-ctx.Done():
		d.cancel()
		return ctx.Err()
	}
}
