package delivery

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"adminhub/internal/domain"
	"adminhub/internal/domain/webhook"
	"adminhub/internal/infrastructure/async"
	"adminhub/internal/infrastructure/metrics"
)

const (
	HeaderEvent     = "X-Webhook-Event"
	HeaderDelivery  = "X-Webhook-Delivery"
	HeaderTimestamp = "X-Webhook-Timestamp"
	HeaderSignature = "X-Webhook-Signature"

	userAgent       = "adminhub-webhooks/1"
	maxResponseBody = 64 << 10
)

type Config struct {
	// Timeout bounds a single HTTP call.
	Timeout time.Duration
	Workers int
	// RatePerSec and Burst cap outbound requests across all endpoints.
	RatePerSec float64
	Burst      int
	// MaxAttempts of 1 disables retries.
	MaxAttempts int
	RetryBase   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Timeout:     5 * time.Second,
		Workers:     8,
		RatePerSec:  20,
		Burst:       20,
		MaxAttempts: 1,
		RetryBase:   500 * time.Millisecond,
	}
}

// HTTPDeliverer posts signed event envelopes to registered endpoints. Each
// endpoint is delivered on the worker pool independently of the others.
type HTTPDeliverer struct {
	registry   webhook.Registry
	deliveries webhook.DeliveryLog
	client     *http.Client
	pool       *async.WorkerPool
	limiter    *rate.Limiter
	cfg        Config
	metrics    *metrics.Webhooks
	log        *zap.Logger
	now        func() time.Time
}

// NewHTTPDeliverer wires the deliverer. deliveries and m may be nil.
func NewHTTPDeliverer(
	ctx context.Context,
	registry webhook.Registry,
	deliveries webhook.DeliveryLog,
	cfg Config,
	m *metrics.Webhooks,
	log *zap.Logger,
) *HTTPDeliverer {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.Workers <= 0 {
		cfg.Workers = def.Workers
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = def.RatePerSec
	}
	if cfg.Burst <= 0 {
		cfg.Burst = max(1, int(cfg.RatePerSec))
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = def.RetryBase
	}
	if m == nil {
		m = metrics.NewWebhooks(prometheus.NewRegistry())
	}

	log = log.Named("webhook-deliverer")
	budget := time.Duration(cfg.MaxAttempts) * (cfg.Timeout + 4*cfg.RetryBase)

	return &HTTPDeliverer{
		registry:   registry,
		deliveries: deliveries,
		client:     &http.Client{Timeout: cfg.Timeout},
		pool:       async.NewWorkerPool(ctx, cfg.Workers, budget, log),
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.Burst),
		cfg:        cfg,
		metrics:    m,
		log:        log,
		now:        time.Now,
	}
}

type envelope struct {
	ID        string           `json:"id"`
	Type      domain.EventType `json:"type"`
	EntityID  string           `json:"entityId"`
	Actor     domain.Actor     `json:"actor"`
	Timestamp string           `json:"timestamp"`
	Data      map[string]any   `json:"data,omitempty"`
}

// Deliver queues one delivery per interested endpoint and returns once they
// are queued; it does not wait for the HTTP calls.
func (d *HTTPDeliverer) Deliver(ctx context.Context, ev domain.Event) error {
	endpoints, err := d.registry.ActiveEndpoints(ctx)
	if err != nil {
		return fmt.Errorf("resolve endpoints: %w", err)
	}

	var targets []webhook.Endpoint
	for _, ep := range endpoints {
		if ep.Accepts(ev.Type) {
			targets = append(targets, ep)
		}
	}
	if len(targets) == 0 {
		return nil
	}

	body, err := json.Marshal(envelope{
		ID:        uuid.NewString(),
		Type:      ev.Type,
		EntityID:  ev.Payload.EntityID,
		Actor:     ev.Payload.Actor,
		Timestamp: ev.Timestamp(),
		Data:      ev.Payload.Data,
	})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}

	var dropped int
	for _, ep := range targets {
		if !d.pool.Submit(ctx, func(ctx context.Context) { d.deliverOne(ctx, ep, ev, body) }) {
			dropped++
			d.metrics.Deliveries.WithLabelValues("dropped").Inc()
		}
	}
	if dropped > 0 {
		return fmt.Errorf("%d of %d deliveries not queued", dropped, len(targets))
	}
	return nil
}

func (d *HTTPDeliverer) deliverOne(ctx context.Context, ep webhook.Endpoint, ev domain.Event, body []byte) {
	start := d.now()
	deliveryID := uuid.NewString()

	var attempts, status int
	backoff := retry.WithMaxRetries(uint64(d.cfg.MaxAttempts-1), retry.NewExponential(d.cfg.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++
		if attempts > 1 {
			d.metrics.Retries.Inc()
		}
		code, err := d.post(ctx, ep, ev.Type, deliveryID, body)
		status = code
		if err != nil && retryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})

	elapsed := d.now().Sub(start)
	d.metrics.DeliveryDuration.Observe(elapsed.Seconds())

	rec := webhook.Delivery{
		ID:         deliveryID,
		EndpointID: ep.ID,
		EventType:  ev.Type,
		EntityID:   ev.Payload.EntityID,
		StatusCode: status,
		Attempts:   attempts,
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  start.UTC(),
	}
	if err != nil {
		rec.Error = err.Error()
		d.metrics.Deliveries.WithLabelValues("failed").Inc()
		d.log.Warn("webhook delivery failed",
			zap.String("endpoint_id", ep.ID),
			zap.Stringer("type", ev.Type),
			zap.Int("attempts", attempts),
			zap.Error(err),
		)
	} else {
		d.metrics.Deliveries.WithLabelValues("delivered").Inc()
	}

	d.record(ctx, rec)
}

func (d *HTTPDeliverer) record(ctx context.Context, rec webhook.Delivery) {
	if d.deliveries == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := d.deliveries.Record(ctx, rec); err != nil {
		d.log.Error("record webhook delivery", zap.String("delivery_id", rec.ID), zap.Error(err))
	}
}

func (d *HTTPDeliverer) post(ctx context.Context, ep webhook.Endpoint, t domain.EventType, deliveryID string, body []byte) (int, error) {
	if err := d.limiter.Wait(ctx); err != nil {
		return 0, fmt.Errorf("rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ep.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	ts := strconv.FormatInt(d.now().Unix(), 10)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set(HeaderEvent, t.String())
	req.Header.Set(HeaderDelivery, deliveryID)
	req.Header.Set(HeaderTimestamp, ts)
	req.Header.Set(HeaderSignature, "sha256="+Sign(ep.Secret, ts, body))

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, &transportError{err: err}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBody))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp.StatusCode, &StatusError{Code: resp.StatusCode}
	}
	return resp.StatusCode, nil
}

// Close stops accepting deliveries and waits for queued ones.
func (d *HTTPDeliverer) Close() {
	d.pool.Shutdown()
}

// Sign returns the hex HMAC-SHA256 of "<timestamp>.<body>".
func Sign(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write([]byte("."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("endpoint responded %d", e.Code)
}

type transportError struct {
	err error
}

func (e *transportError) Error() string { return e.err.Error() }
func (e *transportError) Unwrap() error { return e.err }

// retryable: network failures, 429 and 5xx.
func retryable(err error) bool {
	var te *transportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	return false
}
