package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"adminhub/internal/domain"
	"adminhub/internal/domain/webhook"
)

const (
	activeEndpointsKey = "webhooks:endpoints:active"
	// generationKey is bumped by every evict. A read-through fill only lands if
	// the generation it observed before reading the repository is still current.
	generationKey = "webhooks:endpoints:generation"
)

// EndpointCache wraps a webhook repository with a Redis read-through cache for
// the active endpoint list. A nil client disables caching.
type EndpointCache struct {
	base  webhook.Repository
	redis *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

func NewEndpointCache(base webhook.Repository, client *redis.Client, ttl time.Duration, log *zap.Logger) *EndpointCache {
	if base == nil {
		panic("cache.NewEndpointCache: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &EndpointCache{
		base:  base,
		redis: client,
		ttl:   ttl,
		log:   log.Named("endpoint-cache"),
	}
}

type cachedEndpoint struct {
	ID          string             `json:"id"`
	URL         string             `json:"url"`
	Secret      string             `json:"secret"`
	EventTypes  []domain.EventType `json:"event_types,omitempty"`
	Description string             `json:"description,omitempty"`
	Active      bool               `json:"active"`
	CreatedAt   time.Time          `json:"created_at"`
}

func (c *EndpointCache) ActiveEndpoints(ctx context.Context) ([]webhook.Endpoint, error) {
	if eps, ok := c.load(ctx); ok {
		return eps, nil
	}

	gen, cacheable := c.generation(ctx)

	eps, err := c.base.ActiveEndpoints(ctx)
	if err != nil {
		return nil, err
	}

	if cacheable {
		c.store(ctx, gen, eps)
	}
	return eps, nil
}

func (c *EndpointCache) Create(ctx context.Context, e webhook.Endpoint) (webhook.Endpoint, error) {
	created, err := c.base.Create(ctx, e)
	if err != nil {
		return webhook.Endpoint{}, err
	}
	c.evict(ctx)
	return created, nil
}

func (c *EndpointCache) Delete(ctx context.Context, id string) error {
	if err := c.base.Delete(ctx, id); err != nil {
		return err
	}
	c.evict(ctx)
	return nil
}

func (c *EndpointCache) List(ctx context.Context) ([]webhook.Endpoint, error) {
	return c.base.List(ctx)
}

func (c *EndpointCache) load(ctx context.Context) ([]webhook.Endpoint, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, activeEndpointsKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Debug("cache read failed", zap.Error(err))
		}
		return nil, false
	}

	var cached []cachedEndpoint
	if err := json.Unmarshal(data, &cached); err != nil {
		c.log.Debug("cache decode failed", zap.Error(err))
		return nil, false
	}

	eps := make([]webhook.Endpoint, 0, len(cached))
	for _, ce := range cached {
		eps = append(eps, webhook.Endpoint(ce))
	}
	return eps, true
}

func (c *EndpointCache) generation(ctx context.Context) (int64, bool) {
	if c.redis == nil || c.ttl == 0 {
		return 0, false
	}
	gen, err := c.redis.Get(ctx, generationKey).Int64()
	switch {
	case errors.Is(err, redis.Nil):
		return 0, true
	case err != nil:
		c.log.Debug("cache generation read failed", zap.Error(err))
		return 0, false
	}
	return gen, true
}

// store writes eps unless an evict happened since gen was read.
func (c *EndpointCache) store(ctx context.Context, gen int64, eps []webhook.Endpoint) {
	cached := make([]cachedEndpoint, 0, len(eps))
	for _, e := range eps {
		cached = append(cached, cachedEndpoint(e))
	}
	data, err := json.Marshal(cached)
	if err != nil {
		return
	}

	err = c.redis.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, generationKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, activeEndpointsKey, data, c.ttl)
			return nil
		})
		return err
	}, generationKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		c.log.Debug("cache fill skipped, endpoints changed during read")
	default:
		c.log.Debug("cache write failed", zap.Error(err))
	}
}

var errStaleFill = errors.New("endpoint generation changed")

func (c *EndpointCache) evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	_, err := c.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey)
		pipe.Del(ctx, activeEndpointsKey)
		return nil
	})
	if err != nil {
		c.log.Warn("cache evict failed", zap.Error(err))
	}
}
