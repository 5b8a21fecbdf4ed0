package domain

import (
	"context"
	"maps"
)

type actorKey struct{}

type requestActor struct {
	actor Actor
	ip    string
}

// WithActor attaches the caller to ctx. ip may be empty.
func WithActor(ctx context.Context, a Actor, ip string) context.Context {
	return context.WithValue(ctx, actorKey{}, requestActor{actor: a, ip: ip})
}

// ActorFrom returns the caller stored by WithActor, or SystemActor.
func ActorFrom(ctx context.Context) Actor {
	if ra, ok := ctx.Value(actorKey{}).(requestActor); ok && ra.actor.ID != "" {
		return ra.actor
	}
	return SystemActor
}

// NewPayload builds a payload for entityID on behalf of the caller in ctx.
// The caller's IP goes to Payload.IPAddress, never into Data.
func NewPayload(ctx context.Context, entityID string, data map[string]any) Payload {
	out := make(map[string]any, len(data))
	maps.Copy(out, data)

	p := Payload{
		EntityID: entityID,
		Actor:    ActorFrom(ctx),
		Data:     out,
	}
	if ra, ok := ctx.Value(actorKey{}).(requestActor); ok {
		p.IPAddress = ra.ip
	}
	return p
}
