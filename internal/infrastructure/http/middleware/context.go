package middleware

import (
	"context"

	"github.com/amirhosseinghanipour/accountd/internal/domain"
)

type contextKey string

const actorContextKey contextKey = "actor"

// WithActor injects the acting account into the context.
func WithActor(ctx context.Context, actor domain.Actor) context.Context {
	return context.WithValue(ctx, actorContextKey, actor)
}

// ActorFromContext returns the actor from the context, or domain.Anonymous.
func ActorFromContext(ctx context.Context) domain.Actor {
	actor, ok := ctx.Value(actorContextKey).(domain.Actor)
	if !ok {
		return domain.Anonymous
	}
	return actor
}
