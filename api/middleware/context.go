package middleware

import (
	"context"

	"github.com/happycart-io/happycart-backend/internal/identity"
)

type contextKey string

const ctxActor contextKey = "actor"

// WithActor injects the resolved caller identity into the context.
func WithActor(ctx context.Context, actor identity.Actor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxActor, actor)
}

// ActorFromContext returns the caller identity seeded by the auth middleware.
// The zero Actor means the request is anonymous.
func ActorFromContext(ctx context.Context) identity.Actor {
	if ctx == nil {
		return identity.Actor{}
	}
	if actor, ok := ctx.Value(ctxActor).(identity.Actor); ok {
		return actor
	}
	return identity.Actor{}
}

func UserIDFromContext(ctx context.Context) string {
	actor := ActorFromContext(ctx)
	if !actor.IsUser() {
		return ""
	}
	return actor.UserID().String()
}

func RoleFromContext(ctx context.Context) string {
	return string(ActorFromContext(ctx).Role())
}
