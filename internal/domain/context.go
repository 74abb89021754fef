package domain

import "context"

type actorKey struct{}

// ContextWithActor returns a copy of ctx carrying the authenticated actor.
func ContextWithActor(ctx context.Context, a *Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by ContextWithActor.
func ActorFromContext(ctx context.Context) (*Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(*Actor)
	return a, ok && a != nil
}

// ActorID returns the actor id in ctx, or "system" when none is set.
func ActorID(ctx context.Context) string {
	if a, ok := ActorFromContext(ctx); ok {
		return a.ID
	}
	return "system"
}
