package shared

import "context"

// DefaultActor is recorded in history rows when no caller identity is given.
const DefaultActor = "System"

type actorContextKey struct{}

// ContextWithActor stores the caller identity in context.
func ContextWithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the caller identity, defaulting to DefaultActor.
func ActorFromContext(ctx context.Context) string {
	actor, _ := ctx.Value(actorContextKey{}).(string)
	if actor == "" {
		return DefaultActor
	}
	return actor
}
