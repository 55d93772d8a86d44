package shared

import (
	"context"

	"github.com/google/uuid"
)

type actorContextKey struct{}

// Actor identifies who is acting and on behalf of which supplier business.
type Actor struct {
	UserID     uuid.UUID
	BusinessID uuid.UUID
}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
