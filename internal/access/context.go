package access

import (
	"context"

	"github.com/belpol-ops/belpol-ops/internal/users"
)

// Actor bundles the authenticated user with their resolved capabilities.
type Actor struct {
	User users.User
	Caps Capabilities
}

type actorContextKey struct{}

// ContextWithActor stores the actor in context.
func ContextWithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorContextKey{}, actor)
}

// ActorFromContext extracts the actor from context. The second return value
// is false for anonymous requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
