package domain

import "context"

// SystemActor is recorded on postings made by batch jobs.
const SystemActor = "system"

type actorKey struct{}

// WithActor attaches the caller identity recorded as created_by.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey{}, actor)
}

// ActorFromContext returns the caller identity, or SystemActor when none is set.
func ActorFromContext(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey{}).(string); ok && actor != "" {
		return actor
	}
	return SystemActor
}
