package api

import (
	"context"

	"github.com/rpupo63/personal-blog-backend/content"
)

type keyType string

const (
	actorKey keyType = "actor"
)

// ctxWithActor adds the authenticated actor to the context
func ctxWithActor(ctx context.Context, actor *content.Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ctxGetActor returns the authenticated actor, or nil for anonymous requests
func ctxGetActor(ctx context.Context) *content.Actor {
	actor, _ := ctx.Value(actorKey).(*content.Actor)
	return actor
}
