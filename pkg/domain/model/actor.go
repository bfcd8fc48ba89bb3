package model

import (
	"context"

	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

// Actor is the logged in user a page is rendered for
type Actor struct {
	ID   types.UserID
	Name string
}

// IsAnonymous reports whether no user is attached
func (a *Actor) IsAnonymous() bool {
	return a == nil || a.ID == ""
}

type ctxActorKey struct{}

// ContextWithActor stores actor in ctx
func ContextWithActor(ctx context.Context, actor *Actor) context.Context {
	return context.WithValue(ctx, ctxActorKey{}, actor)
}

// ActorFromContext returns the actor stored by ContextWithActor, or nil
func ActorFromContext(ctx context.Context) *Actor {
	actor, _ := ctx.Value(ctxActorKey{}).(*Actor)
	return actor
}
