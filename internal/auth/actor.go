package auth

import (
	"context"

	"motorserve/internal/db"
)

// Actor is the resolved identity behind a request: the user plus whichever
// profile its role implies. It is resolved once by the middleware instead of
// probed with existence checks in every handler.
type Actor struct {
	User     *db.User
	Center   *db.ServiceCenter // set when User.Role == service_center and a profile exists
	Mechanic *db.Mechanic      // set when User.Role == mechanic and a profile exists
}

func (a Actor) IsCustomer() bool {
	return a.User != nil && a.User.Role == db.RoleCustomer
}

func (a Actor) IsCenter() bool {
	return a.User != nil && a.User.Role == db.RoleServiceCenter
}

func (a Actor) IsMechanic() bool {
	return a.User != nil && a.User.Role == db.RoleMechanic
}

func (a Actor) IsAdmin() bool {
	return a.User != nil && a.User.Role == db.RoleAdmin
}

// CenterID returns the id of the actor's service center profile, or 0.
func (a Actor) CenterID() int {
	if a.Center == nil {
		return 0
	}
	return a.Center.ID
}

type contextKey string

const actorKey contextKey = "actor"

func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// ActorFrom returns the actor stored by the auth middleware.
func ActorFrom(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorKey).(Actor)
	return actor, ok
}
