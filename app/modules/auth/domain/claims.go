package authdomain

import (
	"context"
	"time"
)

// Claims represents the domain model for authentication claims.
type Claims struct {
	Subject   string
	TeamID    string
	Role      Role
	ExpiresAt time.Time
	IssuedAt  time.Time
}

// IsExpired checks if the claims have expired.
func (c *Claims) IsExpired() bool {
	return time.Now().After(c.ExpiresAt)
}

// Actor returns the caller identity carried by the claims.
func (c *Claims) Actor() Actor {
	return Actor{ID: c.Subject, TeamID: c.TeamID, Role: c.Role}
}

// Actor is an authenticated caller.
type Actor struct {
	ID     string `json:"id"`
	TeamID string `json:"team_id,omitempty"`
	Role   Role   `json:"role"`
}

// System is the actor used by scheduled jobs.
var System = Actor{ID: "system", Role: RoleAdmin}

type actorKey struct{}

// WithActor stores the actor in ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the actor stored by WithActor.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok
}
