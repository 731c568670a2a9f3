package authservice

import (
	"context"

	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
)

// Service authenticates bearer tokens and authorizes actors.
type Service interface {
	// ValidateToken validates a JWT token and returns the claims if valid.
	ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error)

	// Authorize checks that actor holds at least the required role.
	Authorize(ctx context.Context, actor authdomain.Actor, required authdomain.Role) error

	// AuthorizeTeam checks that actor may act on behalf of teamID.
	AuthorizeTeam(ctx context.Context, actor authdomain.Actor, teamID string) error
}
