package authservice

import (
	"context"
	"fmt"
	"log/slog"

	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// service implements the Service interface.
type service struct {
	jwtProvider authjwt.Provider
	logger      *slog.Logger
	tracer      trace.Tracer
}

// NewService creates a new auth service.
func NewService(jwtProvider authjwt.Provider, logger *slog.Logger, tracer trace.Tracer) Service {
	if logger == nil {
		logger = slog.Default()
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("auth")
	}
	return &service{
		jwtProvider: jwtProvider,
		logger:      logger,
		tracer:      tracer,
	}
}

// ValidateToken validates a JWT token and returns the claims if valid.
func (s *service) ValidateToken(ctx context.Context, tokenString string) (*authdomain.Claims, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.ValidateToken")
	defer span.End()

	claims, err := s.jwtProvider.ValidateToken(tokenString)
	if err != nil {
		s.logger.DebugContext(ctx, "Token validation failed", attr.Error(err))
		return nil, err
	}
	return claims, nil
}

// Authorize checks that actor holds at least the required role.
func (s *service) Authorize(ctx context.Context, actor authdomain.Actor, required authdomain.Role) error {
	if actor.ID == "" {
		return ErrUnauthenticated
	}
	if !required.IsValid() {
		return ErrInvalidRole
	}
	if !actor.Role.Satisfies(required) {
		s.logger.WarnContext(ctx, "Authorization denied",
			attr.String("actor_id", actor.ID),
			attr.String("role", actor.Role.String()),
			attr.String("required_role", required.String()),
		)
		return fmt.Errorf("%w: %s requires %s", ErrForbidden, actor.Role, required)
	}
	return nil
}

// AuthorizeTeam checks that actor may act on behalf of teamID. Admins may act
// for any team; team actors only for their own.
func (s *service) AuthorizeTeam(ctx context.Context, actor authdomain.Actor, teamID string) error {
	if err := s.Authorize(ctx, actor, authdomain.RoleTeam); err != nil {
		return err
	}
	if actor.Role == authdomain.RoleAdmin {
		return nil
	}
	if actor.TeamID != teamID {
		s.logger.WarnContext(ctx, "Team mismatch",
			attr.String("actor_id", actor.ID),
			attr.String("actor_team_id", actor.TeamID),
			attr.String("team_id", teamID),
		)
		return ErrWrongTeam
	}
	return nil
}
