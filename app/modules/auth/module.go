package auth

import (
	"context"
	"log/slog"
	"net/http"

	authservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/application"
	authhandlers "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/infrastructure/handlers"
	authjwt "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/infrastructure/jwt"
	"github.com/Black-And-White-Club/bulk-auction/config"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Module represents the auth module.
type Module struct {
	Service     authservice.Service
	RateLimiter *authhandlers.KeyedRateLimiter
	corsOrigins []string
	logger      *slog.Logger
}

// NewModule creates a new auth module.
func NewModule(ctx context.Context, cfg *config.Config, logger *slog.Logger, tracer trace.Tracer) *Module {
	logger.InfoContext(ctx, "Initializing auth module")

	provider := authjwt.NewProvider(cfg.JWT.Secret)
	service := authservice.NewService(provider, logger, tracer)

	return &Module{
		Service:     service,
		RateLimiter: authhandlers.NewKeyedRateLimiter(rate.Limit(cfg.HTTP.BidRatePerSec), cfg.HTTP.BidBurst),
		corsOrigins: cfg.HTTP.AllowedOrigins,
		logger:      logger,
	}
}

// Authenticate returns the bearer-token middleware.
func (m *Module) Authenticate() func(http.Handler) http.Handler {
	return authhandlers.BearerAuthMiddleware(m.Service)
}

// RateLimit returns the per-actor rate limiting middleware.
func (m *Module) RateLimit() func(http.Handler) http.Handler {
	return authhandlers.RateLimitMiddleware(m.RateLimiter)
}

// CORS returns the CORS middleware for the configured origins.
func (m *Module) CORS() func(http.Handler) http.Handler {
	return authhandlers.CORSMiddleware(m.corsOrigins)
}
