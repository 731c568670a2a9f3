package authhandlers

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	authservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/application"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	authjwt "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

const secret = "test-secret-at-least-32-chars-long!!"

func TestBearerAuthMiddleware(t *testing.T) {
	provider := authjwt.NewProvider(secret)
	svc := authservice.NewService(provider, slog.Default(), nil)

	valid, err := provider.GenerateToken(&authdomain.Claims{Subject: "u1", TeamID: "t1", Role: authdomain.RoleTeam}, time.Hour)
	require.NoError(t, err)

	var seen authdomain.Actor
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = authdomain.ActorFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	handler := BearerAuthMiddleware(svc)(next)

	tests := []struct {
		name       string
		setup      func(r *http.Request)
		wantStatus int
	}{
		{name: "header token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) }, wantStatus: http.StatusNoContent},
		{name: "query token", setup: func(r *http.Request) { r.URL.RawQuery = "access_token=" + valid }, wantStatus: http.StatusNoContent},
		{name: "missing token", setup: func(r *http.Request) {}, wantStatus: http.StatusUnauthorized},
		{name: "bad scheme", setup: func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") }, wantStatus: http.StatusUnauthorized},
		{name: "invalid token", setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = authdomain.Actor{}
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.setup(req)
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, "t1", seen.TeamID)
			}
		})
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	limiter := NewKeyedRateLimiter(rate.Limit(0.001), 1)
	handler := RateLimitMiddleware(limiter)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = remote
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, do("10.0.0.1:1234"))
	assert.Equal(t, http.StatusTooManyRequests, do("10.0.0.1:1235"))
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234"))
}

func TestCORSMiddleware(t *testing.T) {
	handler := CORSMiddleware([]string{"https://auction.example"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	req.Header.Set("Origin", "https://auction.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://auction.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "DELETE")

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}
