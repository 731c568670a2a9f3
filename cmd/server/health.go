package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
)

const readinessTimeout = 2 * time.Second

type readinessCheck struct {
	name  string
	check func(ctx context.Context) error
}

// readinessHandler reports 503 with the failing checks while any dependency
// is unreachable.
func readinessHandler(logger *slog.Logger, checks ...readinessCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		failed := map[string]string{}
		for _, c := range checks {
			if err := c.check(ctx); err != nil {
				logger.WarnContext(ctx, "Readiness check failed",
					attr.String("check", c.name),
					attr.Error(err),
				)
				failed[c.name] = err.Error()
			}
		}

		status := http.StatusOK
		body := map[string]any{"status": "ready"}
		if len(failed) > 0 {
			status = http.StatusServiceUnavailable
			body = map[string]any{"status": "unavailable", "failed": failed}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}
}
