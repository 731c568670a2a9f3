package auctionhandlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Middlewares are applied around the auction routes. Nil entries are skipped.
type Middlewares struct {
	CORS         func(http.Handler) http.Handler
	Authenticate func(http.Handler) http.Handler
	RateLimit    func(http.Handler) http.Handler
}

func passthrough(next http.Handler) http.Handler { return next }

func orPassthrough(mw func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if mw == nil {
		return passthrough
	}
	return mw
}

// Mount registers the auction API under /api/auction. Bid mutations are
// rate limited per actor.
func Mount(router chi.Router, h Handlers, mw Middlewares) {
	router.Route("/api/auction", func(r chi.Router) {
		r.Use(orPassthrough(mw.CORS))
		r.Use(orPassthrough(mw.Authenticate))
		limit := orPassthrough(mw.RateLimit)

		r.Route("/rounds", func(r chi.Router) {
			r.Post("/", h.CreateRound)
			r.Get("/", h.ListRounds)

			r.Route("/{roundID}", func(r chi.Router) {
				r.Get("/", h.GetRound)
				r.Post("/players", h.AddRoundPlayers)
				r.Post("/schedule", h.ScheduleRound)
				r.Post("/activate", h.ActivateRound)
				r.Post("/complete", h.CompleteRound)
				r.Post("/cancel", h.CancelRound)
				r.Get("/preview", h.PreviewCompletion)
				r.Get("/jobs", h.ListRoundJobs)
				r.Post("/tiebreaker", h.CreateTiebreaker)
				r.Get("/bids", h.ListTeamBids)
				r.With(limit).Post("/bids", h.PlaceBids)
				r.With(limit).Post("/players/{playerID}/bid", h.PlaceBid)
				r.With(limit).Delete("/players/{playerID}/bid", h.WithdrawBid)
				r.Get("/subscribe", h.Subscribe)
			})
		})

		r.Route("/teams/{teamID}", func(r chi.Router) {
			r.Get("/budget", h.GetTeamBudget)
			r.Get("/ledger", h.ListLedger)
			r.Post("/adjustments", h.AdjustBudget)
			r.Get("/audit", h.AuditTeamBudget)
		})
	})
}
