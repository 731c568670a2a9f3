package auctionhandlers

import (
	"context"
	"net/http"

	auctionqueue "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/infrastructure/queue"
)

// Handlers defines the auction message and HTTP handlers.
type Handlers interface {
	// HandleActivateRound activates a scheduled round when its job fires.
	HandleActivateRound(ctx context.Context, cmd *auctionqueue.ActivateRoundCommand) error

	CreateRound(w http.ResponseWriter, r *http.Request)
	ListRounds(w http.ResponseWriter, r *http.Request)
	GetRound(w http.ResponseWriter, r *http.Request)
	AddRoundPlayers(w http.ResponseWriter, r *http.Request)
	ScheduleRound(w http.ResponseWriter, r *http.Request)
	ActivateRound(w http.ResponseWriter, r *http.Request)
	CompleteRound(w http.ResponseWriter, r *http.Request)
	CancelRound(w http.ResponseWriter, r *http.Request)
	PreviewCompletion(w http.ResponseWriter, r *http.Request)
	ListRoundJobs(w http.ResponseWriter, r *http.Request)
	CreateTiebreaker(w http.ResponseWriter, r *http.Request)

	PlaceBids(w http.ResponseWriter, r *http.Request)
	ListTeamBids(w http.ResponseWriter, r *http.Request)
	PlaceBid(w http.ResponseWriter, r *http.Request)
	WithdrawBid(w http.ResponseWriter, r *http.Request)
	Subscribe(w http.ResponseWriter, r *http.Request)

	GetTeamBudget(w http.ResponseWriter, r *http.Request)
	ListLedger(w http.ResponseWriter, r *http.Request)
	AdjustBudget(w http.ResponseWriter, r *http.Request)
	AuditTeamBudget(w http.ResponseWriter, r *http.Request)
}

// RoundStreamer serves the websocket subscription of one round.
type RoundStreamer interface {
	Serve(w http.ResponseWriter, r *http.Request, roundID string)
}
