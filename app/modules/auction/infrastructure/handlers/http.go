package auctionhandlers

import (
	"net/http"
	"strconv"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	auctiondomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/domain"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func roundParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "roundID"))
	if err != nil {
		badRequest(w, "invalid round id")
		return uuid.Nil, false
	}
	return id, true
}

// teamFor resolves the acting team: an explicit team_id wins, otherwise the
// caller's own team.
func teamFor(a authdomain.Actor, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return a.TeamID
}

func (h *AuctionHandlers) budgetKey(r *http.Request) auctiondomain.BudgetKey {
	q := r.URL.Query()
	track := q.Get("track")
	if track == "" {
		track = h.defaultTrack
	}
	return auctiondomain.BudgetKey{
		TeamID:   chi.URLParam(r, "teamID"),
		SeasonID: q.Get("season_id"),
		Track:    track,
	}
}

// CreateRound handles POST /rounds.
func (h *AuctionHandlers) CreateRound(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var req auctionservice.CreateRoundRequest
	if !decode(w, r, &req) {
		return
	}
	view, err := h.service.CreateRound(r.Context(), a, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// ListRounds handles GET /rounds?season_id=&status=.
func (h *AuctionHandlers) ListRounds(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	rounds, err := h.service.ListRounds(r.Context(), a, q.Get("season_id"), auctiondomain.RoundStatus(q.Get("status")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rounds": rounds})
}

// GetRound handles GET /rounds/{roundID}.
func (h *AuctionHandlers) GetRound(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetRound(r.Context(), a, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// AddRoundPlayers handles POST /rounds/{roundID}/players.
func (h *AuctionHandlers) AddRoundPlayers(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	var body struct {
		Players []auctionservice.PlayerInput `json:"players"`
	}
	if !decode(w, r, &body) {
		return
	}
	view, err := h.service.AddRoundPlayers(r.Context(), a, id, body.Players)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ScheduleRound handles POST /rounds/{roundID}/schedule.
func (h *AuctionHandlers) ScheduleRound(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	var req auctionservice.ScheduleRequest
	if !decode(w, r, &req) {
		return
	}
	round, err := h.service.ScheduleRound(r.Context(), a, id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// ActivateRound handles POST /rounds/{roundID}/activate.
func (h *AuctionHandlers) ActivateRound(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	round, err := h.service.ActivateRound(r.Context(), a, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// CompleteRound handles POST /rounds/{roundID}/complete.
func (h *AuctionHandlers) CompleteRound(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	var req auctionservice.CompleteRequest
	if !decode(w, r, &req) {
		return
	}
	res, err := h.service.CompleteRound(r.Context(), a, id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CancelRound handles POST /rounds/{roundID}/cancel.
func (h *AuctionHandlers) CancelRound(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	round, err := h.service.CancelRound(r.Context(), a, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, round)
}

// ListRoundJobs handles GET /rounds/{roundID}/jobs.
func (h *AuctionHandlers) ListRoundJobs(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	jobs, err := h.service.ListRoundJobs(r.Context(), a, id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

// PreviewCompletion handles GET /rounds/{roundID}/preview?mode=.
func (h *AuctionHandlers) PreviewCompletion(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	mode := auctiondomain.SettlementMode(r.URL.Query().Get("mode"))
	res, err := h.service.PreviewCompletion(r.Context(), a, id, mode)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// CreateTiebreaker handles POST /rounds/{roundID}/tiebreaker.
func (h *AuctionHandlers) CreateTiebreaker(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	var body struct {
		PlayerID  string `json:"player_id"`
		BasePrice *int64 `json:"base_price"`
	}
	if !decode(w, r, &body) {
		return
	}
	ref, err := h.service.CreateTiebreaker(r.Context(), a, auctionservice.CreateTiebreakerRequest{
		RoundID:   id,
		PlayerID:  body.PlayerID,
		BasePrice: body.BasePrice,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if ref.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, ref)
}

// PlaceBids handles POST /rounds/{roundID}/bids.
func (h *AuctionHandlers) PlaceBids(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	var body struct {
		TeamID    string   `json:"team_id"`
		PlayerIDs []string `json:"player_ids"`
	}
	if !decode(w, r, &body) {
		return
	}
	res, err := h.service.PlaceBids(r.Context(), a, auctionservice.PlaceBidsRequest{
		RoundID:   id,
		TeamID:    teamFor(a, body.TeamID),
		PlayerIDs: body.PlayerIDs,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// ListTeamBids handles GET /rounds/{roundID}/bids?team_id=.
func (h *AuctionHandlers) ListTeamBids(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	bids, err := h.service.ListTeamBids(r.Context(), a, id, teamFor(a, r.URL.Query().Get("team_id")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bids": bids})
}

// PlaceBid handles POST /rounds/{roundID}/players/{playerID}/bid.
func (h *AuctionHandlers) PlaceBid(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	var body struct {
		TeamID string `json:"team_id"`
		Amount int64  `json:"amount"`
	}
	if !decode(w, r, &body) {
		return
	}
	res, err := h.service.PlaceBid(r.Context(), a, auctionservice.PlaceBidRequest{
		RoundID:  id,
		PlayerID: chi.URLParam(r, "playerID"),
		TeamID:   teamFor(a, body.TeamID),
		Amount:   body.Amount,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	status := http.StatusOK
	if res.Created {
		status = http.StatusCreated
	}
	writeJSON(w, status, res)
}

// WithdrawBid handles DELETE /rounds/{roundID}/players/{playerID}/bid?team_id=.
func (h *AuctionHandlers) WithdrawBid(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	res, err := h.service.WithdrawBid(r.Context(), a, id, chi.URLParam(r, "playerID"), teamFor(a, r.URL.Query().Get("team_id")))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Subscribe handles GET /rounds/{roundID}/subscribe. The round is fetched
// first so unknown rounds and unauthorized callers never upgrade.
func (h *AuctionHandlers) Subscribe(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	id, ok := roundParam(w, r)
	if !ok {
		return
	}
	if _, err := h.service.GetRound(r.Context(), a, id); err != nil {
		h.writeError(w, r, err)
		return
	}
	h.streamer.Serve(w, r, id.String())
}

// GetTeamBudget handles GET /teams/{teamID}/budget.
func (h *AuctionHandlers) GetTeamBudget(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	view, err := h.service.GetTeamBudget(r.Context(), a, h.budgetKey(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ListLedger handles GET /teams/{teamID}/ledger?limit=.
func (h *AuctionHandlers) ListLedger(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			badRequest(w, "invalid limit")
			return
		}
		limit = n
	}
	entries, err := h.service.ListLedger(r.Context(), a, h.budgetKey(r), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

// AdjustBudget handles POST /teams/{teamID}/adjustments.
func (h *AuctionHandlers) AdjustBudget(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	var body struct {
		SeasonID string `json:"season_id"`
		Track    string `json:"currency_track"`
		Amount   int64  `json:"amount"`
		Note     string `json:"note"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Track == "" {
		body.Track = h.defaultTrack
	}
	view, err := h.service.AdjustBudget(r.Context(), a, auctionservice.AdjustBudgetRequest{
		Key: auctiondomain.BudgetKey{
			TeamID:   chi.URLParam(r, "teamID"),
			SeasonID: body.SeasonID,
			Track:    body.Track,
		},
		Amount: body.Amount,
		Note:   body.Note,
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// AuditTeamBudget handles GET /teams/{teamID}/audit.
func (h *AuctionHandlers) AuditTeamBudget(w http.ResponseWriter, r *http.Request) {
	a, ok := actor(w, r)
	if !ok {
		return
	}
	report, err := h.service.AuditTeamBudget(r.Context(), a, h.budgetKey(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
