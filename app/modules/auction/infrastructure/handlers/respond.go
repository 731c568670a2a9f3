package auctionhandlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	auctionservice "github.com/Black-And-White-Club/bulk-auction/app/modules/auction/application"
	authdomain "github.com/Black-And-White-Club/bulk-auction/app/modules/auth/domain"
	"github.com/Black-And-White-Club/bulk-auction/internal/observability/attr"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// statusFor maps a rejection code to its HTTP status.
func statusFor(code auctionservice.Code) int {
	switch code {
	case auctionservice.CodeValidationFailed, auctionservice.CodeInvalidAmount:
		return http.StatusBadRequest
	case auctionservice.CodeForbidden:
		return http.StatusForbidden
	case auctionservice.CodeRoundNotFound, auctionservice.CodePlayerNotInRound, auctionservice.CodeBudgetNotFound:
		return http.StatusNotFound
	case auctionservice.CodeInvalidTransition, auctionservice.CodeConcurrencyConflict, auctionservice.CodePlayerAlreadySold:
		return http.StatusConflict
	case auctionservice.CodeRoundNotActive, auctionservice.CodeNoPlayers, auctionservice.CodeRosterFull,
		auctionservice.CodeInsufficientBudget, auctionservice.CodeTeamNotEligible, auctionservice.CodeNotContested:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeCodeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// writeError renders err. Infrastructure errors are logged and reported
// without detail.
func (h *AuctionHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var ae *auctionservice.AuctionError
	if errors.As(err, &ae) {
		writeCodeError(w, statusFor(ae.Code), string(ae.Code), ae.Message)
		return
	}
	h.logger.ErrorContext(r.Context(), "Request failed",
		attr.ExtractCorrelationID(r.Context()),
		attr.String("method", r.Method),
		attr.String("path", r.URL.Path),
		attr.Error(err),
	)
	writeCodeError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
}

func badRequest(w http.ResponseWriter, msg string) {
	writeCodeError(w, http.StatusBadRequest, string(auctionservice.CodeValidationFailed), msg)
}

// decode reads a JSON body. An empty body leaves v untouched.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

// actor returns the authenticated caller or writes 401.
func actor(w http.ResponseWriter, r *http.Request) (authdomain.Actor, bool) {
	a, ok := authdomain.ActorFromContext(r.Context())
	if !ok {
		writeCodeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "missing actor")
	}
	return a, ok
}
