package auctionservice

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection reason.
type Code string

const (
	CodeRoundNotFound       Code = "ROUND_NOT_FOUND"
	CodeRoundNotActive      Code = "ROUND_NOT_ACTIVE"
	CodeInvalidTransition   Code = "INVALID_TRANSITION"
	CodeNoPlayers           Code = "NO_PLAYERS"
	CodePlayerNotInRound    Code = "PLAYER_NOT_IN_ROUND"
	CodePlayerAlreadySold   Code = "PLAYER_ALREADY_SOLD"
	CodeRosterFull          Code = "ROSTER_FULL"
	CodeInsufficientBudget  Code = "INSUFFICIENT_BUDGET"
	CodeTeamNotEligible     Code = "TEAM_NOT_ELIGIBLE"
	CodeInvalidAmount       Code = "INVALID_AMOUNT"
	CodeNotContested        Code = "NOT_CONTESTED"
	CodeForbidden           Code = "FORBIDDEN"
	CodeValidationFailed    Code = "VALIDATION_FAILED"
	CodeConcurrencyConflict Code = "CONCURRENCY_CONFLICT"
	CodeBudgetNotFound      Code = "BUDGET_NOT_FOUND"
)

// AuctionError is a rejected operation. No state was mutated.
type AuctionError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AuctionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AuctionError) Unwrap() error { return e.Err }

// Is matches any AuctionError with the same code.
func (e *AuctionError) Is(target error) bool {
	var t *AuctionError
	if errors.As(target, &t) {
		return t.Code == e.Code
	}
	return false
}

var (
	ErrRoundNotFound       = &AuctionError{Code: CodeRoundNotFound, Message: "round not found"}
	ErrRoundNotActive      = &AuctionError{Code: CodeRoundNotActive, Message: "round is not active"}
	ErrInvalidTransition   = &AuctionError{Code: CodeInvalidTransition, Message: "invalid round status transition"}
	ErrNoPlayers           = &AuctionError{Code: CodeNoPlayers, Message: "round has no players"}
	ErrPlayerNotInRound    = &AuctionError{Code: CodePlayerNotInRound, Message: "player is not in this round"}
	ErrPlayerAlreadySold   = &AuctionError{Code: CodePlayerAlreadySold, Message: "player is already sold"}
	ErrRosterFull          = &AuctionError{Code: CodeRosterFull, Message: "no roster slots left"}
	ErrInsufficientBudget  = &AuctionError{Code: CodeInsufficientBudget, Message: "insufficient budget"}
	ErrTeamNotEligible     = &AuctionError{Code: CodeTeamNotEligible, Message: "team is not eligible in this round"}
	ErrInvalidAmount       = &AuctionError{Code: CodeInvalidAmount, Message: "invalid bid amount"}
	ErrNotContested        = &AuctionError{Code: CodeNotContested, Message: "player is not contested"}
	ErrForbidden           = &AuctionError{Code: CodeForbidden, Message: "forbidden"}
	ErrValidationFailed    = &AuctionError{Code: CodeValidationFailed, Message: "validation failed"}
	ErrConcurrencyConflict = &AuctionError{Code: CodeConcurrencyConflict, Message: "concurrent update, retry"}
	ErrBudgetNotFound      = &AuctionError{Code: CodeBudgetNotFound, Message: "team budget not found"}
)

// reject returns an error with base's code and a specific message.
func reject(base *AuctionError, format string, args ...any) error {
	return &AuctionError{Code: base.Code, Message: fmt.Sprintf(format, args...)}
}

// CodeOf returns the code carried by err, or "" for infrastructure errors.
func CodeOf(err error) Code {
	var ae *AuctionError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}
