package authservice

import "errors"

var (
	// ErrUnauthenticated is returned when no actor is present.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden is returned when the actor's role does not grant access.
	ErrForbidden = errors.New("forbidden")

	// ErrWrongTeam is returned when a team actor acts for another team.
	ErrWrongTeam = errors.New("actor may not act for this team")

	// ErrInvalidRole is returned when an invalid role is specified.
	ErrInvalidRole = errors.New("invalid role specified")
)
