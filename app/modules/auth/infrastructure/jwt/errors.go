package authjwt

import "errors"

var (
	ErrInvalidToken     = errors.New("malformed bearer token")
	ErrExpiredToken     = errors.New("bearer token expired")
	ErrInvalidSignature = errors.New("bearer token signature mismatch")

	// ErrIncompleteClaims means the token verified but cannot identify an
	// auction actor: missing subject, unknown role, or a team role without team_id.
	ErrIncompleteClaims = errors.New("bearer token lacks auction claims")
)
