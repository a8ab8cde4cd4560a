package authapi

import "errors"

// Business rejections. Surfaced on the login form; never trigger credential
// clearing or refresh logic.
var (
	// ErrInvalidCredentials is returned for a wrong email/password pair.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnverifiedAccount is returned when the account email is not verified.
	ErrUnverifiedAccount = errors.New("account email is not verified")
	// ErrAccountLocked is returned when the account is administratively locked.
	ErrAccountLocked = errors.New("account is locked")
	// ErrAccountDeleted is returned when the account no longer exists.
	ErrAccountDeleted = errors.New("account has been deleted")
)

var (
	// ErrUnauthorized is returned when the backend rejects the presented
	// credential as expired or revoked. On ValidateSession this is
	// authoritative: the session must terminate immediately.
	ErrUnauthorized = errors.New("credential rejected by backend")

	// ErrTransport wraps network-level failures (connection refused, timeout,
	// malformed response). Callers decide whether to retry: the revocation
	// poller ignores these, the refresh path treats them as fatal.
	ErrTransport = errors.New("backend request failed")

	// ErrUnexpectedStatus is returned for statuses outside the documented
	// contract.
	ErrUnexpectedStatus = errors.New("unexpected backend response status")
)
