package authapi

import (
	"time"

	"github.com/google/uuid"
)

// Credentials is the token pair issued by a successful login, force-login,
// or refresh.
type Credentials struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
}

// Offer describes the other device holding the account's active session.
// It exists only between a conflicting login attempt and the user's
// force/cancel decision and is never persisted.
type Offer struct {
	Device     string    `json:"device"`
	Browser    string    `json:"browser"`
	Location   string    `json:"location"`
	LastActive time.Time `json:"last_active"`
}

// LoginResult is the outcome of a login attempt that did not fail outright.
// Exactly one field is set: Credentials on success, Conflict when the
// account already has an active session elsewhere. A conflict is a control
// flow branch requiring a user decision, not an error.
type LoginResult struct {
	Credentials *Credentials
	Conflict    *Offer
}

// Settings is the subset of user preferences the session manager consumes.
type Settings struct {
	// SessionTimeoutMinutes is the idle timeout preference.
	// Zero disables idle timeout entirely.
	SessionTimeoutMinutes int `json:"session_timeout_minutes"`
}

// loginRequest is the wire shape for login and force-login calls.
type loginRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Fingerprint string `json:"fingerprint,omitempty"`
	Device      string `json:"device,omitempty"`
}

// tokenRequest is the wire shape for refresh, validate, and logout calls.
type tokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// conflictResponse is the 409 payload carrying the existing session.
type conflictResponse struct {
	RequiresForce   bool  `json:"requires_force_login"`
	ExistingSession Offer `json:"existing_session"`
}

// errorResponse is the generic failure payload.
type errorResponse struct {
	Code    string `json:"error"`
	Message string `json:"message"`
}
