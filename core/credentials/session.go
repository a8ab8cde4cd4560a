package credentials

import (
	"time"

	"github.com/google/uuid"
)

// Session is the client-side record of one logical authenticated session.
// It is a value type: stores read and write it wholesale, never field by
// field, so a reader can never observe an access token from one session
// paired with a refresh token from another.
type Session struct {
	// AccessToken is the short-lived bearer credential attached to requests.
	AccessToken string `json:"access_token"`

	// RefreshToken is the long-lived credential exchanged for new token
	// pairs. Its validity is the server's definition of "session alive".
	RefreshToken string `json:"refresh_token"`

	// UserID identifies the authenticated user.
	UserID uuid.UUID `json:"user_id"`

	// Fingerprint identifies the device that established the session
	// (format: v1:hash). Used for display in conflict prompts only.
	Fingerprint string `json:"fingerprint"`

	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
}

// New creates a session record for a freshly issued token pair.
func New(userID uuid.UUID, accessToken, refreshToken, deviceFingerprint string) Session {
	now := time.Now()
	return Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UserID:       userID,
		Fingerprint:  deviceFingerprint,
		CreatedAt:    now,
		LastSeenAt:   now,
	}
}

// WithTokens returns a copy of the session carrying a rotated token pair.
// Used after a successful refresh; identity and creation time are preserved.
func (s Session) WithTokens(accessToken, refreshToken string) Session {
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.LastSeenAt = time.Now()
	return s
}

// Touched returns a copy with LastSeenAt advanced to now, but only when at
// least interval has elapsed since the previous update. The boolean reports
// whether the copy differs, letting callers skip redundant store writes.
func (s Session) Touched(interval time.Duration) (Session, bool) {
	if time.Since(s.LastSeenAt) < interval {
		return s, false
	}
	s.LastSeenAt = time.Now()
	return s, true
}

// IsZero reports whether the session is empty (no credentials at all).
func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == ""
}
