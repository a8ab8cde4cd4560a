package interceptor

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// shouldRefreshEarly reports whether the access token should be refreshed
// proactively. Only meaningful for JWT access tokens: the exp claim is
// decoded without signature verification (the client holds no signing key;
// the server remains the authority, and the 401 path stays as the
// fallback). Opaque tokens and tokens without exp never refresh early.
func (t *Transport) shouldRefreshEarly(accessToken string) bool {
	if t.refreshLead <= 0 || accessToken == "" {
		return false
	}

	exp, ok := tokenExpiry(accessToken)
	if !ok {
		return false
	}

	return time.Until(exp) <= t.refreshLead
}

// tokenExpiry extracts the exp claim from a JWT without verifying it.
func tokenExpiry(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}

	return exp.Time, true
}
