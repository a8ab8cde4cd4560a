package interceptor

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/sessionguard/core/authapi"
)

// Option configures the Transport.
type Option func(*Transport)

// DefaultExemptPaths returns the endpoint prefixes where 401 means a
// business failure rather than an expired credential: the login family,
// password changes, destructive-action re-auth, and 2FA verification.
func DefaultExemptPaths() []string {
	return []string{
		authapi.PathLogin,
		authapi.PathForceLogin,
		"/auth/password",
		"/auth/reauth",
		"/auth/2fa",
	}
}

// PathPrefixExempt builds an exempt predicate matching URL path prefixes.
func PathPrefixExempt(prefixes ...string) func(*http.Request) bool {
	return func(req *http.Request) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(req.URL.Path, prefix) {
				return true
			}
		}
		return false
	}
}

// WithBase sets the underlying RoundTripper. Default is http.DefaultTransport.
func WithBase(base http.RoundTripper) Option {
	return func(t *Transport) {
		if base != nil {
			t.base = base
		}
	}
}

// WithExemptPaths replaces the default exempt set with the given path prefixes.
func WithExemptPaths(prefixes ...string) Option {
	return func(t *Transport) {
		t.exempt = PathPrefixExempt(prefixes...)
	}
}

// WithExemptFunc replaces the exempt predicate entirely.
func WithExemptFunc(fn func(*http.Request) bool) Option {
	return func(t *Transport) {
		if fn != nil {
			t.exempt = fn
		}
	}
}

// WithRefreshLead enables proactive refresh of JWT access tokens the given
// duration before their exp claim. Zero (the default) disables proactive
// refresh; the 401-triggered path always remains active.
func WithRefreshLead(lead time.Duration) Option {
	return func(t *Transport) {
		if lead > 0 {
			t.refreshLead = lead
		}
	}
}

// WithSessionEndHandler registers a hook invoked when a refresh attempt
// fails and the store has been cleared (hard session end). The application
// uses this to navigate to sign-in.
func WithSessionEndHandler(fn func(error)) Option {
	return func(t *Transport) {
		if fn != nil {
			t.onSessionEnd = fn
		}
	}
}

// WithLogger configures structured logging.
func WithLogger(log *slog.Logger) Option {
	return func(t *Transport) {
		if log != nil {
			t.log = log
		}
	}
}
