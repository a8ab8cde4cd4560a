package guard

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/sessionguard/core/idletimer"
)

// Option configures a Guard.
type Option func(*Guard)

// WithEndHandler registers the application hook fired once when the
// session terminates, whatever the cause. Typical implementations show a
// reason-specific message and redirect to the login screen.
func WithEndHandler(fn func(Reason)) Option {
	return func(g *Guard) {
		if fn != nil {
			g.onEnd = fn
		}
	}
}

// WithWarningHandler registers the hook fired when the idle timeout
// warning begins, with the countdown seconds remaining.
func WithWarningHandler(fn func(remaining int)) Option {
	return func(g *Guard) {
		if fn != nil {
			g.onWarning = fn
		}
	}
}

// WithTickHandler registers the hook fired on each warning countdown
// tick.
func WithTickHandler(fn func(remaining int)) Option {
	return func(g *Guard) {
		if fn != nil {
			g.onTick = fn
		}
	}
}

// WithPollInterval sets the revocation poll cadence.
func WithPollInterval(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.pollInterval = d
		}
	}
}

// WithListenerURL enables the websocket revocation push channel alongside
// the poller.
func WithListenerURL(url string) Option {
	return func(g *Guard) {
		g.listenerURL = url
	}
}

// WithBaseTransport sets the round tripper the refreshing transport
// wraps. Defaults to http.DefaultTransport.
func WithBaseTransport(rt http.RoundTripper) Option {
	return func(g *Guard) {
		g.baseTransport = rt
	}
}

// WithRefreshLead enables proactive refresh when the access token is
// within the lead duration of its expiry.
func WithRefreshLead(d time.Duration) Option {
	return func(g *Guard) {
		g.refreshLead = d
	}
}

// WithTimerOptions appends extra idle timer options, overriding the
// guard's defaults where they overlap.
func WithTimerOptions(opts ...idletimer.Option) Option {
	return func(g *Guard) {
		g.timerOpts = append(g.timerOpts, opts...)
	}
}

// WithLogger configures structured logging for the guard and every
// component it builds.
func WithLogger(log *slog.Logger) Option {
	return func(g *Guard) {
		if log != nil {
			g.log = log
		}
	}
}
