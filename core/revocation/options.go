package revocation

import (
	"log/slog"
	"time"
)

// PollerOption configures a Poller.
type PollerOption func(*Poller)

// WithInterval sets the poll cadence. Values between 3 and 10 seconds are
// recommended; non-positive values are ignored.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithShutdownTimeout sets how long Stop waits for an in-flight poll.
func WithShutdownTimeout(timeout time.Duration) PollerOption {
	return func(p *Poller) {
		if timeout > 0 {
			p.shutdownTimeout = timeout
		}
	}
}

// WithRevokedHandler registers the callback fired once when the backend
// reports the refresh credential revoked. The application navigates to
// sign-in from here.
func WithRevokedHandler(fn func()) PollerOption {
	return func(p *Poller) {
		if fn != nil {
			p.onRevoked = fn
		}
	}
}

// WithLogger configures structured logging.
func WithLogger(log *slog.Logger) PollerOption {
	return func(p *Poller) {
		if log != nil {
			p.log = log
		}
	}
}
