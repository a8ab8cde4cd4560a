package revocation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrymomot/sessionguard/core/authapi"
	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/logger"
)

// DefaultInterval is the poll cadence. The acceptable range is roughly
// 3-10 seconds: faster wastes backend calls, slower delays eviction
// detection past what a user forcing a login elsewhere will tolerate.
const DefaultInterval = 5 * time.Second

// Validator checks whether a refresh credential is still accepted by the
// backend. *authapi.Client satisfies this interface.
type Validator interface {
	ValidateSession(ctx context.Context, refreshToken string) error
}

// Poller periodically validates the stored refresh credential against the
// backend. It is the only path by which this device learns that its
// session was invalidated by another device's force-login.
//
// An unauthorized verdict is authoritative: the store is cleared and the
// revoked handler fires exactly once, with no retry. Transient failures
// (network errors) are ignored; the next tick retries. Ticks are
// re-entrant-safe: while a validate call is in flight, subsequent ticks
// are skipped instead of stacking.
type Poller struct {
	validator Validator
	store     credentials.Store

	interval        time.Duration
	shutdownTimeout time.Duration
	onRevoked       func()
	log             *slog.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	revoked sync.Once

	inFlight atomic.Bool

	// Observability metrics
	polls             atomic.Int64
	transientFailures atomic.Int64
}

// PollerStats provides observability metrics for monitoring and debugging.
type PollerStats struct {
	Polls             int64 // Total validate calls performed
	TransientFailures int64 // Polls that failed for non-authoritative reasons
	IsRunning         bool  // Whether the poll loop is active
}

// NewPoller creates a revocation poller over the given validator and store.
func NewPoller(validator Validator, store credentials.Store, opts ...PollerOption) (*Poller, error) {
	if validator == nil {
		return nil, ErrNilValidator
	}
	if store == nil {
		return nil, ErrNilStore
	}

	p := &Poller{
		validator:       validator,
		store:           store,
		interval:        DefaultInterval,
		shutdownTimeout: 5 * time.Second,
		onRevoked:       func() {},
		log:             slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Start begins polling. This is a blocking operation that runs until the
// context is cancelled. Use Run() for errgroup pattern or call this in a
// goroutine.
func (p *Poller) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.cancel != nil {
		p.mu.Unlock()
		return fmt.Errorf("revocation poller already started")
	}
	ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	p.log.InfoContext(ctx, "revocation poller started",
		logger.Component("revocation"),
		logger.Interval(p.interval),
	)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.InfoContext(context.Background(), "revocation poller stopping",
				logger.Component("revocation"))
			return ctx.Err()
		case <-ticker.C:
			// Skip the tick while the previous validate call is still in
			// flight; overlapping polls would only duplicate the verdict.
			if !p.inFlight.CompareAndSwap(false, true) {
				continue
			}

			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				defer p.inFlight.Store(false)
				p.poll(ctx)
			}()
		}
	}
}

// Stop gracefully shuts down the poller, waiting for an in-flight poll up
// to the shutdown timeout.
func (p *Poller) Stop() error {
	p.mu.Lock()
	if p.cancel == nil {
		p.mu.Unlock()
		return fmt.Errorf("revocation poller not started")
	}
	cancel := p.cancel
	p.cancel = nil
	p.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(p.shutdownTimeout):
		return fmt.Errorf("revocation poller shutdown timeout exceeded after %s", p.shutdownTimeout)
	}
}

// Run provides errgroup compatibility for coordinated lifecycle management.
func (p *Poller) Run(ctx context.Context) func() error {
	return func() error {
		err := p.Start(ctx)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}

// Stats returns a snapshot of poller metrics.
func (p *Poller) Stats() PollerStats {
	p.mu.Lock()
	running := p.cancel != nil
	p.mu.Unlock()

	return PollerStats{
		Polls:             p.polls.Load(),
		TransientFailures: p.transientFailures.Load(),
		IsRunning:         running,
	}
}

// poll performs one validate call and applies the verdict.
func (p *Poller) poll(ctx context.Context) {
	sess, err := p.store.Get(ctx)
	if err != nil {
		// No session to validate; the owner is about to stop us.
		return
	}

	p.polls.Add(1)

	err = p.validator.ValidateSession(ctx, sess.RefreshToken)
	switch {
	case err == nil:
		return

	case errors.Is(err, authapi.ErrUnauthorized):
		// Authoritative: the refresh credential was revoked, typically by
		// a force-login on another device. Terminate now, no retry.
		p.terminate(ctx)

	default:
		// Transient failure: never end a session over a flaky network.
		p.transientFailures.Add(1)
		p.log.DebugContext(ctx, "revocation poll failed, will retry next tick",
			logger.Component("revocation"),
			logger.Error(err),
		)
	}
}

// terminate clears the store and fires the revoked handler exactly once
// for the poller's lifetime, guarding against duplicate logout side
// effects from late verdicts. The handler runs on its own goroutine: it
// typically stops the poller, and Stop waits on the poll goroutine the
// verdict arrived on.
func (p *Poller) terminate(ctx context.Context) {
	p.revoked.Do(func() {
		if err := p.store.Clear(ctx); err != nil {
			p.log.ErrorContext(ctx, "failed to clear credential store",
				logger.Component("revocation"),
				logger.Error(err),
			)
		}

		p.log.InfoContext(ctx, "session revoked elsewhere",
			logger.Component("revocation"),
			logger.Reason("session_revoked"),
		)

		go p.onRevoked()
	})
}
