package revocation_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/core/authapi"
	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/revocation"
)

// fakeValidator returns scripted verdicts and tracks concurrency.
type fakeValidator struct {
	err        error
	delay      time.Duration
	calls      atomic.Int64
	inFlight   atomic.Int64
	maxInFlite atomic.Int64
}

func (f *fakeValidator) ValidateSession(ctx context.Context, refreshToken string) error {
	f.calls.Add(1)

	current := f.inFlight.Add(1)
	if current > f.maxInFlite.Load() {
		f.maxInFlite.Store(current)
	}
	defer f.inFlight.Add(-1)

	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.err
}

func seededStore(t *testing.T) *credentials.MemoryStore {
	t.Helper()
	store := credentials.NewMemoryStore()
	require.NoError(t, store.Set(context.Background(),
		credentials.New(uuid.New(), "access", "refresh", "")))
	return store
}

func startPoller(t *testing.T, p *revocation.Poller) {
	t.Helper()
	go p.Start(context.Background()) //nolint:errcheck
	t.Cleanup(func() { _ = p.Stop() })
}

func TestNewPoller(t *testing.T) {
	t.Parallel()

	t.Run("requires validator", func(t *testing.T) {
		t.Parallel()

		_, err := revocation.NewPoller(nil, credentials.NewMemoryStore())
		require.ErrorIs(t, err, revocation.ErrNilValidator)
	})

	t.Run("requires store", func(t *testing.T) {
		t.Parallel()

		_, err := revocation.NewPoller(&fakeValidator{}, nil)
		require.ErrorIs(t, err, revocation.ErrNilStore)
	})
}

func TestPollerRevocation(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized clears store and fires handler once", func(t *testing.T) {
		t.Parallel()

		store := seededStore(t)
		validator := &fakeValidator{err: authapi.ErrUnauthorized}

		var revoked atomic.Int64
		poller, err := revocation.NewPoller(validator, store,
			revocation.WithInterval(10*time.Millisecond),
			revocation.WithRevokedHandler(func() { revoked.Add(1) }),
		)
		require.NoError(t, err)
		startPoller(t, poller)

		require.Eventually(t, func() bool {
			return revoked.Load() == 1
		}, 2*time.Second, 5*time.Millisecond)

		_, err = store.Get(context.Background())
		require.ErrorIs(t, err, credentials.ErrNoSession)

		// Later ticks find no session; the handler never fires again.
		time.Sleep(100 * time.Millisecond)
		assert.EqualValues(t, 1, revoked.Load())
	})

	t.Run("transient failures never terminate", func(t *testing.T) {
		t.Parallel()

		store := seededStore(t)
		validator := &fakeValidator{err: errors.New("connection reset")}

		var revoked atomic.Bool
		poller, err := revocation.NewPoller(validator, store,
			revocation.WithInterval(10*time.Millisecond),
			revocation.WithRevokedHandler(func() { revoked.Store(true) }),
		)
		require.NoError(t, err)
		startPoller(t, poller)

		// Several failing polls happen; the session survives all of them.
		require.Eventually(t, func() bool {
			return validator.calls.Load() >= 3
		}, 2*time.Second, 5*time.Millisecond)

		assert.False(t, revoked.Load())
		_, err = store.Get(context.Background())
		require.NoError(t, err)

		stats := poller.Stats()
		assert.GreaterOrEqual(t, stats.TransientFailures, int64(3))
	})

	t.Run("valid session keeps polling", func(t *testing.T) {
		t.Parallel()

		store := seededStore(t)
		validator := &fakeValidator{}

		poller, err := revocation.NewPoller(validator, store,
			revocation.WithInterval(10*time.Millisecond),
		)
		require.NoError(t, err)
		startPoller(t, poller)

		require.Eventually(t, func() bool {
			return validator.calls.Load() >= 3
		}, 2*time.Second, 5*time.Millisecond)

		_, err = store.Get(context.Background())
		require.NoError(t, err)
	})
}

func TestPollerReentrancy(t *testing.T) {
	t.Parallel()

	store := seededStore(t)
	// Each validate call takes several ticks; overlapping ticks must be
	// skipped, never stacked.
	validator := &fakeValidator{delay: 60 * time.Millisecond}

	poller, err := revocation.NewPoller(validator, store,
		revocation.WithInterval(10*time.Millisecond),
	)
	require.NoError(t, err)
	startPoller(t, poller)

	require.Eventually(t, func() bool {
		return validator.calls.Load() >= 2
	}, 2*time.Second, 5*time.Millisecond)

	assert.EqualValues(t, 1, validator.maxInFlite.Load())
}

func TestPollerLifecycle(t *testing.T) {
	t.Parallel()

	t.Run("double start fails", func(t *testing.T) {
		t.Parallel()

		poller, err := revocation.NewPoller(&fakeValidator{}, seededStore(t),
			revocation.WithInterval(10*time.Millisecond))
		require.NoError(t, err)
		startPoller(t, poller)

		require.Eventually(t, func() bool {
			return poller.Stats().IsRunning
		}, time.Second, 5*time.Millisecond)

		err = poller.Start(context.Background())
		require.Error(t, err)
	})

	t.Run("stop before start fails", func(t *testing.T) {
		t.Parallel()

		poller, err := revocation.NewPoller(&fakeValidator{}, seededStore(t))
		require.NoError(t, err)
		require.Error(t, poller.Stop())
	})

	t.Run("stop halts polling", func(t *testing.T) {
		t.Parallel()

		validator := &fakeValidator{}
		poller, err := revocation.NewPoller(validator, seededStore(t),
			revocation.WithInterval(10*time.Millisecond))
		require.NoError(t, err)

		go poller.Start(context.Background()) //nolint:errcheck

		require.Eventually(t, func() bool {
			return validator.calls.Load() >= 1
		}, 2*time.Second, 5*time.Millisecond)

		require.NoError(t, poller.Stop())
		calls := validator.calls.Load()

		time.Sleep(100 * time.Millisecond)
		assert.Equal(t, calls, validator.calls.Load())
	})

	t.Run("run returns nil on context cancel", func(t *testing.T) {
		t.Parallel()

		poller, err := revocation.NewPoller(&fakeValidator{}, seededStore(t),
			revocation.WithInterval(10*time.Millisecond))
		require.NoError(t, err)

		ctx, cancel := context.WithCancel(context.Background())
		errCh := make(chan error, 1)
		go func() { errCh <- poller.Run(ctx)() }()

		time.Sleep(50 * time.Millisecond)
		cancel()

		select {
		case err := <-errCh:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("run did not return after cancel")
		}
	})
}
