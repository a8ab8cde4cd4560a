package revocation_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/sessionguard/core/credentials"
	"github.com/dmitrymomot/sessionguard/core/revocation"
)

// wsServer upgrades incoming connections and writes the scripted frames.
func wsServer(t *testing.T, frames []string, gotAuth *atomic.Value) *httptest.Server {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if gotAuth != nil {
			gotAuth.Store(r.Header.Get("Authorization"))
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Keep the connection open so the client does not reconnect and
		// replay the frames.
		time.Sleep(time.Second)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func startListener(t *testing.T, l *revocation.Listener) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go l.Start(ctx) //nolint:errcheck
	t.Cleanup(cancel)
	return cancel
}

func TestNewListener(t *testing.T) {
	t.Parallel()

	t.Run("requires url", func(t *testing.T) {
		t.Parallel()

		_, err := revocation.NewListener("", credentials.NewMemoryStore())
		require.ErrorIs(t, err, revocation.ErrEmptyURL)
	})

	t.Run("requires store", func(t *testing.T) {
		t.Parallel()

		_, err := revocation.NewListener("ws://localhost", nil)
		require.ErrorIs(t, err, revocation.ErrNilStore)
	})
}

func TestListenerRevocationPush(t *testing.T) {
	t.Parallel()

	t.Run("revocation event clears store and fires handler once", func(t *testing.T) {
		t.Parallel()

		// Duplicate pushes must not produce duplicate side effects.
		srv := wsServer(t, []string{
			`{"event":"session_revoked"}`,
			`{"event":"session_revoked"}`,
		}, nil)

		store := seededStore(t)
		var revoked atomic.Int64
		listener, err := revocation.NewListener(wsURL(srv), store,
			revocation.WithListenerRevokedHandler(func() { revoked.Add(1) }),
		)
		require.NoError(t, err)
		startListener(t, listener)

		require.Eventually(t, func() bool {
			return revoked.Load() >= 1
		}, 2*time.Second, 5*time.Millisecond)

		_, err = store.Get(context.Background())
		require.ErrorIs(t, err, credentials.ErrNoSession)

		time.Sleep(100 * time.Millisecond)
		assert.EqualValues(t, 1, revoked.Load())
	})

	t.Run("unrelated and malformed frames are ignored", func(t *testing.T) {
		t.Parallel()

		srv := wsServer(t, []string{
			`not json at all`,
			`{"event":"presence_update"}`,
			`{"event":"session_revoked"}`,
		}, nil)

		store := seededStore(t)
		var revoked atomic.Int64
		listener, err := revocation.NewListener(wsURL(srv), store,
			revocation.WithListenerRevokedHandler(func() { revoked.Add(1) }),
		)
		require.NoError(t, err)
		startListener(t, listener)

		// Only the final frame terminates; the garbage before it is skipped.
		require.Eventually(t, func() bool {
			return revoked.Load() == 1
		}, 2*time.Second, 5*time.Millisecond)
	})

	t.Run("sends bearer token on connect", func(t *testing.T) {
		t.Parallel()

		var gotAuth atomic.Value
		srv := wsServer(t, []string{`{"event":"session_revoked"}`}, &gotAuth)

		store := seededStore(t)
		var revoked atomic.Int64
		listener, err := revocation.NewListener(wsURL(srv), store,
			revocation.WithListenerRevokedHandler(func() { revoked.Add(1) }),
		)
		require.NoError(t, err)
		startListener(t, listener)

		require.Eventually(t, func() bool {
			return revoked.Load() == 1
		}, 2*time.Second, 5*time.Millisecond)

		assert.Equal(t, "Bearer access", gotAuth.Load())
	})

	t.Run("reconnects after connection drop", func(t *testing.T) {
		t.Parallel()

		var dials atomic.Int64
		upgrader := websocket.Upgrader{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			dials.Add(1)
			conn, err := upgrader.Upgrade(w, r, nil)
			if err != nil {
				return
			}
			conn.Close() // immediate drop
		}))
		t.Cleanup(srv.Close)

		store := seededStore(t)
		listener, err := revocation.NewListener(wsURL(srv), store,
			revocation.WithReconnectDelay(10*time.Millisecond),
		)
		require.NoError(t, err)
		startListener(t, listener)

		require.Eventually(t, func() bool {
			return dials.Load() >= 3
		}, 2*time.Second, 5*time.Millisecond)

		// Transport failures never touch the session.
		_, err = store.Get(context.Background())
		require.NoError(t, err)
	})
}
