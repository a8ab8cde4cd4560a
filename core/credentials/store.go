package credentials

import "context"

// Store is the single mutable resource shared by every sessionguard
// component. Implementations must be safe for concurrent use and must treat
// the session as one atomic value: Set replaces the whole record, Get
// returns a consistent snapshot, and Clear is idempotent.
//
// All session-terminating paths (idle expiry, revocation, refresh failure,
// explicit logout) call Clear; a cleared store always forces re-login, so
// racing writers cannot corrupt state, only log out slightly early.
type Store interface {
	// Get returns the current session snapshot.
	// Returns ErrNoSession when no session is stored.
	Get(ctx context.Context) (Session, error)

	// Set replaces the stored session wholesale.
	Set(ctx context.Context, sess Session) error

	// Clear removes the stored session. Clearing an empty store is a no-op.
	Clear(ctx context.Context) error
}
