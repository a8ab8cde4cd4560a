package login

import "errors"

var (
	// ErrNilAuthenticator is returned when no authenticator is provided.
	ErrNilAuthenticator = errors.New("login: authenticator is required")

	// ErrNilStore is returned when no credential store is provided.
	ErrNilStore = errors.New("login: credential store is required")

	// ErrConflictConsumed is returned when Force is called on a conflict
	// handle that was already forced or cancelled.
	ErrConflictConsumed = errors.New("login: conflict handle already consumed")

	// ErrPersistFailed wraps a store write failure after the backend
	// accepted the login.
	ErrPersistFailed = errors.New("login: failed to persist session")
)
