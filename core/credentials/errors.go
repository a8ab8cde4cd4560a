package credentials

import "errors"

var (
	// ErrNoSession is returned when the store holds no session.
	ErrNoSession = errors.New("no session stored")
	// ErrEmptySession is returned when Set receives a session without credentials.
	ErrEmptySession = errors.New("cannot store empty session")
	// ErrInvalidKey is returned when an encryption key has the wrong length.
	ErrInvalidKey = errors.New("encryption key must be 32 bytes")
	// ErrDecryptionFailed is returned when a stored record cannot be decrypted,
	// typically after a key change or file corruption.
	ErrDecryptionFailed = errors.New("failed to decrypt stored session")
	// ErrStoreFailed wraps backend I/O failures.
	ErrStoreFailed = errors.New("session store operation failed")
)
