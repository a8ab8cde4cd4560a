package revocation

import "errors"

var (
	// ErrNilValidator is returned when no validator is provided.
	ErrNilValidator = errors.New("validator is required")
	// ErrNilStore is returned when no credential store is provided.
	ErrNilStore = errors.New("credential store is required")
	// ErrEmptyURL is returned when the listener is created without a URL.
	ErrEmptyURL = errors.New("listener URL is required")
)
