package interceptor

import "errors"

var (
	// ErrNilStore is returned when no credential store is provided.
	ErrNilStore = errors.New("credential store is required")
	// ErrNilRefresher is returned when no refresher is provided.
	ErrNilRefresher = errors.New("refresher is required")
)
