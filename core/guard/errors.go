package guard

import "errors"

var (
	// ErrNilBackend is returned when no backend client is provided.
	ErrNilBackend = errors.New("guard: backend is required")

	// ErrNilStore is returned when no credential store is provided.
	ErrNilStore = errors.New("guard: credential store is required")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("guard: already started")

	// ErrSessionEnded is returned when Start finds the session terminated
	// before the monitoring loops could launch.
	ErrSessionEnded = errors.New("guard: session already ended")
)
