package fingerprint

import "errors"

// options configures fingerprint generation behavior.
type options struct {
	// includePlatform includes runtime.GOOS and runtime.GOARCH.
	// Default: true
	includePlatform bool

	// includeHostname includes the machine hostname.
	// Hostnames are stable on workstations but may rotate in container
	// environments; disable there.
	// Default: true
	includeHostname bool

	// includeUsername includes the current OS username.
	// Default: false
	includeUsername bool
}

// Option is a functional option for configuring fingerprint generation.
type Option func(*options)

// WithUsername includes the current OS username in the fingerprint.
// Distinguishes sessions of different users sharing one machine.
func WithUsername() Option {
	return func(o *options) {
		o.includeUsername = true
	}
}

// WithoutHostname excludes the hostname from the fingerprint.
// Use in container environments where hostnames change on every restart.
func WithoutHostname() Option {
	return func(o *options) {
		o.includeHostname = false
	}
}

// WithoutPlatform excludes OS and architecture from the fingerprint.
func WithoutPlatform() Option {
	return func(o *options) {
		o.includePlatform = false
	}
}

// defaultOptions returns the default fingerprint configuration.
func defaultOptions() *options {
	return &options{
		includePlatform: true,
		includeHostname: true,
		includeUsername: false,
	}
}

func applyOptions(opts ...Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Validation errors that can be checked with errors.Is()
var (
	// ErrInvalidFingerprint indicates the stored fingerprint has invalid format.
	ErrInvalidFingerprint = errors.New("invalid fingerprint format")

	// ErrMismatch indicates the stored fingerprint was generated on a
	// different device or with different options.
	ErrMismatch = errors.New("fingerprint mismatch")
)
