package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"os/user"
	"runtime"
	"strings"
)

const (
	fingerprintVersion = "v1:"
	// fingerprintHashLen uses 16 bytes (128 bits) for balance between uniqueness
	// and storage efficiency. SHA-256 provides 256 bits, but 128 bits is sufficient
	// for fingerprinting and reduces storage by 50%.
	fingerprintHashLen = 16
	// fingerprintTotalLen is the total length of a fingerprint string:
	// 3 bytes ("v1:") + 32 bytes (hex encoding of 16 bytes) = 35 bytes
	fingerprintTotalLen = 35
)

// Generate creates a fingerprint for the local device.
// Returns a version-prefixed fingerprint string in format: "v1:hash"
//
// By default the fingerprint covers the operating system, CPU architecture,
// and hostname. These are stable across process restarts, so the same device
// keeps the same fingerprint between sessions. Use functional options to
// customize behavior:
//
//	fp := fingerprint.Generate()                 // uses defaults
//	fp := fingerprint.Generate(WithUsername())   // include OS user
//	fp := fingerprint.Generate(WithoutHostname())
func Generate(opts ...Option) string {
	o := applyOptions(opts...)

	var components []string

	if o.includePlatform {
		components = append(components, runtime.GOOS, runtime.GOARCH)
	}

	if o.includeHostname {
		if host, err := os.Hostname(); err == nil {
			components = append(components, host)
		}
	}

	if o.includeUsername {
		if u, err := user.Current(); err == nil {
			components = append(components, u.Username)
		}
	}

	// Filter out empty components to ensure consistent hashing.
	filtered := make([]string, 0, len(components))
	for _, comp := range components {
		if comp != "" {
			filtered = append(filtered, comp)
		}
	}

	// Join with pipe delimiter to prevent collision attacks where
	// ["ab", "c"] and ["a", "bc"] would otherwise produce the same hash.
	combined := strings.Join(filtered, "|")
	hash := sha256.Sum256([]byte(combined))

	return fingerprintVersion + hex.EncodeToString(hash[:fingerprintHashLen])
}

// Validate compares the current device fingerprint with a stored fingerprint.
// Returns nil if fingerprints match, or ErrMismatch if they don't.
//
// The stored fingerprint should be in format "v1:hash". Invalid formats return
// ErrInvalidFingerprint.
//
// IMPORTANT: Use the same options that were used to generate the stored
// fingerprint. For example, if the stored fingerprint was generated with
// WithUsername(), validate with WithUsername().
func Validate(stored string, opts ...Option) error {
	if !strings.HasPrefix(stored, fingerprintVersion) || len(stored) != fingerprintTotalLen {
		return ErrInvalidFingerprint
	}

	if Generate(opts...) == stored {
		return nil
	}

	return ErrMismatch
}

// Describe returns a short human-readable identifier for the local device,
// suitable for display in session-conflict prompts.
// Examples: "linux/amd64 (build-host)", "darwin/arm64".
func Describe() string {
	platform := runtime.GOOS + "/" + runtime.GOARCH
	if host, err := os.Hostname(); err == nil && host != "" {
		return platform + " (" + host + ")"
	}
	return platform
}
