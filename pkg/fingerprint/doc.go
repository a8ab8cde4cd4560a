// Package fingerprint derives a stable identifier for the local device from
// platform attributes (operating system, architecture, hostname, optionally
// the OS username).
//
// The fingerprint is sent to the auth backend at login so that, when the same
// account signs in from a second device, the backend can describe the first
// device in its conflict response. It is a display and correlation aid, not a
// security boundary.
//
// # Format
//
// Fingerprints are version-prefixed hex strings: "v1:" followed by the first
// 16 bytes of a SHA-256 hash, 35 characters total. The version prefix allows
// the hashing scheme to evolve without invalidating stored values silently.
//
// # Basic Usage
//
//	fp := fingerprint.Generate()
//
//	// Later, detect that a stored session came from this device:
//	if err := fingerprint.Validate(sess.Fingerprint); err != nil {
//		// session was established elsewhere
//	}
//
// Describe returns a human-readable form ("linux/amd64 (build-host)") for
// conflict prompts.
package fingerprint
