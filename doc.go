// Package sessionguard provides client-side session lifecycle management
// for Go applications that authenticate against a single-active-session
// backend: daemons, CLIs, and desktop agents that hold a user's tokens
// and must notice, promptly and exactly once, when the session ends.
//
// The library is organized as independent packages that compose through
// small interfaces:
//
//   - core/credentials: token pair storage (memory, encrypted file, Redis)
//     with wholesale writes so readers never observe a torn pair
//   - core/authapi: typed HTTP client for the auth backend
//   - core/interceptor: http.RoundTripper that attaches access tokens and
//     transparently refreshes expired ones, with at most one retry
//   - core/idletimer: idle timeout state machine with a warning countdown
//   - core/revocation: background poller (and optional websocket listener)
//     detecting sessions revoked from another device
//   - core/login: login flow including session conflict negotiation
//   - core/guard: ties the above into one lifecycle with a single
//     idempotent termination path
//
// Most applications interact with core/login to establish a session and
// core/guard to run it; the remaining packages are usable on their own.
package sessionguard
