// Package revocation detects that the current session was invalidated
// out-of-band, typically by a force-login on another device.
//
// The Poller asks the backend "is my refresh credential still valid?" on a
// fixed interval. The verdict contract is asymmetric by design:
//
//   - Unauthorized is authoritative: clear the credential store and fire
//     the revoked handler immediately, exactly once, no retry.
//   - Anything else (network error, 5xx) is transient: ignore it and let
//     the next tick retry. A flaky network must never log anyone out.
//
// This poll is the only path by which a device learns it was evicted; it
// runs for the whole lifetime of an authenticated context, independent of
// the idle timer.
//
// # Basic Usage
//
//	poller, err := revocation.NewPoller(apiClient, store,
//		revocation.WithInterval(5*time.Second),
//		revocation.WithRevokedHandler(func() {
//			app.RedirectToSignIn("session_revoked")
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	go poller.Start(ctx) // or eg.Go(poller.Run(ctx))
//	defer poller.Stop()
//
// # Push Delivery
//
// Listener consumes the same signal over a websocket channel, trading the
// poll delay for immediate delivery. It preserves the identical
// "unauthorized = terminate now, no retry" contract and reconnects on
// transport failures. Run it alongside the poller, not instead of it: the
// poller catches pushes lost to a dead connection.
package revocation
