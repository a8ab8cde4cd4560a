// Package guard owns the lifetime of one authenticated session.
//
// After a successful login, a Guard ties together the moving parts that
// keep the session alive and notice when it should die: the refreshing
// HTTP transport, the idle timeout state machine, and the revocation
// poller (plus an optional websocket push listener). Every way a session
// can terminate converges on a single idempotent End with a
// machine-readable Reason, so the application handles logout in exactly
// one place:
//
//	g, err := guard.New(client, store,
//		guard.WithEndHandler(func(reason guard.Reason) {
//			ui.ShowLogin(reason)
//		}),
//		guard.WithWarningHandler(func(remaining int) {
//			ui.ShowTimeoutWarning(remaining)
//		}),
//	)
//	if err != nil {
//		return err
//	}
//	if err := g.Start(ctx); err != nil {
//		return err
//	}
//
//	resp, err := g.HTTPClient().Do(req) // tokens attached and refreshed
//	g.Activity()                        // on user input
//
// Start fetches the user's idle timeout preference once. If the fetch
// fails the timer stays unarmed rather than guessing a timeout, and the
// revocation loops run regardless.
//
// End stops the loops, clears the credential store, and fires the end
// handler once. Concurrent terminal events race safely; the first reason
// wins and the rest are no-ops.
package guard
