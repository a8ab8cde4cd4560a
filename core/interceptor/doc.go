// Package interceptor wraps an http.RoundTripper so every outbound request
// carries the current access credential and expired credentials are renewed
// silently.
//
// On a 401 from a non-exempt endpoint the transport exchanges the refresh
// credential for a new token pair, stores it wholesale, and retries the
// original request exactly once. A second 401 is returned unchanged: there
// is no retry loop. If the refresh itself fails, the credential store is
// cleared and the session-end hook fires (hard session end).
//
// Exempt endpoints (login, force-login, password change, re-auth, 2FA) use
// 401 as a business failure; their responses pass through untouched so
// "wrong password" never turns into a refresh attempt.
//
// # Basic Usage
//
//	transport, err := interceptor.New(store, apiClient,
//		interceptor.WithRefreshLead(30*time.Second),
//		interceptor.WithSessionEndHandler(func(err error) {
//			app.RedirectToSignIn("session_expired")
//		}),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	httpClient := transport.Client()
//	resp, err := httpClient.Get("https://api.example.com/dashboard")
//
// # Concurrency
//
// Concurrent requests failing on the same stale credential share a single
// refresh flight (singleflight keyed by the refresh token), so a page worth
// of parallel calls costs one token exchange. Requests with bodies are
// retried only when http.Request.GetBody is available; everything built by
// http.NewRequest with a byte or string reader qualifies.
package interceptor
