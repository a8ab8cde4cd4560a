// Package login drives authentication against the backend, including the
// single-active-session conflict flow.
//
// The backend allows one active session per account. When the user is
// already signed in elsewhere, Login does not fail: it returns a Conflict
// handle carrying a description of the existing session. The application
// presents that offer to the user and resolves it either way:
//
//	sess, conflict, err := negotiator.Login(ctx, email, password)
//	if err != nil {
//		// wrong password, locked account, network failure
//	}
//	if conflict != nil {
//		fmt.Printf("Already signed in on %s (%s). Take over?\n",
//			conflict.Offer.Device, conflict.Offer.Location)
//		if userAgrees {
//			sess, err = conflict.Force(ctx)
//		} else {
//			conflict.Cancel()
//			return
//		}
//	}
//
// The credential store is written only on a successful login or
// force-login. A cancelled conflict, a rejected force, or a business
// rejection leaves whatever the store held before the attempt.
//
// Conflict handles are single-use. Force retains the password until it is
// consumed; Cancel discards it immediately.
package login
