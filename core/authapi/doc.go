// Package authapi is the typed client for the session/auth backend.
//
// The backend is an external collaborator reachable through six operations:
// login, force-login, refresh, validate-session, logout, and settings fetch.
// This package owns the wire shapes and translates the backend's HTTP status
// contract into a small error taxonomy, so the rest of the library never
// touches status codes:
//
//   - Business rejections (ErrInvalidCredentials, ErrUnverifiedAccount,
//     ErrAccountLocked, ErrAccountDeleted) surface on the login form and
//     never trigger credential clearing.
//   - ErrUnauthorized means the presented credential is expired or revoked.
//   - ErrTransport wraps network-level failures, which callers treat as
//     transient or fatal depending on the operation.
//   - A session conflict is NOT an error: Login returns a LoginResult whose
//     Conflict field carries the other device's description.
//
// # Basic Usage
//
//	client, err := authapi.New("https://api.example.com",
//		authapi.WithDeviceIdentity(fingerprint.Generate(), fingerprint.Describe()),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := client.Login(ctx, email, password)
//	switch {
//	case errors.Is(err, authapi.ErrInvalidCredentials):
//		// show "wrong password" on the form
//	case err != nil:
//		// transient failure, show generic error
//	case result.Conflict != nil:
//		// ask the user whether to evict the other device
//	default:
//		// result.Credentials is set
//	}
package authapi
