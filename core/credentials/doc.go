// Package credentials holds the client's current session record and the
// Store abstraction every other sessionguard component depends on.
//
// The store is deliberately narrow (Get, Set, Clear) and always operates on
// whole Session values. Partial field updates are not expressible through
// the interface, which rules out torn reads where an access token from one
// session pairs with a refresh token from another.
//
// # Backends
//
//   - MemoryStore: in-process, for tests and throwaway sessions
//   - FileStore: durable JSON file with atomic writes, survives restarts;
//     optional XChaCha20-Poly1305 encryption-at-rest
//   - RedisStore: one shared logical session across processes
//
// # Basic Usage
//
//	store, err := credentials.NewFileStore("/var/lib/myapp/session.json",
//		credentials.WithEncryptionKey(key),
//	)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess := credentials.New(userID, access, refresh, fingerprint.Generate())
//	if err := store.Set(ctx, sess); err != nil {
//		log.Fatal(err)
//	}
//
// Every session-terminating path calls Clear. Clear is idempotent, so racing
// terminators (idle expiry vs. revocation poll) cannot corrupt the store.
package credentials
