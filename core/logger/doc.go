// Package logger provides typed slog attribute helpers shared by the
// sessionguard components.
//
// All components in this library log through log/slog. The helpers in this
// package keep attribute keys consistent across packages (error, component,
// reason, state, user_id) and are nil-safe: passing a nil error or a zero
// UUID produces an empty attribute that slog silently drops.
//
// Usage:
//
//	log.Info("session terminated",
//		logger.Component("revocation"),
//		logger.Reason("session_revoked"),
//		logger.UserID(sess.UserID),
//	)
//
// Components accept a *slog.Logger via their functional options and default
// to a discard logger, so logging is always optional:
//
//	poller := revocation.NewPoller(api, store,
//		revocation.WithLogger(slog.Default()),
//	)
package logger
