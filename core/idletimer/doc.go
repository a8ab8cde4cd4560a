// Package idletimer implements the idle-timeout state machine for an
// authenticated context.
//
// The machine owns three timers (warning delay, per-second countdown,
// expiry) behind one transition core:
//
//	unarmed ──Arm(T)──▶ active ──T−warning idle──▶ warning ──countdown──▶ expired
//	                      ▲  ▲                        │
//	                      │  └──────── Continue ──────┘
//	                      └─ Touch (throttled, active only)
//
// Touch signals qualifying user activity and re-arms the timers from now,
// but at most once per throttle window (default 30s), so an input burst
// does not rebuild timers per event. Once the warning has fired the
// machine is locked: Touch is ignored and only the explicit Continue call
// returns to active. This closes the race where background activity
// cancels a warning the user never saw.
//
// Arm(0) disables the machine; a machine whose preference could not be
// fetched stays unarmed and never fires. A timeout not longer than the
// warning period enters warning immediately upon arming. Expiry is
// terminal for the machine instance: the owner tears it down and clears
// the session.
//
// # Basic Usage
//
//	machine := idletimer.New(
//		idletimer.WithWarningHandler(func(remaining int) { ui.ShowWarning(remaining) }),
//		idletimer.WithTickHandler(ui.UpdateCountdown),
//		idletimer.WithExpireHandler(func() { guard.End("session_timeout") }),
//	)
//	machine.Arm(time.Duration(settings.SessionTimeoutMinutes) * time.Minute)
//
//	// on every user input event:
//	machine.Touch()
//
//	// when the user clicks "I'm still here":
//	machine.Continue()
package idletimer
