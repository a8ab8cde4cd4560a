package idletimer

import (
	"io"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/dmitrymomot/sessionguard/core/logger"
)

// State is a named idle-timer state.
type State string

const (
	// StateUnarmed means no timeout preference has been applied yet, or the
	// preference fetch failed. The machine never fires in this state.
	StateUnarmed State = "unarmed"
	// StateDisabled means the user turned idle timeout off (preference 0).
	StateDisabled State = "disabled"
	// StateActive means the session is live and timers are armed.
	StateActive State = "active"
	// StateWarning means the warning grace period is counting down.
	// Activity no longer re-arms the machine; only Continue does.
	StateWarning State = "warning"
	// StateExpired is terminal: the session timed out.
	StateExpired State = "expired"
)

// Machine is the idle-timeout state machine for one authenticated context.
//
// All transitions flow through a single mutex-guarded core, making the
// warning lock invariant (activity cannot silently cancel a warning the
// user never saw) a structural property rather than an emergent one.
// Callbacks are invoked outside the lock, so they may call back into the
// machine freely.
type Machine struct {
	mu    sync.Mutex
	state State

	// generation guards against stale timer fires and stale re-arms:
	// every re-arm, warning entry, or stop bumps it, and a fire or re-arm
	// carrying an old generation is a no-op.
	generation uint64

	timeout       time.Duration // T; 0 while unarmed/disabled
	warningPeriod time.Duration
	tickInterval  time.Duration
	remaining     int
	stopped       bool

	warnTimer *time.Timer
	throttle  rate.Sometimes

	onWarning func(remaining int)
	onTick    func(remaining int)
	onExpire  func()
	log       *slog.Logger
}

// Option configures the Machine.
type Option func(*Machine)

// WithWarningPeriod sets the length of the warning grace period.
// Default is one minute, giving the canonical 60-second countdown.
func WithWarningPeriod(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.warningPeriod = d
		}
	}
}

// WithTickInterval sets the countdown tick resolution. Default is one second.
func WithTickInterval(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.tickInterval = d
		}
	}
}

// WithActivityThrottle sets the minimum time between activity-driven
// re-arms. Default is 30 seconds, so an input burst re-arms the timers at
// most once per window instead of rebuilding them per event.
func WithActivityThrottle(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.throttle = rate.Sometimes{Interval: d}
		}
	}
}

// WithWarningHandler registers the callback fired on entering the warning
// state, carrying the initial countdown value.
func WithWarningHandler(fn func(remaining int)) Option {
	return func(m *Machine) {
		if fn != nil {
			m.onWarning = fn
		}
	}
}

// WithTickHandler registers the per-tick countdown callback.
func WithTickHandler(fn func(remaining int)) Option {
	return func(m *Machine) {
		if fn != nil {
			m.onTick = fn
		}
	}
}

// WithExpireHandler registers the callback fired once on expiry.
func WithExpireHandler(fn func()) Option {
	return func(m *Machine) {
		if fn != nil {
			m.onExpire = fn
		}
	}
}

// WithLogger configures structured logging for state transitions.
func WithLogger(log *slog.Logger) Option {
	return func(m *Machine) {
		if log != nil {
			m.log = log
		}
	}
}

// New creates an unarmed machine. Call Arm with the user's timeout
// preference to start it.
func New(opts ...Option) *Machine {
	m := &Machine{
		state:         StateUnarmed,
		warningPeriod: time.Minute,
		tickInterval:  time.Second,
		throttle:      rate.Sometimes{Interval: 30 * time.Second},
		onWarning:     func(int) {},
		onTick:        func(int) {},
		onExpire:      func() {},
		log:           slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Arm starts (or fully re-arms) the machine with idle timeout T. In-flight
// timers are cancelled first, so a settings change mid-warning restarts
// cleanly. A non-positive timeout disables the machine entirely.
// Arming an expired or stopped machine is a no-op: expiry is terminal for
// a machine instance.
func (m *Machine) Arm(timeout time.Duration) {
	m.mu.Lock()
	if m.stopped || m.state == StateExpired {
		m.mu.Unlock()
		return
	}

	m.cancelTimersLocked()

	if timeout <= 0 {
		m.timeout = 0
		m.setStateLocked(StateDisabled)
		m.mu.Unlock()
		return
	}

	m.timeout = timeout
	gen := m.generation
	m.mu.Unlock()

	m.rearm(gen)
}

// Touch signals qualifying user activity. Re-arms the timers from now, at
// most once per throttle window. Ignored unless the machine is active:
// once the warning has fired, background activity must not silently cancel
// it.
func (m *Machine) Touch() {
	m.mu.Lock()
	if m.stopped || m.state != StateActive {
		m.mu.Unlock()
		return
	}
	// The generation pins this touch to the state it observed. If the
	// warning fires between here and the re-arm, the re-arm carries a
	// stale generation and becomes a no-op instead of cancelling a
	// warning the user already saw.
	gen := m.generation
	m.mu.Unlock()

	m.throttle.Do(func() { m.rearm(gen) })
}

// Continue is the explicit user decision to keep the session alive. It is
// the only transition out of the warning state. Returns true if the
// machine returned to active.
func (m *Machine) Continue() bool {
	m.mu.Lock()
	if m.stopped || m.state != StateWarning {
		m.mu.Unlock()
		return false
	}
	gen := m.generation
	m.mu.Unlock()

	m.rearm(gen)
	return true
}

// Stop tears the machine down. All pending timers are cancelled; a timer
// that already fired becomes a no-op. The machine cannot be restarted.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.stopped = true
	m.cancelTimersLocked()
}

// State returns the current state.
func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Remaining returns the countdown value. Only meaningful in the warning
// state; zero otherwise.
func (m *Machine) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateWarning {
		return 0
	}
	return m.remaining
}

// rearm moves the machine to active and schedules the warning transition
// at T minus the warning period. The caller's generation must still be
// current: a re-arm that lost the race against a warning transition (or
// a newer re-arm) is a no-op. With T inside the warning period there is
// no room for a full grace countdown, so the warning fires immediately
// rather than computing a negative delay.
func (m *Machine) rearm(gen uint64) {
	m.mu.Lock()
	if m.stopped || m.state == StateExpired || m.timeout <= 0 || gen != m.generation {
		m.mu.Unlock()
		return
	}

	m.cancelTimersLocked()
	m.setStateLocked(StateActive)

	gen = m.generation

	warnDelay := m.timeout - m.warningPeriod
	if warnDelay <= 0 {
		m.mu.Unlock()
		m.warn(gen)
		return
	}

	m.warnTimer = time.AfterFunc(warnDelay, func() { m.warn(gen) })
	m.mu.Unlock()
}

// warn transitions active -> warning and starts the countdown.
func (m *Machine) warn(gen uint64) {
	m.mu.Lock()
	if m.stopped || gen != m.generation || m.state != StateActive {
		m.mu.Unlock()
		return
	}

	m.setStateLocked(StateWarning)
	// Entering the warning starts a new timer epoch: activity observed
	// before this transition carries a stale generation and can no longer
	// re-arm.
	m.generation++
	m.remaining = int(m.warningPeriod / m.tickInterval)
	remaining := m.remaining
	onWarning := m.onWarning

	go m.countdown(m.generation)
	m.mu.Unlock()

	onWarning(remaining)
}

// countdown drives the per-tick display callback and the expiry
// transition. It exits as soon as the generation moves on (continue,
// re-arm, or stop), so at most one countdown runs per warning.
func (m *Machine) countdown(gen uint64) {
	ticker := time.NewTicker(m.tickInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		if m.stopped || gen != m.generation || m.state != StateWarning {
			m.mu.Unlock()
			return
		}

		m.remaining--
		remaining := m.remaining
		onTick := m.onTick

		if remaining > 0 {
			m.mu.Unlock()
			onTick(remaining)
			continue
		}

		m.setStateLocked(StateExpired)
		m.cancelTimersLocked()
		onExpire := m.onExpire
		m.mu.Unlock()

		onTick(0)
		onExpire()
		return
	}
}

// cancelTimersLocked bumps the generation and stops pending timers.
// Callers must hold the mutex.
func (m *Machine) cancelTimersLocked() {
	m.generation++
	if m.warnTimer != nil {
		m.warnTimer.Stop()
		m.warnTimer = nil
	}
}

// setStateLocked records a transition. Callers must hold the mutex.
func (m *Machine) setStateLocked(next State) {
	if m.state == next {
		return
	}
	m.log.Debug("idle timer transition",
		logger.Component("idletimer"),
		slog.String("from", string(m.state)),
		logger.State(string(next)),
	)
	m.state = next
}
