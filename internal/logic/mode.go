package logic

import "time"

// OverrideActive reports whether the streaming feed still owns the canvas:
// true while now is less than window after the last frame.
// A zero lastFrame means no frame has ever arrived.
func OverrideActive(now, lastFrame time.Time, window time.Duration) bool {
	if lastFrame.IsZero() {
		return false
	}
	return now.Sub(lastFrame) < window
}

// NextMode is the coordinator's transition function. A frame arriving sets
// lastFrame to now, which always yields ModeOverride; once the window has
// elapsed without frames the clock takes over again. There is no terminal
// state.
func NextMode(current Mode, now, lastFrame time.Time, window time.Duration) Mode {
	if OverrideActive(now, lastFrame, window) {
		return ModeOverride
	}
	if current == ModeOverride {
		return ModeClock
	}
	return current
}
