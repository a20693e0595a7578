// Package logic contains the pure clock rendering and arbitration logic.
// This package has NO external dependencies (no strip, MQTT, network or
// time.Sleep). Time is always injectable via time.Time parameters.
package logic

import (
	"time"

	"github.com/sweeney/led-clock/internal/canvas"
)

// Mode is the coordinator's display mode.
type Mode int

const (
	// ModeClock renders the local wall clock.
	ModeClock Mode = iota
	// ModeOverride hands the canvas to the external streaming feed.
	ModeOverride
)

func (m Mode) String() string {
	switch m {
	case ModeClock:
		return "CLOCK"
	case ModeOverride:
		return "OVERRIDE"
	}
	return "UNKNOWN"
}

// DefaultOverrideWindow is how long an override frame keeps the feed in charge.
const DefaultOverrideWindow = 3000 * time.Millisecond

// Default zone colors.
var (
	DefaultDigits   = canvas.Color{R: 0, G: 255, B: 255}
	DefaultColon    = canvas.Color{R: 255, G: 255, B: 0}
	DefaultSeconds  = canvas.Color{R: 255, G: 0, B: 0}
	DefaultSeconds5 = canvas.Color{R: 0, G: 255, B: 0}
)

// Colors is the mutable per-zone color configuration.
type Colors struct {
	Digits   canvas.Color
	Colon    canvas.Color
	Seconds  canvas.Color
	Seconds5 canvas.Color // seconds that are a multiple of five
}

// DefaultColors returns the hard-coded startup colors.
func DefaultColors() Colors {
	return Colors{
		Digits:   DefaultDigits,
		Colon:    DefaultColon,
		Seconds:  DefaultSeconds,
		Seconds5: DefaultSeconds5,
	}
}

// Reset restores the hard-coded defaults.
func (c *Colors) Reset() {
	*c = DefaultColors()
}

// ClockState is the wall-clock time shown by one render.
type ClockState struct {
	Hour   int
	Minute int
	Second int
}

// ClockStateAt extracts hour, minute and second from t.
func ClockStateAt(t time.Time) ClockState {
	return ClockState{Hour: t.Hour(), Minute: t.Minute(), Second: t.Second()}
}
