package logic

import (
	"time"

	"github.com/sweeney/led-clock/internal/canvas"
)

// Splash timing.
const (
	splashWipeStep = 10 * time.Millisecond
	splashHold     = 500 * time.Millisecond
	splashZoneStep = time.Millisecond
	splashFadeStep = time.Millisecond
	splashFades    = 255
)

// SplashFrame receives each startup frame together with how long it should
// stay on the strip. Returning false stops the sequence.
type SplashFrame func(c *canvas.Canvas, hold time.Duration) bool

// Splash plays the power-on sequence into c: a white wipe across the whole
// strip, a wipe of every zone in its configured color and a slow fade of the
// seconds ring. It reports whether the sequence ran to completion.
func Splash(c *canvas.Canvas, colors Colors, emit SplashFrame) bool {
	white := canvas.Color{R: 255, G: 255, B: 255}

	c.Clear()
	for i := 0; i < canvas.NumPixels; i++ {
		c.Set(i, white)
		hold := splashWipeStep
		if i == canvas.NumPixels-1 {
			hold += splashHold
		}
		if !emit(c, hold) {
			return false
		}
	}

	for _, z := range canvas.Zones() {
		col := colors.Digits
		switch z {
		case canvas.Ring:
			col = colors.Seconds
		case canvas.Colon:
			col = colors.Colon
		}
		for i := 0; i < z.Len; i++ {
			c.SetZoneIndex(z, i, col)
			if !emit(c, splashZoneStep) {
				return false
			}
		}
	}

	for i := 0; i < splashFades; i++ {
		c.FadeZone(canvas.Ring, 1)
		if !emit(c, splashFadeStep) {
			return false
		}
	}
	return true
}
