package logic

import "github.com/sweeney/led-clock/internal/canvas"

// DefaultFadeStep is the per-render fade applied to the seconds ring.
const DefaultFadeStep = 3

// Renderer draws the clock face onto a canvas.
type Renderer struct {
	// FadeStep dims the whole seconds ring after the current second is lit.
	// Zero disables the trailing fade.
	FadeStep uint8
}

// NewRenderer returns a Renderer with the default trailing fade.
func NewRenderer() Renderer {
	return Renderer{FadeStep: DefaultFadeStep}
}

// Render writes the digits, seconds ring and colon for state into c.
// Digit cells and colon are fully redrawn; the ring keeps its previous
// contents and is faded, so calls must come at a regular cadence.
func (r Renderer) Render(c *canvas.Canvas, state ClockState, colors Colors, blink bool) {
	digits := [canvas.DigitCells]int{
		state.Hour / 10, state.Hour % 10,
		state.Minute / 10, state.Minute % 10,
		state.Second / 10, state.Second % 10,
	}
	for pos, d := range digits {
		drawDigit(c, pos, d, colors.Digits)
	}

	drawSeconds(c, state.Second, colors)
	if r.FadeStep > 0 {
		c.FadeZone(canvas.Ring, r.FadeStep)
	}

	if blink {
		c.FillZone(canvas.Colon, colors.Colon)
	} else {
		c.FillZone(canvas.Colon, canvas.Black)
	}
}

func drawDigit(c *canvas.Canvas, pos, d int, lit canvas.Color) {
	cell := canvas.DigitCell(pos)
	for i, on := range Segments(d) {
		if on {
			c.SetZoneIndex(cell, i, lit)
		} else {
			c.SetZoneIndex(cell, i, canvas.Black)
		}
	}
}

func drawSeconds(c *canvas.Canvas, second int, colors Colors) {
	col := colors.Seconds
	if IsFiveSecondMark(second) {
		col = colors.Seconds5
	}
	c.SetZoneIndex(canvas.Ring, SecondLED(second), col)
}

// SecondLED returns the ring pixel for the second that just completed.
func SecondLED(second int) int {
	return (second + 59) % 60
}

// IsFiveSecondMark reports whether second uses the multiple-of-five color.
func IsFiveSecondMark(second int) bool {
	return second%5 == 0
}
