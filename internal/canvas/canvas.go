// Package canvas holds the in-memory pixel buffer that mirrors the LED strip.
// The strip is partitioned into fixed zones: the seconds ring, six 14-segment
// digit cells and the four-pixel colon.
package canvas

import "fmt"

// Strip geometry.
const (
	NumPixels     = 148
	RingOffset    = 0
	RingSize      = 60
	DigitOffset   = 60
	DigitCells    = 6
	SegmentsPer   = 14
	ColonOffset   = 144
	ColonSize     = 4
	BytesPerPixel = 3
)

// Color is an RGB triple.
type Color struct {
	R, G, B uint8
}

// Black is the unlit color.
var Black = Color{}

// FromUint32 converts a 0xRRGGBB value. Bits above 24 are ignored.
func FromUint32(v uint32) Color {
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
}

// Uint32 returns the color as 0xRRGGBB.
func (c Color) Uint32() uint32 {
	return uint32(c.R)<<16 | uint32(c.G)<<8 | uint32(c.B)
}

// Hex returns the color as a six-digit upper-case hex string.
func (c Color) Hex() string {
	return fmt.Sprintf("%06X", c.Uint32())
}

// Scale multiplies each channel by (scale+1)/256.
func (c Color) Scale(scale uint8) Color {
	return Color{R: scale8(c.R, scale), G: scale8(c.G, scale), B: scale8(c.B, scale)}
}

func scale8(v, scale uint8) uint8 {
	return uint8((uint16(v) * (1 + uint16(scale))) >> 8)
}

// Zone is a contiguous index range [Start, Start+Len) of the canvas.
type Zone struct {
	Name  string
	Start int
	Len   int
}

// End returns the first index past the zone.
func (z Zone) End() int { return z.Start + z.Len }

// Fixed zones.
var (
	Ring  = Zone{Name: "ring", Start: RingOffset, Len: RingSize}
	Colon = Zone{Name: "colon", Start: ColonOffset, Len: ColonSize}
)

// DigitCell returns the zone of digit cell pos (0 = hour tens ... 5 = second ones).
func DigitCell(pos int) Zone {
	return Zone{
		Name:  fmt.Sprintf("digit%d", pos),
		Start: DigitOffset + pos*SegmentsPer,
		Len:   SegmentsPer,
	}
}

// Zones returns every zone in strip order.
func Zones() []Zone {
	zones := []Zone{Ring}
	for i := 0; i < DigitCells; i++ {
		zones = append(zones, DigitCell(i))
	}
	return append(zones, Colon)
}

// Canvas is the full-strip pixel buffer. Not safe for concurrent use: the
// coordinator loop is its only writer.
type Canvas struct {
	pix [NumPixels]Color
}

// New returns an all-black canvas.
func New() *Canvas {
	return &Canvas{}
}

// Len returns the number of pixels.
func (c *Canvas) Len() int { return NumPixels }

// At returns pixel i.
func (c *Canvas) At(i int) Color { return c.pix[i] }

// Set sets pixel i.
func (c *Canvas) Set(i int, col Color) { c.pix[i] = col }

// SetZoneIndex sets the pixel at offset i within zone z.
func (c *Canvas) SetZoneIndex(z Zone, i int, col Color) {
	if i < 0 || i >= z.Len {
		panic(fmt.Sprintf("canvas: index %d outside zone %s", i, z.Name))
	}
	c.pix[z.Start+i] = col
}

// FillZone sets every pixel of zone z to col.
func (c *Canvas) FillZone(z Zone, col Color) {
	for i := z.Start; i < z.End(); i++ {
		c.pix[i] = col
	}
}

// Fill sets every pixel to col.
func (c *Canvas) Fill(col Color) {
	for i := range c.pix {
		c.pix[i] = col
	}
}

// Clear sets every pixel to black.
func (c *Canvas) Clear() { c.Fill(Black) }

// FadeZone dims every pixel of zone z toward black by amount/256.
func (c *Canvas) FadeZone(z Zone, amount uint8) {
	scale := 255 - amount
	for i := z.Start; i < z.End(); i++ {
		c.pix[i] = c.pix[i].Scale(scale)
	}
}

// Pixels returns a copy of all pixels in strip order.
func (c *Canvas) Pixels() []Color {
	out := make([]Color, NumPixels)
	copy(out, c.pix[:])
	return out
}

// Bytes returns the canvas as packed R,G,B bytes in strip order.
func (c *Canvas) Bytes() []byte {
	out := make([]byte, 0, NumPixels*BytesPerPixel)
	for _, p := range c.pix {
		out = append(out, p.R, p.G, p.B)
	}
	return out
}

// LoadRGB fills the canvas from packed R,G,B bytes. Pixels not covered by
// data are set to black and bytes beyond the canvas are ignored. It returns
// the number of pixels taken from data.
func (c *Canvas) LoadRGB(data []byte) int {
	n := len(data) / BytesPerPixel
	if n > NumPixels {
		n = NumPixels
	}
	for i := 0; i < n; i++ {
		o := i * BytesPerPixel
		c.pix[i] = Color{R: data[o], G: data[o+1], B: data[o+2]}
	}
	for i := n; i < NumPixels; i++ {
		c.pix[i] = Black
	}
	return n
}
