package canvas

import "testing"

func TestZonesDoNotOverlap(t *testing.T) {
	owner := make([]string, NumPixels)
	for _, z := range Zones() {
		for i := z.Start; i < z.End(); i++ {
			if owner[i] != "" {
				t.Fatalf("pixel %d in both %s and %s", i, owner[i], z.Name)
			}
			owner[i] = z.Name
		}
	}
	for i, o := range owner {
		if o == "" {
			t.Errorf("pixel %d belongs to no zone", i)
		}
	}
}

func TestDigitCellBounds(t *testing.T) {
	tests := []struct {
		pos   int
		start int
	}{
		{0, 60}, {1, 74}, {2, 88}, {3, 102}, {4, 116}, {5, 130},
	}
	for _, tt := range tests {
		z := DigitCell(tt.pos)
		if z.Start != tt.start || z.Len != 14 {
			t.Errorf("cell %d: got [%d,+%d), want [%d,+14)", tt.pos, z.Start, z.Len, tt.start)
		}
	}
	if DigitCell(5).End() != ColonOffset {
		t.Errorf("last digit cell should end at colon offset %d, got %d", ColonOffset, DigitCell(5).End())
	}
}

func TestFromUint32(t *testing.T) {
	c := FromUint32(0x12ABEF)
	if c != (Color{R: 0x12, G: 0xAB, B: 0xEF}) {
		t.Errorf("unexpected color %+v", c)
	}
	if c.Uint32() != 0x12ABEF {
		t.Errorf("Uint32: got %06X", c.Uint32())
	}
	if c.Hex() != "12ABEF" {
		t.Errorf("Hex: got %s", c.Hex())
	}
	if FromUint32(0xFF00FF00) != (Color{R: 0, G: 0xFF, B: 0}) {
		t.Errorf("bits above 24 should be ignored")
	}
}

func TestFadeZone(t *testing.T) {
	c := New()
	c.Fill(Color{R: 255, G: 100, B: 0})
	c.FadeZone(Ring, 3)

	got := c.At(10)
	want := Color{R: 252, G: 98, B: 0}
	if got != want {
		t.Errorf("faded ring pixel: got %+v, want %+v", got, want)
	}
	if c.At(DigitOffset) != (Color{R: 255, G: 100, B: 0}) {
		t.Error("fade must not touch pixels outside the zone")
	}
}

func TestFadeReachesBlack(t *testing.T) {
	c := New()
	c.FillZone(Ring, Color{R: 255, G: 255, B: 255})
	for i := 0; i < 255; i++ {
		c.FadeZone(Ring, 1)
	}
	for i := 0; i < 255*2; i++ {
		c.FadeZone(Ring, 3)
	}
	if c.At(0) != Black {
		t.Errorf("expected ring to fade to black, got %+v", c.At(0))
	}
}

func TestLoadRGBShortFrame(t *testing.T) {
	c := New()
	c.Fill(Color{R: 9, G: 9, B: 9})

	n := c.LoadRGB([]byte{1, 2, 3, 4, 5, 6, 7})
	if n != 2 {
		t.Fatalf("expected 2 pixels loaded, got %d", n)
	}
	if c.At(0) != (Color{1, 2, 3}) || c.At(1) != (Color{4, 5, 6}) {
		t.Errorf("unexpected pixels %+v %+v", c.At(0), c.At(1))
	}
	if c.At(2) != Black || c.At(NumPixels-1) != Black {
		t.Error("pixels not covered by the frame should be black")
	}
}

func TestLoadRGBLongFrame(t *testing.T) {
	c := New()
	data := make([]byte, (NumPixels+10)*3)
	for i := range data {
		data[i] = 7
	}
	if n := c.LoadRGB(data); n != NumPixels {
		t.Errorf("expected %d pixels, got %d", NumPixels, n)
	}
	if c.At(NumPixels-1) != (Color{7, 7, 7}) {
		t.Errorf("last pixel: got %+v", c.At(NumPixels-1))
	}
}

func TestBytesRoundTrip(t *testing.T) {
	c := New()
	c.Set(0, Color{1, 2, 3})
	c.Set(NumPixels-1, Color{4, 5, 6})

	b := c.Bytes()
	if len(b) != NumPixels*3 {
		t.Fatalf("expected %d bytes, got %d", NumPixels*3, len(b))
	}

	d := New()
	d.LoadRGB(b)
	if d.Pixels()[0] != (Color{1, 2, 3}) || d.At(NumPixels-1) != (Color{4, 5, 6}) {
		t.Error("LoadRGB(Bytes()) should reproduce the canvas")
	}
}

func TestSetZoneIndexPanicsOutsideZone(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for index outside zone")
		}
	}()
	New().SetZoneIndex(Colon, 4, Black)
}
