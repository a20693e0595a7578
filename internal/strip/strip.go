// Package strip pushes canvas contents to the physical LED strip.
package strip

import (
	"fmt"

	"github.com/sweeney/led-clock/internal/canvas"
)

// Writer pushes a full canvas to the output.
type Writer interface {
	// Show sends every pixel of c to the strip.
	Show(c *canvas.Canvas) error

	// Close blanks the strip where possible and releases the device.
	Close() error
}

// Driver names accepted by Open.
const (
	DriverSPI  = "spi"
	DriverNone = "none"
)

// Open returns the writer for driver.
func Open(driver, spiPort string) (Writer, error) {
	switch driver {
	case DriverSPI:
		return NewSPIWriter(spiPort)
	case DriverNone:
		return Discard{}, nil
	}
	return nil, fmt.Errorf("unknown strip driver %q", driver)
}

// Discard drops every frame. Used when no strip is attached.
type Discard struct{}

// Show does nothing.
func (Discard) Show(*canvas.Canvas) error { return nil }

// Close does nothing.
func (Discard) Close() error { return nil }
