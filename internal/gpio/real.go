//go:build linux

package gpio

import (
	"errors"
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealEdgeSource watches a GPIO line using the Linux GPIO character device.
type RealEdgeSource struct {
	chipName string
	pin      int
	chip     *gpiocdev.Chip
	line     *gpiocdev.Line
}

// NewRealEdgeSource prepares an edge source on chip/pin. The line is only
// requested when Start is called.
func NewRealEdgeSource(chip string, pin int) *RealEdgeSource {
	return &RealEdgeSource{chipName: chip, pin: pin}
}

// Start requests the line as an input with both-edge detection.
func (r *RealEdgeSource) Start(handler func()) error {
	chip, err := gpiocdev.NewChip(r.chipName)
	if err != nil {
		return fmt.Errorf("open gpio chip %s: %w", r.chipName, err)
	}

	// RTC square-wave outputs are open drain, so pull the line up.
	line, err := chip.RequestLine(r.pin,
		gpiocdev.AsInput,
		gpiocdev.WithPullUp,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(func(gpiocdev.LineEvent) {
			handler()
		}))
	if err != nil {
		chip.Close()
		return fmt.Errorf("request heartbeat pin %d: %w", r.pin, err)
	}

	r.chip = chip
	r.line = line
	return nil
}

// Close releases GPIO resources.
// Reconfigures the pin to input with pull-down (matching Pi boot defaults)
// before closing.
func (r *RealEdgeSource) Close() error {
	var errs []error

	if r.line != nil {
		if err := r.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure heartbeat pin: %w", err))
		}
		if err := r.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close heartbeat pin: %w", err))
		}
		r.line = nil
	}
	if r.chip != nil {
		if err := r.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
		r.chip = nil
	}

	return errors.Join(errs...)
}
