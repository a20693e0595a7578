// Package gpio provides GPIO edge events with hardware abstraction.
// The real implementation uses the Linux GPIO character device and is used
// to drive the clock heartbeat from an RTC square-wave output: a 1 Hz square
// wave has an edge every 500 ms.
// The fake implementation allows testing without hardware.
package gpio

// EdgeSource delivers edge interrupts from a single input line.
type EdgeSource interface {
	// Start arms edge detection. handler is called from the source's own
	// goroutine for every rising and falling edge and must not block.
	Start(handler func()) error

	// Close releases GPIO resources.
	Close() error
}

// Defaults for the square-wave input.
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 17 // BCM numbering
)
