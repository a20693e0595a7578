package strip

import (
	"errors"
	"fmt"

	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"

	"github.com/sweeney/led-clock/internal/canvas"
	"github.com/sweeney/led-clock/internal/logging"
)

var logger = logging.New("strip")

// SPIWriter drives a WS2812B strip by NRZ-encoding the pixel stream onto
// the SPI MOSI line.
type SPIWriter struct {
	port spi.PortCloser
	dev  *nrzled.Dev
}

// NewSPIWriter opens the SPI port (empty = first available) and prepares
// an NRZ LED device sized for the clock.
func NewSPIWriter(port string) (*SPIWriter, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}

	p, err := spireg.Open(port)
	if err != nil {
		return nil, fmt.Errorf("open spi port %q: %w", port, err)
	}

	opts := nrzled.DefaultOpts
	opts.NumPixels = canvas.NumPixels
	opts.Channels = canvas.BytesPerPixel
	dev, err := nrzled.NewSPI(p, &opts)
	if err != nil {
		p.Close()
		return nil, fmt.Errorf("init nrzled: %w", err)
	}

	logger.Infow("LED strip ready", "port", p.String(), "pixels", opts.NumPixels)
	return &SPIWriter{port: p, dev: dev}, nil
}

// Show writes the canvas to the strip.
func (w *SPIWriter) Show(c *canvas.Canvas) error {
	if _, err := w.dev.Write(c.Bytes()); err != nil {
		return fmt.Errorf("write strip: %w", err)
	}
	return nil
}

// Close turns all pixels off and closes the port.
func (w *SPIWriter) Close() error {
	var errs []error
	if err := w.dev.Halt(); err != nil {
		errs = append(errs, fmt.Errorf("halt strip: %w", err))
	}
	if err := w.port.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close spi port: %w", err))
	}
	return errors.Join(errs...)
}
