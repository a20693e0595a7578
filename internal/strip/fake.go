package strip

import (
	"sync"

	"github.com/sweeney/led-clock/internal/canvas"
)

// FakeWriter records shown frames for test assertions.
type FakeWriter struct {
	mu sync.Mutex

	// Frames contains a copy of every canvas that was shown.
	Frames [][]canvas.Color

	// ShowError, if set, will be returned by Show (the frame is still recorded).
	ShowError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeWriter creates a FakeWriter for testing.
func NewFakeWriter() *FakeWriter {
	return &FakeWriter{}
}

// Show records a copy of c.
func (f *FakeWriter) Show(c *canvas.Canvas) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Frames = append(f.Frames, c.Pixels())
	return f.ShowError
}

// Close marks the writer as closed.
func (f *FakeWriter) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// Count returns the number of frames shown.
func (f *FakeWriter) Count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Frames)
}

// Last returns the most recent frame, or nil.
func (f *FakeWriter) Last() []canvas.Color {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Frames) == 0 {
		return nil
	}
	return f.Frames[len(f.Frames)-1]
}

// Reset clears recorded frames.
func (f *FakeWriter) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Frames = nil
	f.ShowError = nil
	f.Closed = false
}
