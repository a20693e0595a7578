package gpio

import (
	"errors"
	"sync"
)

// FakeEdgeSource is a test double whose edges are fired by the test.
type FakeEdgeSource struct {
	mu      sync.Mutex
	handler func()

	// StartError, if set, will be returned by Start.
	StartError error

	// Closed tracks if Close was called.
	Closed bool
}

// NewFakeEdgeSource creates an unarmed FakeEdgeSource.
func NewFakeEdgeSource() *FakeEdgeSource {
	return &FakeEdgeSource{}
}

// Start records the handler.
func (f *FakeEdgeSource) Start(handler func()) error {
	if f.StartError != nil {
		return f.StartError
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = handler
	return nil
}

// Fire delivers n edges to the handler.
func (f *FakeEdgeSource) Fire(n int) error {
	f.mu.Lock()
	h := f.handler
	f.mu.Unlock()
	if h == nil {
		return errors.New("edge source not started")
	}
	for i := 0; i < n; i++ {
		h()
	}
	return nil
}

// Close disarms the source.
func (f *FakeEdgeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handler = nil
	f.Closed = true
	return nil
}
