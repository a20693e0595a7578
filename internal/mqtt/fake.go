package mqtt

import "sync"

// FakePublisher records published time notifications for test assertions.
type FakePublisher struct {
	mu sync.Mutex

	// Times contains every value passed to PublishTime that succeeded.
	Times []string

	// Attempts counts every PublishTime call, including failed ones.
	Attempts int

	// PublishError, if set, will be returned by PublishTime.
	PublishError error

	// Closed tracks if Close was called.
	Closed bool

	// Connected controls the return value of IsConnected.
	Connected bool
}

// NewFakePublisher creates a FakePublisher for testing.
func NewFakePublisher() *FakePublisher {
	return &FakePublisher{}
}

// PublishTime records the value.
func (f *FakePublisher) PublishTime(value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Attempts++
	if f.PublishError != nil {
		return f.PublishError
	}
	f.Times = append(f.Times, value)
	return nil
}

// Close marks the publisher as closed.
func (f *FakePublisher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}

// IsConnected reports whether the fake publisher is "connected".
func (f *FakePublisher) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Connected
}

// Published returns a copy of the recorded values.
func (f *FakePublisher) Published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Times...)
}

// Reset clears recorded values.
func (f *FakePublisher) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Times = nil
	f.Attempts = 0
	f.PublishError = nil
	f.Closed = false
	f.Connected = false
}
