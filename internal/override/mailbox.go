package override

import (
	"sync"
	"sync/atomic"
	"time"
)

// Frame is one full-strip update from the streaming feed.
type Frame struct {
	// RGB holds packed R,G,B channel values in strip order. It may be
	// shorter or longer than the strip; the consumer bounds it.
	RGB      []byte
	Source   string
	Received time.Time
}

// Mailbox hands the newest frame from the network goroutine to the
// coordinator loop. A frame that is overwritten before it is taken is
// counted as dropped: only the latest frame matters for display.
type Mailbox struct {
	mu      sync.Mutex
	pending *Frame
	ready   chan struct{}

	received atomic.Uint64
	dropped  atomic.Uint64
}

// NewMailbox returns an empty mailbox.
func NewMailbox() *Mailbox {
	return &Mailbox{ready: make(chan struct{}, 1)}
}

// Put stores f, replacing any frame not yet taken. Never blocks.
func (m *Mailbox) Put(f *Frame) {
	m.mu.Lock()
	if m.pending != nil {
		m.dropped.Add(1)
	}
	m.pending = f
	m.mu.Unlock()

	m.received.Add(1)
	select {
	case m.ready <- struct{}{}:
	default:
	}
}

// Take removes and returns the pending frame, if any.
func (m *Mailbox) Take() (*Frame, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.pending
	m.pending = nil
	return f, f != nil
}

// Ready is signalled after Put. Signals coalesce.
func (m *Mailbox) Ready() <-chan struct{} {
	return m.ready
}

// MailboxStats are cumulative counters.
type MailboxStats struct {
	Received uint64
	Dropped  uint64
}

// Stats returns the counters.
func (m *Mailbox) Stats() MailboxStats {
	return MailboxStats{Received: m.received.Load(), Dropped: m.dropped.Load()}
}
