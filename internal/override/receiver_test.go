package override

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestMailboxKeepsLatest(t *testing.T) {
	mb := NewMailbox()
	if _, ok := mb.Take(); ok {
		t.Fatal("new mailbox should be empty")
	}

	mb.Put(&Frame{Source: "a"})
	mb.Put(&Frame{Source: "b"})

	f, ok := mb.Take()
	if !ok {
		t.Fatal("expected a frame")
	}
	if f.Source != "b" {
		t.Errorf("expected latest frame, got %q", f.Source)
	}
	if _, ok := mb.Take(); ok {
		t.Error("frame should only be taken once")
	}

	st := mb.Stats()
	if st.Received != 2 || st.Dropped != 1 {
		t.Errorf("stats: got %+v, want received=2 dropped=1", st)
	}
}

func TestMailboxReadyCoalesces(t *testing.T) {
	mb := NewMailbox()
	mb.Put(&Frame{})
	mb.Put(&Frame{})

	select {
	case <-mb.Ready():
	default:
		t.Fatal("expected ready signal")
	}
	select {
	case <-mb.Ready():
		t.Error("ready signals should coalesce")
	default:
	}
}

func TestMailboxConcurrentPut(t *testing.T) {
	mb := NewMailbox()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				mb.Put(&Frame{})
			}
		}()
	}
	wg.Wait()

	st := mb.Stats()
	if st.Received != 800 {
		t.Errorf("expected 800 received, got %d", st.Received)
	}
	if st.Dropped != 799 {
		t.Errorf("expected 799 dropped, got %d", st.Dropped)
	}
}

func newTestReceiver(universe uint16) (*Receiver, *Mailbox) {
	mb := NewMailbox()
	r := NewReceiver(ReceiverConfig{Universe: universe}, mb)
	r.now = func() time.Time { return time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC) }
	return r, mb
}

func TestReceiverHandlePostsFrame(t *testing.T) {
	r, mb := newTestReceiver(1)
	r.handle(encode(Packet{CID: testCID, SourceName: "desk", Sequence: 1, Universe: 1, Data: []byte{10, 20, 30}}))

	f, ok := mb.Take()
	if !ok {
		t.Fatal("expected a frame")
	}
	if len(f.RGB) != 3 || f.RGB[0] != 10 || f.RGB[2] != 30 {
		t.Errorf("unexpected RGB %v", f.RGB)
	}
	if f.Source != "desk" {
		t.Errorf("source: got %q", f.Source)
	}
	if f.Received.IsZero() {
		t.Error("received time should be set")
	}
}

func TestReceiverHandleCopiesData(t *testing.T) {
	r, mb := newTestReceiver(1)
	b := encode(Packet{CID: testCID, Universe: 1, Data: []byte{1, 2, 3}})
	r.handle(b)
	b[headerLen] = 99

	f, _ := mb.Take()
	if f.RGB[0] != 1 {
		t.Error("frame must not alias the read buffer")
	}
}

func TestReceiverHandleFilters(t *testing.T) {
	r, mb := newTestReceiver(1)

	r.handle([]byte("garbage"))
	r.handle(encode(Packet{CID: testCID, Sequence: 1, Universe: 2, Data: []byte{1}}))
	r.handle(encode(Packet{CID: testCID, Sequence: 1, Universe: 1, Options: optionPreview, Data: []byte{1}}))
	r.handle(encode(Packet{CID: testCID, Sequence: 5, Universe: 1, Data: []byte{1}}))
	r.handle(encode(Packet{CID: testCID, Sequence: 4, Universe: 1, Data: []byte{1}}))
	r.handle(encode(Packet{CID: testCID, Sequence: 6, Universe: 1, Options: optionTerminated, Data: []byte{1}}))

	st := r.Stats()
	want := ReceiverStats{Packets: 6, Rejected: 1, OtherUniverse: 1, Preview: 1, Stale: 1, Terminated: 1}
	if st != want {
		t.Errorf("stats: got %+v, want %+v", st, want)
	}
	if got := mb.Stats().Received; got != 1 {
		t.Errorf("expected exactly one frame posted, got %d", got)
	}

	// After termination the source may restart its sequence.
	r.handle(encode(Packet{CID: testCID, Sequence: 0, Universe: 1, Data: []byte{1}}))
	if got := mb.Stats().Received; got != 2 {
		t.Errorf("restarted source should be accepted, got %d frames", got)
	}
}

func TestReceiverListenRejectsUniverse(t *testing.T) {
	r := NewReceiver(ReceiverConfig{Universe: 0}, NewMailbox())
	if err := r.Listen(); err == nil {
		t.Error("expected error for universe 0")
	}
}

func TestReceiverRunWithoutListen(t *testing.T) {
	r := NewReceiver(ReceiverConfig{Universe: 1}, NewMailbox())
	if err := r.Run(context.Background()); err == nil {
		t.Error("expected error when not listening")
	}
}

func TestNewReceiverDefaultAddr(t *testing.T) {
	r := NewReceiver(ReceiverConfig{Universe: 1}, NewMailbox())
	if r.cfg.Addr != ":5568" {
		t.Errorf("default addr: got %q", r.cfg.Addr)
	}
}
