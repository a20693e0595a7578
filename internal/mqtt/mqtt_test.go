package mqtt

import (
	"errors"
	"testing"

	"github.com/sweeney/led-clock/internal/canvas"
	"github.com/sweeney/led-clock/internal/logic"
)

func TestTopics(t *testing.T) {
	tp := Topics{Prefix: DefaultTopicPrefix}
	if got := tp.Time(); got != "stream/uhr/zeit" {
		t.Errorf("Time() = %q", got)
	}
	if got := tp.Status(); got != "stream/uhr/status" {
		t.Errorf("Status() = %q", got)
	}

	want := map[string]bool{
		"stream/uhr/render":          true,
		"stream/uhr/farbe/digits":    true,
		"stream/uhr/farbe/colon":     true,
		"stream/uhr/farbe/seconds":   true,
		"stream/uhr/farbe/seconds5":  true,
		"stream/uhr/farbe/farbreset": true,
	}
	got := tp.Commands()
	if len(got) != len(want) {
		t.Fatalf("Commands() returned %d topics, want %d", len(got), len(want))
	}
	for _, topic := range got {
		if !want[topic] {
			t.Errorf("unexpected command topic %q", topic)
		}
	}
}

func TestTopicsDecode(t *testing.T) {
	tp := Topics{Prefix: DefaultTopicPrefix}

	tests := []struct {
		topic   string
		payload string
		ok      bool
		kind    logic.CommandKind
		color   canvas.Color
	}{
		{"stream/uhr/farbe/digits", "00FF00", true, logic.CmdSetDigits, canvas.Color{G: 0xFF}},
		{"stream/uhr/farbe/seconds5", "FF0000", true, logic.CmdSetSeconds5, canvas.Color{R: 0xFF}},
		{"stream/uhr/farbe/farbreset", "", true, logic.CmdResetColors, canvas.Color{}},
		{"stream/uhr/render", "x", true, logic.CmdRender, canvas.Color{}},
		{"stream/uhr/zeit", "13:07 ", false, "", canvas.Color{}},
		{"other/farbe/digits", "00FF00", false, "", canvas.Color{}},
		{"stream/uhr/farbe/unknown", "00FF00", false, "", canvas.Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.topic, func(t *testing.T) {
			cmd, ok := tp.Decode(tt.topic, []byte(tt.payload))
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if cmd.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", cmd.Kind, tt.kind)
			}
			if cmd.Color != tt.color {
				t.Errorf("color = %v, want %v", cmd.Color, tt.color)
			}
		})
	}
}

func TestTopicsCustomPrefix(t *testing.T) {
	tp := Topics{Prefix: "home/clock/"}
	if got := tp.Time(); got != "home/clock/zeit" {
		t.Errorf("Time() = %q", got)
	}
	if _, ok := tp.Decode("stream/uhr/render", nil); ok {
		t.Error("default prefix should not match custom prefix")
	}
	if _, ok := tp.Decode("home/clock/render", nil); !ok {
		t.Error("custom prefix render should decode")
	}
}

func TestDispatchCallsHandler(t *testing.T) {
	var got []logic.Command
	c := &RealClient{
		topics:  Topics{Prefix: DefaultTopicPrefix},
		handler: func(cmd logic.Command) { got = append(got, cmd) },
	}

	c.dispatch("stream/uhr/farbe/colon", []byte("0000FF"))
	c.dispatch("stream/uhr/zeit", []byte("ignored"))
	c.dispatch("stream/uhr/farbe/digits", []byte("zz"))

	if len(got) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(got))
	}
	if got[0].Kind != logic.CmdSetColon || got[0].Color != (canvas.Color{B: 0xFF}) {
		t.Errorf("first command = %+v", got[0])
	}
	if !got[1].Fallback || got[1].Color != canvas.Black {
		t.Errorf("malformed payload should fall back to black, got %+v", got[1])
	}
}

func TestDispatchNilHandler(t *testing.T) {
	c := &RealClient{topics: Topics{Prefix: DefaultTopicPrefix}}
	// must not panic
	c.dispatch("stream/uhr/render", nil)
}

func TestTakeQueuedReportsSuperseded(t *testing.T) {
	c := &RealClient{topics: Topics{Prefix: DefaultTopicPrefix}, queue: newOfflineQueue()}
	for _, v := range []string{"13:07 ", "13:08 ", "13:09 "} {
		c.queue.push(bufferedMsg{topic: c.topics.Time(), payload: []byte(v)})
	}

	pending, replaced := c.takeQueued()
	if len(pending) != 1 || string(pending[0].payload) != "13:09 " {
		t.Fatalf("expected only the newest time queued, got %+v", pending)
	}
	if replaced != 2 {
		t.Errorf("superseded: got %d, want 2", replaced)
	}
	if c.queue.len() != 0 {
		t.Error("queue should be empty after replay")
	}
}

func TestFakePublisher(t *testing.T) {
	var p Publisher = NewFakePublisher()
	f := p.(*FakePublisher)

	if err := p.PublishTime("13:07 "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	f.PublishError = errors.New("broker down")
	if err := p.PublishTime("13:08 "); err == nil {
		t.Error("expected error")
	}

	if got := f.Published(); len(got) != 1 || got[0] != "13:07 " {
		t.Errorf("Published() = %v", got)
	}
	if f.Attempts != 2 {
		t.Errorf("Attempts = %d, want 2", f.Attempts)
	}

	var cs ConnectionStatus = f
	if cs.IsConnected() {
		t.Error("fake should start disconnected")
	}
	f.Connected = true
	if !cs.IsConnected() {
		t.Error("expected connected")
	}

	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if !f.Closed {
		t.Error("expected Closed")
	}

	f.Reset()
	if len(f.Times) != 0 || f.Closed || f.Attempts != 0 {
		t.Error("Reset did not clear state")
	}
}
