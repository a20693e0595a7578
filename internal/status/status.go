// Package status provides a thread-safe status tracker for the led-clock daemon.
// It is written by the coordinator loop and read by HTTP handlers.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/led-clock/internal/canvas"
	"github.com/sweeney/led-clock/internal/logic"
)

// NetworkInfo contains network state as reported by pi-helper.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Broker           string
	TopicPrefix      string
	E131Enabled      bool
	Universe         int
	OverrideWindowMs int64
	HeartbeatMs      int64
	HeartbeatSource  string
	Timezone         string
	StripDriver      string
	HTTPAddr         string
}

// Counts are cumulative coordinator and receiver counters.
type Counts struct {
	Frames         uint64 // frames drawn
	DroppedFrames  uint64 // frames overwritten before they were drawn
	Rejected       uint64 // packets that were not E1.31 data
	Stale          uint64 // packets discarded as out of sequence
	Renders        uint64
	Publishes      uint64
	PublishErrors  uint64
	Commands       uint64
	ColorFallbacks uint64
	IgnoredRenders uint64 // render commands received during override
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type and safe to use after the lock is released.
type Snapshot struct {
	Mode          logic.Mode
	DisplayedTime string
	Colors        logic.Colors
	Counts        Counts
	LastFrame     time.Time
	SyncDegraded  bool
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
	Pixels        []canvas.Color
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
	now  func() time.Time
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
			Colors:    logic.DefaultColors(),
		},
		now: time.Now,
	}
}

// Update records the coordinator's view after a loop iteration.
func (t *Tracker) Update(mode logic.Mode, displayed string, colors logic.Colors, lastFrame time.Time, counts Counts) {
	t.mu.Lock()
	t.snap.Mode = mode
	t.snap.DisplayedTime = displayed
	t.snap.Colors = colors
	t.snap.LastFrame = lastFrame
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetPixels stores a copy of the canvas last pushed to the strip.
func (t *Tracker) SetPixels(c *canvas.Canvas) {
	px := c.Pixels()
	t.mu.Lock()
	t.snap.Pixels = px
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetSyncDegraded flags that the clock runs on unsynchronized time.
func (t *Tracker) SetSyncDegraded(degraded bool) {
	t.mu.Lock()
	t.snap.SyncDegraded = degraded
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	if s.Pixels != nil {
		s.Pixels = append([]canvas.Color(nil), s.Pixels...)
	}
	t.mu.RUnlock()
	s.Now = t.now()
	return s
}
