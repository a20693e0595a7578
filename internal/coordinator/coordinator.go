// Package coordinator runs the clock's single cooperative loop. It owns the
// canvas and arbitrates between the local clock face and the streaming
// override feed; every other goroutine talks to it through the heartbeat
// flags, the frame mailbox or the command queue.
package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/led-clock/internal/canvas"
	"github.com/sweeney/led-clock/internal/logging"
	"github.com/sweeney/led-clock/internal/logic"
	"github.com/sweeney/led-clock/internal/mqtt"
	"github.com/sweeney/led-clock/internal/override"
	"github.com/sweeney/led-clock/internal/status"
	"github.com/sweeney/led-clock/internal/strip"
	"github.com/sweeney/led-clock/internal/timebase"
)

var logger = logging.New("coordinator")

// DefaultCommandBuffer is the capacity of the remote command queue.
const DefaultCommandBuffer = 32

// PacketStats exposes receiver counters for the status surface.
type PacketStats interface {
	Stats() override.ReceiverStats
}

// Config wires a Coordinator. Heartbeat, Mailbox, Writer and Publisher are
// required.
type Config struct {
	Heartbeat *timebase.Heartbeat
	Mailbox   *override.Mailbox
	Writer    strip.Writer
	Publisher mqtt.Publisher

	// Optional status consumers.
	Tracker    *status.Tracker
	Connection mqtt.ConnectionStatus
	Packets    PacketStats

	Window        time.Duration    // default logic.DefaultOverrideWindow
	Location      *time.Location   // default time.Local
	Now           func() time.Time // default time.Now
	Renderer      *logic.Renderer  // default logic.NewRenderer()
	CommandBuffer int              // default DefaultCommandBuffer
}

// Coordinator is the display state machine.
type Coordinator struct {
	canvas   *canvas.Canvas
	colors   logic.Colors
	renderer logic.Renderer

	heartbeat *timebase.Heartbeat
	mailbox   *override.Mailbox
	commands  chan logic.Command
	writer    strip.Writer
	publisher mqtt.Publisher

	tracker    *status.Tracker
	connection mqtt.ConnectionStatus
	packets    PacketStats

	now    func() time.Time
	loc    *time.Location
	window time.Duration

	mode      logic.Mode
	lastFrame time.Time
	forced    bool
	debounce  logic.TimeDebouncer
	counts    status.Counts
}

// New creates a Coordinator in ModeClock with the default colors.
func New(cfg Config) *Coordinator {
	c := &Coordinator{
		canvas:     canvas.New(),
		colors:     logic.DefaultColors(),
		renderer:   logic.NewRenderer(),
		heartbeat:  cfg.Heartbeat,
		mailbox:    cfg.Mailbox,
		writer:     cfg.Writer,
		publisher:  cfg.Publisher,
		tracker:    cfg.Tracker,
		connection: cfg.Connection,
		packets:    cfg.Packets,
		now:        cfg.Now,
		loc:        cfg.Location,
		window:     cfg.Window,
		mode:       logic.ModeClock,
	}
	if cfg.Renderer != nil {
		c.renderer = *cfg.Renderer
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.loc == nil {
		c.loc = time.Local
	}
	if c.window <= 0 {
		c.window = logic.DefaultOverrideWindow
	}
	size := cfg.CommandBuffer
	if size <= 0 {
		size = DefaultCommandBuffer
	}
	c.commands = make(chan logic.Command, size)
	return c
}

// Enqueue hands a remote command to the loop. It never blocks and reports
// false when the queue is full and the command was dropped. Safe to call
// from any goroutine.
func (c *Coordinator) Enqueue(cmd logic.Command) bool {
	select {
	case c.commands <- cmd:
		return true
	default:
		logger.Warnw("Command queue full, dropping command", "command", cmd.Kind)
		return false
	}
}

// Mode returns the current display mode.
func (c *Coordinator) Mode() logic.Mode { return c.mode }

// Colors returns the current zone colors.
func (c *Coordinator) Colors() logic.Colors { return c.colors }

// Counts returns the coordinator counters.
func (c *Coordinator) Counts() status.Counts { return c.counts }

// Run loops until ctx is done, sleeping between iterations until the
// heartbeat ticks, a frame arrives or a command is queued.
func (c *Coordinator) Run(ctx context.Context) error {
	logger.Infow("Coordinator started", "window", c.window, "location", c.loc.String())
	for {
		c.Step()
		select {
		case <-ctx.Done():
			logger.Info("Coordinator stopped")
			return nil
		case <-c.heartbeat.Wake():
		case <-c.mailbox.Ready():
		case cmd := <-c.commands:
			c.apply(cmd)
		}
	}
}

// Step runs one loop iteration: pending commands are applied, then a pending
// frame is drawn, otherwise the clock is redrawn if the heartbeat asked for
// it and no override is active.
func (c *Coordinator) Step() {
	c.drainCommands()
	now := c.now()

	if f, ok := c.mailbox.Take(); ok {
		c.drawFrame(f, now)
	} else {
		c.setMode(logic.NextMode(c.mode, now, c.lastFrame, c.window), now)
		if c.mode == logic.ModeClock {
			redraw := c.heartbeat.TakeRedraw()
			if redraw || c.forced {
				c.forced = false
				c.renderClock(now)
			}
		}
	}

	if c.forced && c.mode == logic.ModeOverride {
		c.forced = false
		c.counts.IgnoredRenders++
		logger.Info("Ignoring render command while override is active")
	}

	c.report()
}

func (c *Coordinator) drainCommands() {
	for {
		select {
		case cmd := <-c.commands:
			c.apply(cmd)
		default:
			return
		}
	}
}

func (c *Coordinator) apply(cmd logic.Command) {
	c.counts.Commands++
	if cmd.Fallback {
		c.counts.ColorFallbacks++
		logger.Warnw("Malformed color payload, using best-effort value",
			"command", cmd.Kind, "payload", cmd.Payload, "color", cmd.Color.Hex())
	}
	if logic.Apply(&c.colors, cmd) {
		c.forced = true
		return
	}
	logger.Infow("Colors updated", "command", cmd.Kind,
		"digits", c.colors.Digits.Hex(),
		"colon", c.colors.Colon.Hex(),
		"seconds", c.colors.Seconds.Hex(),
		"seconds5", c.colors.Seconds5.Hex())
}

func (c *Coordinator) drawFrame(f *override.Frame, now time.Time) {
	n := c.canvas.LoadRGB(f.RGB)
	if n < canvas.NumPixels {
		logger.Debugw("Short frame, remaining pixels blacked out", "pixels", n, "source", f.Source)
	}
	c.lastFrame = now
	c.setMode(logic.ModeOverride, now)
	c.counts.Frames++
	c.show()
}

func (c *Coordinator) renderClock(now time.Time) {
	local := now.In(c.loc)
	c.renderer.Render(c.canvas, logic.ClockStateAt(local), c.colors, c.heartbeat.Blink())
	c.counts.Renders++
	c.show()

	value := logic.FormatTime(local)
	if !c.debounce.Changed(value) {
		return
	}
	if err := c.publisher.PublishTime(value); err != nil {
		c.counts.PublishErrors++
		logger.With(zap.Error(err)).Warnw("Failed to publish time", "time", value)
		return
	}
	c.counts.Publishes++
	logger.Debugw("Published time", "time", value)
}

func (c *Coordinator) show() {
	if err := c.writer.Show(c.canvas); err != nil {
		logger.With(zap.Error(err)).Error("Strip write failed")
	}
	if c.tracker != nil {
		c.tracker.SetPixels(c.canvas)
	}
}

func (c *Coordinator) setMode(m logic.Mode, now time.Time) {
	if m == c.mode {
		return
	}
	switch m {
	case logic.ModeOverride:
		logger.Infow("Streaming override active", "from", c.mode)
	case logic.ModeClock:
		logger.Infow("Override expired, resuming clock",
			"idle", now.Sub(c.lastFrame).Truncate(time.Millisecond))
	}
	c.mode = m
}

func (c *Coordinator) report() {
	if c.tracker == nil {
		return
	}
	counts := c.counts
	ms := c.mailbox.Stats()
	counts.DroppedFrames = ms.Dropped
	if c.packets != nil {
		ps := c.packets.Stats()
		counts.Rejected = ps.Rejected
		counts.Stale = ps.Stale
	}
	c.tracker.Update(c.mode, c.debounce.Last(), c.colors, c.lastFrame, counts)
	if c.connection != nil {
		c.tracker.SetMQTTConnected(c.connection.IsConnected())
	}
}

// Splash plays the power-on sequence on the strip, holding each frame for
// its duration. It stops early when ctx is done.
func (c *Coordinator) Splash(ctx context.Context, sleep timebase.Sleeper) bool {
	done := logic.Splash(c.canvas, c.colors, func(cv *canvas.Canvas, hold time.Duration) bool {
		if err := c.writer.Show(cv); err != nil {
			logger.With(zap.Error(err)).Error("Strip write failed during splash")
		}
		return sleep(ctx, hold) == nil
	})
	if c.tracker != nil {
		c.tracker.SetPixels(c.canvas)
	}
	if !done {
		logger.Info("Splash interrupted")
	}
	return done
}
