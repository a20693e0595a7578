package override

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/ipv4"

	"github.com/sweeney/led-clock/internal/logging"
)

var logger = logging.New("override")

// ReceiverConfig selects what the receiver listens to.
type ReceiverConfig struct {
	Universe uint16
	// Interface restricts the multicast join to one interface. Empty joins
	// every multicast-capable interface that is up.
	Interface string
	// Addr overrides the listen address (default ":5568").
	Addr string
}

// ReceiverStats are cumulative packet counters.
type ReceiverStats struct {
	Packets       uint64
	Rejected      uint64 // not decodable as E1.31 data
	OtherUniverse uint64
	Stale         uint64 // out of sequence
	Preview       uint64
	Terminated    uint64
}

// Receiver listens for E1.31 packets on one universe and posts the pixel
// data of every accepted packet to a Mailbox.
type Receiver struct {
	cfg     ReceiverConfig
	mailbox *Mailbox
	filter  *SequenceFilter
	now     func() time.Time

	conn *ipv4.PacketConn

	packets       atomic.Uint64
	rejected      atomic.Uint64
	otherUniverse atomic.Uint64
	stale         atomic.Uint64
	preview       atomic.Uint64
	terminated    atomic.Uint64
}

// NewReceiver creates a receiver that feeds mb.
func NewReceiver(cfg ReceiverConfig, mb *Mailbox) *Receiver {
	if cfg.Addr == "" {
		cfg.Addr = fmt.Sprintf(":%d", Port)
	}
	return &Receiver{
		cfg:     cfg,
		mailbox: mb,
		filter:  NewSequenceFilter(),
		now:     time.Now,
	}
}

// Listen opens the UDP socket and joins the universe's multicast group.
func (r *Receiver) Listen() error {
	if r.cfg.Universe < MinUniverse || r.cfg.Universe > MaxUniverse {
		return fmt.Errorf("universe %d out of range", r.cfg.Universe)
	}

	c, err := net.ListenPacket("udp4", r.cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", r.cfg.Addr, err)
	}
	p := ipv4.NewPacketConn(c)

	ifaces, err := r.interfaces()
	if err != nil {
		c.Close()
		return err
	}

	group := &net.UDPAddr{IP: MulticastGroup(r.cfg.Universe)}
	joined := 0
	var errs []error
	for i := range ifaces {
		if err := p.JoinGroup(&ifaces[i], group); err != nil {
			errs = append(errs, fmt.Errorf("join %s on %s: %w", group.IP, ifaces[i].Name, err))
			continue
		}
		joined++
	}
	if joined == 0 {
		c.Close()
		if len(errs) == 0 {
			return errors.New("no multicast interface available")
		}
		return errors.Join(errs...)
	}
	for _, err := range errs {
		logger.With(zap.Error(err)).Warn("Multicast join failed")
	}

	r.conn = p
	logger.Infow("Listening for E1.31 data",
		"universe", r.cfg.Universe, "group", group.IP.String(), "interfaces", joined)
	return nil
}

func (r *Receiver) interfaces() ([]net.Interface, error) {
	if r.cfg.Interface != "" {
		ifi, err := net.InterfaceByName(r.cfg.Interface)
		if err != nil {
			return nil, fmt.Errorf("interface %s: %w", r.cfg.Interface, err)
		}
		return []net.Interface{*ifi}, nil
	}
	all, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("list interfaces: %w", err)
	}
	var out []net.Interface
	for _, ifi := range all {
		if ifi.Flags&net.FlagUp != 0 && ifi.Flags&net.FlagMulticast != 0 {
			out = append(out, ifi)
		}
	}
	return out, nil
}

// Run reads packets until ctx is done. Listen must have succeeded.
func (r *Receiver) Run(ctx context.Context) error {
	if r.conn == nil {
		return errors.New("receiver not listening")
	}
	go func() {
		<-ctx.Done()
		r.conn.Close()
	}()

	buf := make([]byte, 1500)
	for {
		n, _, _, err := r.conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		r.handle(buf[:n])
	}
}

// handle decodes one datagram and posts it if it is a fresh frame for
// our universe.
func (r *Receiver) handle(b []byte) {
	r.packets.Add(1)

	p, err := Decode(b)
	if err != nil {
		r.rejected.Add(1)
		logger.Debugw("Rejected packet", "error", err)
		return
	}
	if p.Universe != r.cfg.Universe {
		r.otherUniverse.Add(1)
		return
	}
	if p.Preview() {
		r.preview.Add(1)
		return
	}
	if p.Terminated() {
		r.terminated.Add(1)
		r.filter.Forget(p.CID)
		logger.Infow("Source terminated stream", "source", p.SourceName, "cid", p.CID.String())
		return
	}
	if !r.filter.Accept(p) {
		r.stale.Add(1)
		return
	}

	rgb := make([]byte, len(p.Data))
	copy(rgb, p.Data)
	r.mailbox.Put(&Frame{RGB: rgb, Source: p.SourceName, Received: r.now()})
}

// Stats returns the packet counters.
func (r *Receiver) Stats() ReceiverStats {
	return ReceiverStats{
		Packets:       r.packets.Load(),
		Rejected:      r.rejected.Load(),
		OtherUniverse: r.otherUniverse.Load(),
		Stale:         r.stale.Load(),
		Preview:       r.preview.Load(),
		Terminated:    r.terminated.Load(),
	}
}
