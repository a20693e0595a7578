// Package override receives the externally streamed lighting feed (E1.31 /
// streaming ACN over UDP multicast) that takes over the strip while it is
// sending frames.
package override

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"net"

	"github.com/google/uuid"
)

// E1.31 constants.
const (
	Port = 5568

	MinUniverse = 1
	MaxUniverse = 63999

	headerLen     = 126 // root + framing + DMP layers up to the start code
	maxSlots      = 512
	vectorRoot    = 0x00000004
	vectorFraming = 0x00000002
	vectorDMP     = 0x02
	addrTypeDMP   = 0xa1

	optionPreview    = 0x40
	optionTerminated = 0x20
)

var acnPacketID = []byte("ASC-E1.17\x00\x00\x00")

// Decode errors.
var (
	ErrShortPacket  = errors.New("e131: packet too short")
	ErrNotE131      = errors.New("e131: not an ACN data packet")
	ErrBadStartCode = errors.New("e131: non-zero start code")
)

// Packet is a decoded E1.31 data packet.
type Packet struct {
	CID        uuid.UUID
	SourceName string
	Priority   uint8
	Sequence   uint8
	Options    uint8
	Universe   uint16
	// Data holds the DMX slots after the start code.
	Data []byte
}

// Preview reports whether the packet is marked as preview data only.
func (p Packet) Preview() bool { return p.Options&optionPreview != 0 }

// Terminated reports whether the source announced the end of its stream.
func (p Packet) Terminated() bool { return p.Options&optionTerminated != 0 }

// Decode parses an E1.31 data packet. The returned Data aliases b.
func Decode(b []byte) (Packet, error) {
	var p Packet
	if len(b) < headerLen {
		return p, ErrShortPacket
	}
	if binary.BigEndian.Uint16(b[0:2]) != 0x0010 || !bytes.Equal(b[4:16], acnPacketID) {
		return p, ErrNotE131
	}
	if binary.BigEndian.Uint32(b[18:22]) != vectorRoot ||
		binary.BigEndian.Uint32(b[40:44]) != vectorFraming ||
		b[117] != vectorDMP || b[118] != addrTypeDMP {
		return p, ErrNotE131
	}

	cid, err := uuid.FromBytes(b[22:38])
	if err != nil {
		return p, fmt.Errorf("e131: cid: %w", err)
	}
	p.CID = cid
	p.SourceName = string(bytes.TrimRight(b[44:108], "\x00"))
	p.Priority = b[108]
	p.Sequence = b[111]
	p.Options = b[112]
	p.Universe = binary.BigEndian.Uint16(b[113:115])

	// Property value count includes the start code.
	count := int(binary.BigEndian.Uint16(b[123:125]))
	if count < 1 || count > maxSlots+1 {
		return p, fmt.Errorf("e131: property count %d out of range", count)
	}
	if len(b) < headerLen-1+count {
		return p, ErrShortPacket
	}
	if b[125] != 0 {
		return p, ErrBadStartCode
	}
	p.Data = b[headerLen : headerLen-1+count]
	return p, nil
}

// MulticastGroup returns the multicast address E1.31 assigns to universe.
func MulticastGroup(universe uint16) net.IP {
	return net.IPv4(239, 255, byte(universe>>8), byte(universe))
}

// SequenceFilter drops out-of-order packets per source using the E1.31
// rule: a packet is stale if its sequence number is 0 to 19 behind the last
// accepted one.
type SequenceFilter struct {
	last map[uuid.UUID]uint8
}

// NewSequenceFilter returns an empty filter.
func NewSequenceFilter() *SequenceFilter {
	return &SequenceFilter{last: make(map[uuid.UUID]uint8)}
}

// Accept reports whether p is in order and records it if so.
func (f *SequenceFilter) Accept(p Packet) bool {
	last, seen := f.last[p.CID]
	if seen {
		diff := int8(p.Sequence - last)
		if diff <= 0 && diff > -20 {
			return false
		}
	}
	f.last[p.CID] = p.Sequence
	return true
}

// Forget drops the sequence state of a source.
func (f *SequenceFilter) Forget(cid uuid.UUID) {
	delete(f.last, cid)
}
