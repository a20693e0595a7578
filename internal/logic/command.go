package logic

import (
	"strings"

	"github.com/sweeney/led-clock/internal/canvas"
)

// Command topic suffixes, relative to the configured topic prefix.
const (
	TopicDigits     = "farbe/digits"
	TopicColon      = "farbe/colon"
	TopicSeconds    = "farbe/seconds"
	TopicSeconds5   = "farbe/seconds5"
	TopicColorReset = "farbe/farbreset"
	TopicRender     = "render"
)

// CommandTopics lists every command suffix the clock subscribes to.
var CommandTopics = []string{
	TopicRender,
	TopicDigits,
	TopicColon,
	TopicSeconds,
	TopicSeconds5,
	TopicColorReset,
}

// CommandKind identifies a remote command.
type CommandKind string

const (
	CmdSetDigits   CommandKind = "SET_DIGITS"
	CmdSetColon    CommandKind = "SET_COLON"
	CmdSetSeconds  CommandKind = "SET_SECONDS"
	CmdSetSeconds5 CommandKind = "SET_SECONDS5"
	CmdResetColors CommandKind = "RESET_COLORS"
	CmdRender      CommandKind = "RENDER"
)

// Command is a decoded remote command.
type Command struct {
	Kind  CommandKind
	Color canvas.Color // set commands only
	// Fallback is true when the payload was not clean hex and Color is the
	// permissive best-effort parse.
	Fallback bool
	Payload  string
}

// ParseCommand decodes a command from its topic suffix and payload.
// It returns false for unknown topics.
func ParseCommand(suffix string, payload []byte) (Command, bool) {
	cmd := Command{Payload: string(payload)}
	switch suffix {
	case TopicDigits:
		cmd.Kind = CmdSetDigits
	case TopicColon:
		cmd.Kind = CmdSetColon
	case TopicSeconds:
		cmd.Kind = CmdSetSeconds
	case TopicSeconds5:
		cmd.Kind = CmdSetSeconds5
	case TopicColorReset:
		cmd.Kind = CmdResetColors
		return cmd, true
	case TopicRender:
		cmd.Kind = CmdRender
		return cmd, true
	default:
		return Command{}, false
	}

	c, ok := ParseHexColor(cmd.Payload)
	cmd.Color = c
	cmd.Fallback = !ok
	return cmd, true
}

// Apply performs cmd against colors. It reports whether the command asks
// for an immediate render.
func Apply(colors *Colors, cmd Command) (render bool) {
	switch cmd.Kind {
	case CmdSetDigits:
		colors.Digits = cmd.Color
	case CmdSetColon:
		colors.Colon = cmd.Color
	case CmdSetSeconds:
		colors.Seconds = cmd.Color
	case CmdSetSeconds5:
		colors.Seconds5 = cmd.Color
	case CmdResetColors:
		colors.Reset()
	case CmdRender:
		return true
	}
	return false
}

// maxLong is where a 32-bit strtol saturates.
const maxLong = 0x7FFFFFFF

// ParseHexColor parses s as 0xRRGGBB the way strtol(s, NULL, 16) would:
// leading blanks and an optional 0x prefix are skipped, the longest run of
// hex digits is used and anything after it is ignored. No digits at all
// yields black. ok is false whenever the input was not one to six clean
// hex digits.
func ParseHexColor(s string) (c canvas.Color, ok bool) {
	t := strings.TrimLeft(s, " \t\r\n\v\f")
	t = strings.TrimPrefix(t, "+")
	if len(t) > 2 && t[0] == '0' && (t[1] == 'x' || t[1] == 'X') && isHex(t[2]) {
		t = t[2:]
	}

	var v uint64
	n := 0
	for n < len(t) && isHex(t[n]) {
		if v <= maxLong {
			v = v<<4 | uint64(hexVal(t[n]))
		}
		n++
	}
	if v > maxLong {
		v = maxLong
	}

	rest := strings.TrimRight(t[n:], " \t\r\n\v\f")
	ok = n > 0 && n <= 6 && rest == ""
	return canvas.FromUint32(uint32(v)), ok
}

func isHex(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) byte {
	switch {
	case b >= '0' && b <= '9':
		return b - '0'
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10
	default:
		return b - 'A' + 10
	}
}
