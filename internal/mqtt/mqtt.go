// Package mqtt connects the clock to the MQTT broker: it receives remote
// color/render commands and publishes the displayed time. Abstracted for
// testing.
package mqtt

import (
	"strings"

	"github.com/sweeney/led-clock/internal/logic"
)

// DefaultTopicPrefix is prepended to every topic.
const DefaultTopicPrefix = "stream/uhr/"

// Topic suffixes owned by the clock (commands live in logic).
const (
	TopicTime   = "zeit"
	TopicStatus = "status"
)

// Status payloads published on the status topic.
const (
	PayloadOnline  = "online"
	PayloadOffline = "offline"
)

// Publisher publishes the displayed time to MQTT.
type Publisher interface {
	// PublishTime sends the "HH:MM " notification.
	// Returns error if publishing fails (should not crash the process).
	PublishTime(value string) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// CommandHandler receives decoded remote commands. It is called from the
// MQTT client's goroutine and must not block.
type CommandHandler func(logic.Command)

// Topics builds full topic names from a prefix.
type Topics struct {
	Prefix string
}

// Time is the outbound time notification topic.
func (t Topics) Time() string { return t.Prefix + TopicTime }

// Status is the retained online/offline topic.
func (t Topics) Status() string { return t.Prefix + TopicStatus }

// Commands returns every command topic to subscribe to.
func (t Topics) Commands() []string {
	out := make([]string, 0, len(logic.CommandTopics))
	for _, s := range logic.CommandTopics {
		out = append(out, t.Prefix+s)
	}
	return out
}

// Suffix strips the prefix from topic.
func (t Topics) Suffix(topic string) (string, bool) {
	if !strings.HasPrefix(topic, t.Prefix) {
		return "", false
	}
	return topic[len(t.Prefix):], true
}

// Decode turns an incoming message into a command.
func (t Topics) Decode(topic string, payload []byte) (logic.Command, bool) {
	suffix, ok := t.Suffix(topic)
	if !ok {
		return logic.Command{}, false
	}
	return logic.ParseCommand(suffix, payload)
}
