package mqtt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"go.uber.org/zap"

	"github.com/sweeney/led-clock/internal/logging"
)

var logger = logging.New("mqtt")

// Options configures the broker connection.
type Options struct {
	Broker            string
	ClientID          string
	Username          string
	Password          string
	TopicPrefix       string
	KeepAlive         time.Duration
	ReconnectInterval time.Duration
	ConnectTimeout    time.Duration
}

// RealClient talks to an actual MQTT broker. Connecting is never fatal:
// Run retries at most once per ReconnectInterval for as long as the daemon
// lives, and time notifications published while offline are queued.
type RealClient struct {
	client  paho.Client
	opts    Options
	topics  Topics
	handler CommandHandler

	mu    sync.Mutex
	queue *offlineQueue
}

// NewRealClient creates a client for the given broker. It does not connect;
// call Run.
func NewRealClient(opts Options, handler CommandHandler) *RealClient {
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = 5 * time.Second
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = opts.ReconnectInterval
	}
	c := &RealClient{
		opts:    opts,
		topics:  Topics{Prefix: opts.TopicPrefix},
		handler: handler,
		queue:   newOfflineQueue(),
	}

	po := paho.NewClientOptions().
		AddBroker(opts.Broker).
		SetClientID(opts.ClientID).
		SetUsername(opts.Username).
		SetPassword(opts.Password).
		SetKeepAlive(opts.KeepAlive).
		SetConnectTimeout(opts.ConnectTimeout).
		SetCleanSession(true).
		// Reconnects are driven by Run so that attempts are spaced by
		// ReconnectInterval exactly.
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetWill(c.topics.Status(), PayloadOffline, 1, true).
		SetOnConnectHandler(c.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			logger.With(zap.Error(err)).Warn("Connection to broker lost")
		})

	c.client = paho.NewClient(po)
	return c
}

// Run connects and keeps reconnecting until ctx is done.
func (c *RealClient) Run(ctx context.Context) {
	c.attempt()

	ticker := time.NewTicker(c.opts.ReconnectInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !c.client.IsConnectionOpen() {
				c.attempt()
			}
		}
	}
}

func (c *RealClient) attempt() {
	token := c.client.Connect()
	if !token.WaitTimeout(c.opts.ConnectTimeout) {
		logger.Warnw("Broker connect timed out", "broker", c.opts.Broker)
		return
	}
	if err := token.Error(); err != nil {
		logger.With(zap.Error(err)).Warnw("Broker connect failed", "broker", c.opts.Broker)
	}
}

// onConnect (re)subscribes to commands, announces the clock and replays
// anything queued while offline.
func (c *RealClient) onConnect(client paho.Client) {
	logger.Infow("Connected to broker", "broker", c.opts.Broker, "client_id", c.opts.ClientID)

	filters := make(map[string]byte)
	for _, t := range c.topics.Commands() {
		filters[t] = 0
	}
	token := client.SubscribeMultiple(filters, c.onMessage)
	if token.WaitTimeout(c.opts.ConnectTimeout) && token.Error() != nil {
		logger.With(zap.Error(token.Error())).Error("Subscribe failed")
	}

	client.Publish(c.topics.Status(), 1, true, PayloadOnline)

	pending, replaced := c.takeQueued()
	for _, m := range pending {
		client.Publish(m.topic, m.qos, m.retained, m.payload)
	}
	if len(pending) > 0 {
		logger.Infow("Replayed queued messages", "count", len(pending), "superseded", replaced)
	}
}

func (c *RealClient) takeQueued() ([]bufferedMsg, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.queue.drain()
}

func (c *RealClient) onMessage(_ paho.Client, msg paho.Message) {
	c.dispatch(msg.Topic(), msg.Payload())
}

// dispatch decodes a message and hands it to the command handler.
func (c *RealClient) dispatch(topic string, payload []byte) {
	cmd, ok := c.topics.Decode(topic, payload)
	if !ok {
		logger.Debugw("Ignoring message", "topic", topic)
		return
	}
	logger.Infow("Command received", "topic", topic, "command", cmd.Kind, "payload", cmd.Payload)
	if c.handler != nil {
		c.handler(cmd)
	}
}

// PublishTime sends the displayed time. While disconnected the value is
// queued and the call succeeds.
func (c *RealClient) PublishTime(value string) error {
	msg := bufferedMsg{topic: c.topics.Time(), payload: []byte(value)}
	if !c.client.IsConnectionOpen() {
		c.mu.Lock()
		c.queue.push(msg)
		c.mu.Unlock()
		return nil
	}

	// QoS 0 (at-most-once), not retained
	token := c.client.Publish(msg.topic, msg.qos, msg.retained, msg.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return errors.New("publish timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// IsConnected reports whether the broker connection is up.
func (c *RealClient) IsConnected() bool {
	return c.client.IsConnectionOpen()
}

// Close announces the clock offline and disconnects from the broker.
func (c *RealClient) Close() error {
	if c.client.IsConnectionOpen() {
		token := c.client.Publish(c.topics.Status(), 1, true, PayloadOffline)
		token.WaitTimeout(time.Second)
	}
	c.client.Disconnect(1000) // 1 second timeout
	return nil
}
