// Package config loads the daemon configuration from built-in defaults, an
// optional YAML file and CLOCK_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata" // the board has no zoneinfo

	"github.com/caarlos0/env"
	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/sweeney/led-clock/internal/gpio"
	"github.com/sweeney/led-clock/internal/logic"
	"github.com/sweeney/led-clock/internal/mqtt"
	"github.com/sweeney/led-clock/internal/override"
	"github.com/sweeney/led-clock/internal/strip"
	"github.com/sweeney/led-clock/internal/timebase"
)

// Heartbeat sources.
const (
	HeartbeatTicker = "ticker"
	HeartbeatGPIO   = "gpio"
)

// Config is the full daemon configuration.
type Config struct {
	Broker            string        `yaml:"broker" env:"CLOCK_BROKER"`
	Username          string        `yaml:"username" env:"CLOCK_MQTT_USERNAME"`
	Password          string        `yaml:"password" env:"CLOCK_MQTT_PASSWORD"`
	ClientID          string        `yaml:"client_id" env:"CLOCK_MQTT_CLIENT_ID"`
	TopicPrefix       string        `yaml:"topic_prefix" env:"CLOCK_TOPIC_PREFIX"`
	ReconnectInterval time.Duration `yaml:"reconnect_interval" env:"CLOCK_RECONNECT_INTERVAL"`
	KeepAlive         time.Duration `yaml:"keep_alive" env:"CLOCK_KEEP_ALIVE"`

	E131Enabled   bool   `yaml:"e131_enabled" env:"CLOCK_E131_ENABLED"`
	E131Universe  int    `yaml:"e131_universe" env:"CLOCK_E131_UNIVERSE"`
	E131Interface string `yaml:"e131_interface" env:"CLOCK_E131_INTERFACE"`

	OverrideWindow  time.Duration `yaml:"override_window" env:"CLOCK_OVERRIDE_WINDOW"`
	Heartbeat       time.Duration `yaml:"heartbeat" env:"CLOCK_HEARTBEAT"`
	HeartbeatSource string        `yaml:"heartbeat_source" env:"CLOCK_HEARTBEAT_SOURCE"`
	HeartbeatChip   string        `yaml:"heartbeat_chip" env:"CLOCK_HEARTBEAT_CHIP"`
	HeartbeatPin    int           `yaml:"heartbeat_pin" env:"CLOCK_HEARTBEAT_PIN"`
	Timezone        string        `yaml:"timezone" env:"CLOCK_TIMEZONE"`
	SyncTimeout     time.Duration `yaml:"sync_timeout" env:"CLOCK_SYNC_TIMEOUT"`
	SyncSettle      time.Duration `yaml:"sync_settle" env:"CLOCK_SYNC_SETTLE"`

	StripDriver string `yaml:"strip_driver" env:"CLOCK_STRIP_DRIVER"`
	SPIPort     string `yaml:"spi_port" env:"CLOCK_SPI_PORT"`
	Splash      bool   `yaml:"splash" env:"CLOCK_SPLASH"`

	HTTPAddr string `yaml:"http_addr" env:"CLOCK_HTTP_ADDR"`
	LogLevel string `yaml:"log_level" env:"CLOCK_LOG_LEVEL"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Broker:            "tcp://mqtt.esrv.center:1883",
		Username:          "vbnet",
		Password:          "vbnet",
		ClientID:          defaultClientID(),
		TopicPrefix:       mqtt.DefaultTopicPrefix,
		ReconnectInterval: 5 * time.Second,
		KeepAlive:         10 * time.Second,

		E131Enabled:  true,
		E131Universe: 1,

		OverrideWindow:  logic.DefaultOverrideWindow,
		Heartbeat:       timebase.DefaultPeriod,
		HeartbeatSource: HeartbeatTicker,
		HeartbeatChip:   gpio.DefaultChip,
		HeartbeatPin:    gpio.DefaultPin,
		Timezone:        "Europe/Berlin",
		SyncTimeout:     timebase.DefaultSyncOptions.Timeout,
		SyncSettle:      timebase.DefaultSyncOptions.Settle,

		StripDriver: strip.DriverSPI,
		Splash:      true,

		HTTPAddr: ":8080",
		LogLevel: "info",
	}
}

// defaultClientID keeps several clocks on one broker from kicking each other off.
func defaultClientID() string {
	return "led-clock-" + uuid.NewString()[:8]
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.LoadFile(path); err != nil {
			return cfg, err
		}
	}
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// LoadFile overlays the YAML file at path onto c. Keys absent from the file
// keep their current value.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	if c.Broker == "" {
		errs = append(errs, errors.New("broker must not be empty"))
	}
	if c.ReconnectInterval <= 0 {
		errs = append(errs, errors.New("reconnect_interval must be positive"))
	}
	if c.E131Universe < override.MinUniverse || c.E131Universe > override.MaxUniverse {
		errs = append(errs, fmt.Errorf("e131_universe %d out of range %d..%d",
			c.E131Universe, override.MinUniverse, override.MaxUniverse))
	}
	if c.OverrideWindow <= 0 {
		errs = append(errs, errors.New("override_window must be positive"))
	}
	if c.Heartbeat <= 0 {
		errs = append(errs, errors.New("heartbeat must be positive"))
	}
	if c.SyncTimeout < 0 || c.SyncSettle < 0 {
		errs = append(errs, errors.New("sync_timeout and sync_settle must not be negative"))
	}
	switch c.HeartbeatSource {
	case HeartbeatTicker, HeartbeatGPIO:
	default:
		errs = append(errs, fmt.Errorf("unknown heartbeat_source %q", c.HeartbeatSource))
	}
	switch c.StripDriver {
	case strip.DriverSPI, strip.DriverNone:
	default:
		errs = append(errs, fmt.Errorf("unknown strip_driver %q", c.StripDriver))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("timezone: %w", err))
	}
	return errors.Join(errs...)
}

// Location returns the display time zone. Call Validate first.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Password != "" {
		c.Password = "********"
	}
	return c
}

// YAML renders the redacted configuration.
func (c Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
