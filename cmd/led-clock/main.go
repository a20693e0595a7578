// Command led-clock drives the 148-pixel LED wall clock: it renders the time,
// yields the strip to an E1.31 stream while one is active and takes color
// commands from MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/sweeney/led-clock/internal/config"
	"github.com/sweeney/led-clock/internal/coordinator"
	"github.com/sweeney/led-clock/internal/gpio"
	"github.com/sweeney/led-clock/internal/logging"
	"github.com/sweeney/led-clock/internal/logic"
	"github.com/sweeney/led-clock/internal/mqtt"
	"github.com/sweeney/led-clock/internal/override"
	"github.com/sweeney/led-clock/internal/status"
	"github.com/sweeney/led-clock/internal/strip"
	"github.com/sweeney/led-clock/internal/timebase"
	"github.com/sweeney/led-clock/internal/web"
)

var logger = logging.New("main")

// networkRefresh is how often pi-helper's network info is re-read.
const networkRefresh = time.Minute

func main() {
	configPath := flag.String("config", "", "YAML configuration file")
	flag.String("http", "", `HTTP status address, overrides config ("off" disables)`)
	flag.String("log-level", "", "Log level, overrides config (debug, info, warn, error)")
	printConfig := flag.Bool("print-config", false, "Print the effective configuration and exit")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.With(zap.Error(err)).Fatal("Failed to load configuration")
	}
	applyFlags(&cfg, setFlags())
	if err := cfg.Validate(); err != nil {
		logger.With(zap.Error(err)).Fatal("Invalid configuration")
	}

	if *printConfig {
		out, err := cfg.YAML()
		if err != nil {
			logger.With(zap.Error(err)).Fatal("Failed to render configuration")
		}
		os.Stdout.Write(out)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.With(zap.Error(err)).Fatal("Fatal error")
	}
}

// setFlags returns the flags given explicitly on the command line.
func setFlags() map[string]string {
	out := make(map[string]string)
	flag.Visit(func(f *flag.Flag) {
		out[f.Name] = f.Value.String()
	})
	return out
}

// applyFlags lets explicit command line flags win over file and environment.
func applyFlags(cfg *config.Config, set map[string]string) {
	if v, ok := set["http"]; ok {
		if v == "off" {
			v = ""
		}
		cfg.HTTPAddr = v
	}
	if v, ok := set["log-level"]; ok {
		cfg.LogLevel = v
	}
}

func run(ctx context.Context, cfg config.Config) error {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	logging.GetLeveler().SetAll(level)

	writer, err := strip.Open(cfg.StripDriver, cfg.SPIPort)
	if err != nil {
		return fmt.Errorf("init strip: %w", err)
	}
	defer writer.Close()

	tracker := status.NewTracker(time.Now(), statusConfig(cfg))
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	heartbeat := timebase.NewHeartbeat()
	mailbox := override.NewMailbox()

	// The MQTT handler runs on paho's goroutine; coord is assigned before
	// the client is started.
	var coord *coordinator.Coordinator
	client := mqtt.NewRealClient(mqtt.Options{
		Broker:            cfg.Broker,
		ClientID:          cfg.ClientID,
		Username:          cfg.Username,
		Password:          cfg.Password,
		TopicPrefix:       cfg.TopicPrefix,
		KeepAlive:         cfg.KeepAlive,
		ReconnectInterval: cfg.ReconnectInterval,
	}, func(cmd logic.Command) {
		coord.Enqueue(cmd)
	})

	var packets coordinator.PacketStats
	var receiver *override.Receiver
	if cfg.E131Enabled {
		receiver = override.NewReceiver(override.ReceiverConfig{
			Universe:  uint16(cfg.E131Universe),
			Interface: cfg.E131Interface,
		}, mailbox)
		if err := receiver.Listen(); err != nil {
			// The clock still works without the stream.
			logger.With(zap.Error(err)).Error("E1.31 receiver unavailable")
			receiver = nil
		} else {
			packets = receiver
		}
	}

	coord = coordinator.New(coordinator.Config{
		Heartbeat:  heartbeat,
		Mailbox:    mailbox,
		Writer:     writer,
		Publisher:  client,
		Tracker:    tracker,
		Connection: client,
		Packets:    packets,
		Window:     cfg.OverrideWindow,
		Location:   cfg.Location(),
	})

	if cfg.Splash {
		coord.Splash(ctx, timebase.Sleep)
	}

	logger.Info("Waiting for time synchronization")
	res, err := timebase.WaitForSync(ctx, timebase.SystemClock{}, timebase.Sleep, timebase.SyncOptions{
		Timeout: cfg.SyncTimeout,
		Settle:  cfg.SyncSettle,
	})
	if err != nil {
		logger.Info("Shutdown requested before time sync")
		return nil
	}
	tracker.SetSyncDegraded(res.Degraded)
	if res.Degraded {
		logger.Warnw("Clock not synchronized, running on local time", "waited", res.Waited)
	} else {
		logger.Infow("Time synchronized", "waited", res.Waited)
	}

	go client.Run(ctx)
	defer client.Close()

	if receiver != nil {
		go func() {
			if err := receiver.Run(ctx); err != nil {
				logger.With(zap.Error(err)).Error("E1.31 receiver stopped")
			}
		}()
	}

	stopHeartbeat := startHeartbeat(ctx, cfg, heartbeat)
	defer stopHeartbeat()

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker)
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.With(zap.Error(err)).Error("HTTP server error")
			}
		}()
		defer srv.Shutdown(context.Background())
		logger.Infow("HTTP status server listening", "addr", cfg.HTTPAddr)
	}

	go refreshNetwork(ctx, tracker, networkRefresh)

	logger.Infow("Started",
		"broker", cfg.Broker,
		"topic_prefix", cfg.TopicPrefix,
		"e131", receiver != nil,
		"universe", cfg.E131Universe,
		"heartbeat", cfg.Heartbeat,
		"heartbeat_source", cfg.HeartbeatSource,
		"timezone", cfg.Timezone,
		"strip", cfg.StripDriver)

	err = coord.Run(ctx)
	logger.Info("Shutting down")
	return err
}

// startHeartbeat arms the configured tick source. The RTC square wave falls
// back to the internal ticker when the GPIO line cannot be requested.
func startHeartbeat(ctx context.Context, cfg config.Config, hb *timebase.Heartbeat) (stop func()) {
	if cfg.HeartbeatSource == config.HeartbeatGPIO {
		src := gpio.NewRealEdgeSource(cfg.HeartbeatChip, cfg.HeartbeatPin)
		stop, err := startEdgeHeartbeat(src, hb)
		if err == nil {
			logger.Infow("Heartbeat from GPIO square wave", "chip", cfg.HeartbeatChip, "pin", cfg.HeartbeatPin)
			return stop
		}
		logger.With(zap.Error(err)).Warn("GPIO heartbeat unavailable, using ticker")
	}
	go timebase.RunTicker(ctx, hb, cfg.Heartbeat)
	return func() {}
}

// startEdgeHeartbeat ticks hb on every edge of src.
func startEdgeHeartbeat(src gpio.EdgeSource, hb *timebase.Heartbeat) (stop func(), err error) {
	if err := src.Start(hb.Tick); err != nil {
		return nil, err
	}
	return func() {
		if err := src.Close(); err != nil {
			logger.With(zap.Error(err)).Warn("GPIO close failed")
		}
	}, nil
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		Broker:           cfg.Broker,
		TopicPrefix:      cfg.TopicPrefix,
		E131Enabled:      cfg.E131Enabled,
		Universe:         cfg.E131Universe,
		OverrideWindowMs: cfg.OverrideWindow.Milliseconds(),
		HeartbeatMs:      cfg.Heartbeat.Milliseconds(),
		HeartbeatSource:  cfg.HeartbeatSource,
		Timezone:         cfg.Timezone,
		StripDriver:      cfg.StripDriver,
		HTTPAddr:         cfg.HTTPAddr,
	}
}

func refreshNetwork(ctx context.Context, tracker *status.Tracker, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
		}
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
