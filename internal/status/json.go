package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Mode          string       `json:"mode"`
	DisplayedTime string       `json:"displayed_time"`
	LastFrame     string       `json:"last_frame,omitempty"`
	SyncDegraded  bool         `json:"sync_degraded"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	Colors        ColorsJSON   `json:"colors"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// ColorsJSON holds the zone colors as RRGGBB hex.
type ColorsJSON struct {
	Digits   string `json:"digits"`
	Colon    string `json:"colon"`
	Seconds  string `json:"seconds"`
	Seconds5 string `json:"seconds5"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of Counts.
type CountsJSON struct {
	Frames         uint64 `json:"frames"`
	DroppedFrames  uint64 `json:"dropped_frames"`
	Rejected       uint64 `json:"rejected_packets"`
	Stale          uint64 `json:"stale_packets"`
	Renders        uint64 `json:"renders"`
	Publishes      uint64 `json:"publishes"`
	PublishErrors  uint64 `json:"publish_errors"`
	Commands       uint64 `json:"commands"`
	ColorFallbacks uint64 `json:"color_fallbacks"`
	IgnoredRenders uint64 `json:"ignored_renders"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker           string `json:"broker"`
	TopicPrefix      string `json:"topic_prefix"`
	E131Enabled      bool   `json:"e131_enabled"`
	Universe         int    `json:"e131_universe"`
	OverrideWindowMs int64  `json:"override_window_ms"`
	HeartbeatMs      int64  `json:"heartbeat_ms"`
	HeartbeatSource  string `json:"heartbeat_source"`
	Timezone         string `json:"timezone"`
	StripDriver      string `json:"strip_driver"`
	HTTPAddr         string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Mode:          snap.Mode.String(),
		DisplayedTime: snap.DisplayedTime,
		SyncDegraded:  snap.SyncDegraded,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		Colors: ColorsJSON{
			Digits:   snap.Colors.Digits.Hex(),
			Colon:    snap.Colors.Colon.Hex(),
			Seconds:  snap.Colors.Seconds.Hex(),
			Seconds5: snap.Colors.Seconds5.Hex(),
		},
		MQTT: MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Frames:         snap.Counts.Frames,
			DroppedFrames:  snap.Counts.DroppedFrames,
			Rejected:       snap.Counts.Rejected,
			Stale:          snap.Counts.Stale,
			Renders:        snap.Counts.Renders,
			Publishes:      snap.Counts.Publishes,
			PublishErrors:  snap.Counts.PublishErrors,
			Commands:       snap.Counts.Commands,
			ColorFallbacks: snap.Counts.ColorFallbacks,
			IgnoredRenders: snap.Counts.IgnoredRenders,
		},
		Config: ConfigJSON{
			Broker:           snap.Config.Broker,
			TopicPrefix:      snap.Config.TopicPrefix,
			E131Enabled:      snap.Config.E131Enabled,
			Universe:         snap.Config.Universe,
			OverrideWindowMs: snap.Config.OverrideWindowMs,
			HeartbeatMs:      snap.Config.HeartbeatMs,
			HeartbeatSource:  snap.Config.HeartbeatSource,
			Timezone:         snap.Config.Timezone,
			StripDriver:      snap.Config.StripDriver,
			HTTPAddr:         snap.Config.HTTPAddr,
		},
	}
	if !snap.LastFrame.IsZero() {
		inner.LastFrame = snap.LastFrame.UTC().Format(time.RFC3339Nano)
	}
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
	return inner
}

// FormatJSON returns the indented JSON status for the web endpoint.
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// CanvasJSON is the strip contents in strip order.
type CanvasJSON struct {
	Mode   string   `json:"mode"`
	Pixels []string `json:"pixels"`
}

// FormatCanvasJSON returns the last pushed canvas as RRGGBB strings.
func FormatCanvasJSON(snap Snapshot) []byte {
	cj := CanvasJSON{Mode: snap.Mode.String(), Pixels: make([]string, len(snap.Pixels))}
	for i, p := range snap.Pixels {
		cj.Pixels[i] = p.Hex()
	}
	data, _ := json.Marshal(cj)
	return data
}
