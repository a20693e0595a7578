package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/led-clock/internal/canvas"
	"github.com/sweeney/led-clock/internal/status"
)

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
	"hex": func(c canvas.Color) string { return c.Hex() },
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>LED Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.clock { color: green; font-weight: bold; }
.override { color: orange; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
.degraded { color: orange; }
.swatch { display: inline-block; width: 12px; height: 12px; border: 1px solid #ccc; vertical-align: middle; margin-right: 4px; }
.zone { margin: 4px 0; line-height: 0; }
.px { display: inline-block; width: 6px; height: 6px; margin: 0 1px 1px 0; }
</style>
</head>
<body>
<h1>LED Clock</h1>

<h2>Display</h2>
<table>
<tr><th>Mode</th><td class="{{if eq .Mode.String "CLOCK"}}clock{{else}}override{{end}}">{{.Mode}}</td></tr>
<tr><th>Time</th><td>{{if .DisplayedTime}}{{.DisplayedTime}}{{else}}-{{end}}</td></tr>
<tr><th>Time sync</th><td class="{{if .SyncDegraded}}degraded{{end}}">{{if .SyncDegraded}}unsynchronized{{else}}ok{{end}}</td></tr>
{{if not .LastFrame.IsZero}}<tr><th>Last frame</th><td>{{.LastFrame.UTC.Format "2006-01-02T15:04:05.000Z"}}</td></tr>{{end}}
</table>
{{if .Zones}}
<div id="strip">
{{range .Zones}}<div class="zone" title="{{.Name}}">{{range .Pixels}}<span class="px" style="background:#{{.}}"></span>{{end}}</div>
{{end}}
</div>
{{end}}

<h2>Colors</h2>
<table>
<tr><th>Digits</th><td><span class="swatch" style="background:#{{hex .Colors.Digits}}"></span>{{hex .Colors.Digits}}</td></tr>
<tr><th>Colon</th><td><span class="swatch" style="background:#{{hex .Colors.Colon}}"></span>{{hex .Colors.Colon}}</td></tr>
<tr><th>Seconds</th><td><span class="swatch" style="background:#{{hex .Colors.Seconds}}"></span>{{hex .Colors.Seconds}}</td></tr>
<tr><th>Seconds (5s)</th><td><span class="swatch" style="background:#{{hex .Colors.Seconds5}}"></span>{{hex .Colors.Seconds5}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
<tr><th>Topic prefix</th><td>{{.Config.TopicPrefix}}</td></tr>
<tr><th>E1.31</th><td>{{if .Config.E131Enabled}}universe {{.Config.Universe}}{{else}}disabled{{end}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counters</h2>
<table>
<tr><th>Frames</th><td>{{.Counts.Frames}}</td></tr>
<tr><th>Dropped frames</th><td>{{.Counts.DroppedFrames}}</td></tr>
<tr><th>Rejected packets</th><td>{{.Counts.Rejected}}</td></tr>
<tr><th>Stale packets</th><td>{{.Counts.Stale}}</td></tr>
<tr><th>Renders</th><td>{{.Counts.Renders}}</td></tr>
<tr><th>Publishes</th><td>{{.Counts.Publishes}} ({{.Counts.PublishErrors}} failed)</td></tr>
<tr><th>Commands</th><td>{{.Counts.Commands}}</td></tr>
<tr><th>Color fallbacks</th><td>{{.Counts.ColorFallbacks}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Timezone</th><td>{{.Config.Timezone}}</td></tr>
<tr><th>Heartbeat</th><td>{{.Config.HeartbeatMs}}ms ({{.Config.HeartbeatSource}})</td></tr>
<tr><th>Override window</th><td>{{.Config.OverrideWindowMs}}ms</td></tr>
<tr><th>Strip</th><td>{{.Config.StripDriver}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/canvas.json">Canvas</a></p>
</body>
</html>
`

type zoneView struct {
	Name   string
	Pixels []string
}

// zoneViews splits the pushed pixels into the strip's zones.
func zoneViews(px []canvas.Color) []zoneView {
	if len(px) != canvas.NumPixels {
		return nil
	}
	zones := canvas.Zones()
	out := make([]zoneView, 0, len(zones))
	for _, z := range zones {
		v := zoneView{Name: z.Name, Pixels: make([]string, 0, z.Len)}
		for i := z.Start; i < z.End(); i++ {
			v.Pixels = append(v.Pixels, px[i].Hex())
		}
		out = append(out, v)
	}
	return out
}

func renderHTML(w io.Writer, snap status.Snapshot) error {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
		Zones  []zoneView
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Zones:    zoneViews(snap.Pixels),
	}
	return indexTmpl.Execute(w, data)
}
