package web

import (
	"fmt"
	"html/template"
	"io"
	"log"
	"time"

	"github.com/sweeney/motor-speed/internal/status"
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
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>Motor Speed</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.on { color: green; font-weight: bold; }
.off { color: #888; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
.current { font-weight: bold; background: #eef; }
.live-dot { display: inline-block; width: 8px; height: 8px; border-radius: 50%; margin-left: 6px; vertical-align: middle; }
.live-dot.ok { background: green; }
.live-dot.err { background: red; }
.live-dot.pending { background: orange; }
</style>
</head>
<body>
<h1>Motor Speed<span id="live-dot" class="live-dot pending" title="connecting"></span></h1>

<h2>Speed</h2>
<table>
<tr><th>Level</th><td id="speed-label" class="{{if not .LevelSet}}unknown{{else if eq .Level.Duty 0}}off{{else}}on{{end}}">{{if .LevelSet}}{{.Level.Label}}{{else}}UNSET{{end}}</td></tr>
<tr><th>Duty</th><td id="speed-duty">{{if .LevelSet}}{{.Level.Duty}} ({{.Level.DutyPercent}}%){{else}}-{{end}}</td></tr>
<tr><th>Button</th><td id="button">{{if .Pressed}}pressed{{else}}released{{end}}</td></tr>
<tr><th>Ready</th><td id="ready">{{if .Baselined}}yes{{else}}no{{end}}</td></tr>
</table>

<h2>Levels</h2>
<table>
{{$cur := .Level.Index}}{{$set := .LevelSet}}{{range .Levels}}<tr id="level-{{.Index}}"{{if and $set (eq .Index $cur)}} class="current"{{end}}><th>{{.Index}}: {{.Label}}</th><td>{{.Duty}} ({{.DutyPercent}}%)</td></tr>
{{end}}</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td id="mqtt" class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>Counts</h2>
<table>
<tr><th>Presses</th><td id="presses">{{.Counts.Presses}}</td></tr>
<tr><th>Speed changes</th><td id="changes">{{.Counts.Changes}}</td></tr>
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Poll</th><td>{{.Config.PollMs}}ms</td></tr>
<tr><th>Debounce</th><td>{{.Config.DebounceMs}}ms</td></tr>
<tr><th>Edge</th><td>{{.Config.Edge}}{{if .Config.ActiveLow}} (active low){{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> | <a href="/levels.json">Levels</a></p>
<script>
(function() {
  var dot = document.getElementById("live-dot");

  function setDot(cls, title) {
    dot.className = "live-dot " + cls;
    dot.title = title;
  }

  function text(id, value) {
    var el = document.getElementById(id);
    if (el) { el.textContent = value; }
    return el;
  }

  function apply(s) {
    var label = text("speed-label", s.speed.label);
    label.className = s.speed.index < 0 ? "unknown" : s.speed.duty === 0 ? "off" : "on";
    text("speed-duty", s.speed.index < 0 ? "-" : s.speed.duty + " (" + s.speed.duty_percent + "%)");
    text("button", s.pressed ? "pressed" : "released");
    text("ready", s.ready ? "yes" : "no");
    text("presses", s.counts.presses);
    text("changes", s.counts.changes);
    var mqtt = text("mqtt", s.mqtt.connected ? "connected" : "disconnected");
    mqtt.className = s.mqtt.connected ? "connected" : "disconnected";
    var rows = document.querySelectorAll("[id^=level-]");
    for (var i = 0; i < rows.length; i++) {
      rows[i].className = rows[i].id === "level-" + s.speed.index ? "current" : "";
    }
  }

  function connect() {
    var proto = location.protocol === "https:" ? "wss://" : "ws://";
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onopen = function() { setDot("ok", "live"); };
    ws.onmessage = function(e) {
      try { apply(JSON.parse(e.data).status); } catch (err) {}
    };
    ws.onclose = function() {
      setDot("pending", "reconnecting");
      setTimeout(connect, 5000);
    };
    ws.onerror = function() { setDot("err", "error"); };
  }

  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	// Snapshot has Uptime() method but template needs a Duration field.
	data := struct {
		status.Snapshot
		Uptime time.Duration
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
	}
	if err := indexTmpl.Execute(w, data); err != nil {
		log.Printf("web: render index: %v", err)
	}
}
