package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/golang/glog"

	"github.com/sweeney/servo-bridge/internal/logic"
	"github.com/sweeney/servo-bridge/internal/protocol"
	"github.com/sweeney/servo-bridge/internal/status"
)

var pageTmpl = template.Must(template.New("page").Funcs(template.FuncMap{
	"clock":   clock,
	"onoff":   onoff,
	"input":   inputLabel,
	"percent": anglePercent,
}).Parse(pageHTML))

// clock renders d as "3d 04:05:06" (days omitted when zero).
func clock(d time.Duration) string {
	secs := int64(d / time.Second)
	days := secs / 86400
	hms := fmt.Sprintf("%02d:%02d:%02d", secs%86400/3600, secs%3600/60, secs%60)
	if days > 0 {
		return fmt.Sprintf("%dd %s", days, hms)
	}
	return hms
}

func onoff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

func inputLabel(s logic.State) string {
	if s == "" {
		return "UNKNOWN"
	}
	return string(s)
}

func anglePercent(a int) int {
	return a * 100 / protocol.MaxAngle
}

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<meta http-equiv="refresh" content="5">
<title>Servo Bridge</title>
<style>
* { box-sizing: border-box; }
body { font: 14px/1.4 system-ui, sans-serif; background: #f4f4f2; color: #222; margin: 0; padding: 1.5em; }
main { max-width: 720px; margin: 0 auto; }
section { background: #fff; border-radius: 6px; padding: .8em 1.2em; margin-bottom: 1em; }
h1 { margin: 0 0 .6em; font-size: 1.3em; }
h2 { margin: 0 0 .4em; font-size: 1em; text-transform: uppercase; color: #666; }
dl { display: grid; grid-template-columns: 9em 1fr; gap: .25em 1em; margin: 0; }
dt { color: #666; }
dd { margin: 0; font-family: monospace; }
.gauge { background: #e4e4e0; height: .9em; border-radius: 3px; }
.gauge span { display: block; height: 100%; background: #3a7bd5; border-radius: 3px; }
.led { display: inline-block; width: .7em; height: .7em; border-radius: 50%; background: #bbb; }
.lit { background: #2cb34a; }
.ON { color: #2cb34a; font-weight: bold; }
.OFF { color: #999; }
.UNKNOWN { color: #d98a00; }
.down { color: #c33; }
</style>
</head>
<body>
<main>
<h1>Servo Bridge <span class="led{{if .Indicator}} lit{{end}}" title="heartbeat"></span></h1>

<section>
<h2>Servos</h2>
{{if .HasState}}<dl>
{{range $ch, $a := .State.Angles}}<dt>Servo {{$ch}}</dt><dd>{{$a}}&deg; <div class="gauge"><span style="width: {{percent $a}}%"></span></div></dd>
{{end}}</dl>{{else}}<p class="UNKNOWN">no state yet</p>{{end}}
</section>

<section>
<h2>Outputs / Inputs</h2>
<dl>
{{if .HasState}}{{range $ch, $on := .State.Outputs}}<dt>Output {{$ch}}</dt><dd class="{{onoff $on}}">{{onoff $on}}</dd>
{{end}}{{end}}{{range $ch, $s := .Inputs}}<dt>Input {{$ch}}</dt><dd class="{{input $s}}">{{input $s}}</dd>
{{end}}<dt>Inputs ready</dt><dd>{{if .Baselined}}yes{{else}}no{{end}}</dd>
</dl>
</section>

<section>
<h2>Line</h2>
<dl>
<dt>Port</dt><dd>{{.Config.Port}} @ {{.Config.Baud}}{{if .Config.Sim}} (simulated bank){{end}}</dd>
<dt>Frames</dt><dd>{{.Counters.Frames}} ok, {{.Counters.Invalid}} invalid</dd>
<dt>Last command</dt><dd>{{with .LastCommand}}{{.}}{{else}}-{{end}}</dd>
<dt>MQTT</dt><dd{{if not .MQTTConnected}} class="down"{{end}}>{{with .Config.Broker}}{{.}}{{else}}disabled{{end}}{{if .MQTTConnected}} (up){{end}}</dd>
</dl>
</section>

<section>
<h2>Daemon</h2>
<dl>
<dt>Up</dt><dd>{{clock .Up}} since {{.StartTime.UTC.Format "2006-01-02 15:04:05"}} UTC</dd>
<dt>Timing</dt><dd>poll {{.Config.PollMs}}ms, heartbeat {{.Config.HeartbeatMs}}ms, debounce {{.Config.DebounceMs}}ms</dd>
<dt>Report</dt><dd>{{if .Config.ReportMs}}{{.Config.ReportMs}}ms{{else}}off{{end}}</dd>
</dl>
</section>

<p><a href="/index.json">index.json</a> &middot; <a href="/state">state</a></p>
</main>
</body>
</html>
`

type pageData struct {
	status.Snapshot
	Up time.Duration
}

func renderHTML(w io.Writer, snap status.Snapshot) {
	if err := pageTmpl.Execute(w, pageData{Snapshot: snap, Up: snap.Uptime()}); err != nil {
		glog.Warningf("web: render page: %v", err)
	}
}
