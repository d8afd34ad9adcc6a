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
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Bank          *BankJSON    `json:"bank,omitempty"`
	LastCommand   string       `json:"last_command,omitempty"`
	LastFrameAt   string       `json:"last_frame_at,omitempty"`
	Frames        CountersJSON `json:"frames"`
	Indicator     bool         `json:"indicator"`
	Inputs        []InputJSON  `json:"inputs"`
	Ready         bool         `json:"ready"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Config        ConfigJSON   `json:"config"`
}

// BankJSON is the bank state as carried in the last response frame.
type BankJSON struct {
	Servos  []int `json:"servos"`
	Outputs []int `json:"outputs"`
	Inputs  []int `json:"inputs"`
}

// CountersJSON reports handled lines.
type CountersJSON struct {
	OK      int `json:"ok"`
	Invalid int `json:"invalid"`
}

// InputJSON is the debounced state and transition counts of one input.
type InputJSON struct {
	Channel int    `json:"channel"`
	State   string `json:"state"`
	On      int    `json:"on"`
	Off     int    `json:"off"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Port        string `json:"port"`
	Baud        int    `json:"baud"`
	Sim         bool   `json:"sim"`
	PollMs      int64  `json:"poll_ms"`
	DebounceMs  int64  `json:"debounce_ms"`
	HeartbeatMs int64  `json:"heartbeat_ms"`
	ReportMs    int64  `json:"report_ms"`
	Broker      string `json:"broker"`
	HTTPAddr    string `json:"http_addr"`
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		LastCommand:   snap.LastCommand,
		Frames:        CountersJSON{OK: snap.Counters.Frames, Invalid: snap.Counters.Invalid},
		Indicator:     snap.Indicator,
		Inputs:        buildInputs(snap),
		Ready:         snap.Baselined,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Port:        snap.Config.Port,
			Baud:        snap.Config.Baud,
			Sim:         snap.Config.Sim,
			PollMs:      snap.Config.PollMs,
			DebounceMs:  snap.Config.DebounceMs,
			HeartbeatMs: snap.Config.HeartbeatMs,
			ReportMs:    snap.Config.ReportMs,
			Broker:      snap.Config.Broker,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
	if !snap.LastFrameAt.IsZero() {
		inner.LastFrameAt = snap.LastFrameAt.UTC().Format(time.RFC3339)
	}
	if snap.HasState {
		inner.Bank = &BankJSON{
			Servos:  append([]int(nil), snap.State.Angles[:]...),
			Outputs: levels(snap.State.Outputs[:]),
			Inputs:  levels(snap.State.Inputs[:]),
		}
	}
	return inner
}

func buildInputs(snap Snapshot) []InputJSON {
	out := make([]InputJSON, 0, len(snap.Inputs))
	for i, s := range snap.Inputs {
		in := InputJSON{Channel: i, State: string(s)}
		if in.State == "" {
			in.State = "UNKNOWN"
		}
		if i < len(snap.Counts) {
			in.On = snap.Counts[i].On
			in.Off = snap.Counts[i].Off
		}
		out = append(out, in)
	}
	return out
}

func levels(bs []bool) []int {
	out := make([]int, len(bs))
	for i, b := range bs {
		if b {
			out[i] = 1
		}
	}
	return out
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
