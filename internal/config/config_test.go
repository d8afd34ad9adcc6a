package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sweeney/servo-bridge/internal/bank"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Serial.Port)
	assert.Equal(t, 9600, cfg.Serial.Baud)
	assert.Equal(t, time.Second, cfg.Timing.Heartbeat())
	assert.Equal(t, 15*time.Minute, cfg.Timing.Report())
	assert.Equal(t, bank.DefaultTable, cfg.Table())
	assert.Empty(t, cfg.MQTT.Broker)
	require.NoError(t, Validate(cfg))
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseOverrides(t *testing.T) {
	src := `
serial:
  port: /dev/ttyUSB1
  baud: 115200
gpio:
  sim: true
pins:
  servos: [15, 16, 18, 19, 20, 21]
  indicator: 25
timing:
  poll_ms: 5
  report_ms: -1
mqtt:
  broker: tcp://10.0.0.2:1883
  topic_prefix: lab/arm
http:
  addr: ":8080"
`
	cfg, err := Parse(strings.NewReader(src))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB1", cfg.Serial.Port)
	assert.Equal(t, 115200, cfg.Serial.Baud)
	assert.True(t, cfg.GPIO.Sim)
	assert.Equal(t, 5*time.Millisecond, cfg.Timing.Poll())
	assert.Equal(t, time.Duration(0), cfg.Timing.Report())
	assert.Equal(t, "lab/arm", cfg.MQTT.TopicPrefix)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)

	tbl := cfg.Table()
	assert.Equal(t, [bank.NumServos]int{15, 16, 18, 19, 20, 21}, tbl.Servos)
	assert.Equal(t, bank.DefaultTable.Outputs, tbl.Outputs)
	assert.Equal(t, 25, tbl.Indicator)
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	_, err := Parse(strings.NewReader("serial:\n  speed: 9600\n"))
	assert.Error(t, err)
}

func TestValidateErrors(t *testing.T) {
	tests := map[string]string{
		"wrong servo count":  "pins:\n  servos: [1, 2, 3]\n",
		"pin conflict":       "pins:\n  inputs: [3, 4, 7]\n",
		"broker scheme":      "mqtt:\n  broker: 10.0.0.2:1883\n",
		"negative heartbeat": "timing:\n  heartbeat_ms: -5\n",
	}
	for name, src := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(src))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial:\n  port: \"-\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "-", cfg.Serial.Port)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
