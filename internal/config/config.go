// Package config loads the bridge configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/servo-bridge/internal/bank"
)

type Config struct {
	Serial SerialConfig `yaml:"serial"`
	GPIO   GPIOConfig   `yaml:"gpio"`
	Pins   PinsConfig   `yaml:"pins"`
	Timing TimingConfig `yaml:"timing"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// ---- SERIAL ----

type SerialConfig struct {
	Port          string `yaml:"port"` // "-" reads stdin and writes stdout
	Baud          int    `yaml:"baud"`
	ReadTimeoutMs int    `yaml:"read_timeout_ms"`
}

// ---- GPIO ----

type GPIOConfig struct {
	Chip string `yaml:"chip"`
	Sim  bool   `yaml:"sim"` // in-memory bank, no hardware
}

// ---- PIN TABLE ----

// PinsConfig overrides the default channel table. Omitted groups keep the
// defaults; a group that is given must list every channel.
type PinsConfig struct {
	Servos    []int `yaml:"servos"`
	Outputs   []int `yaml:"outputs"`
	Inputs    []int `yaml:"inputs"`
	Indicator *int  `yaml:"indicator"`
}

// ---- TIMING ----

type TimingConfig struct {
	PollMs      int `yaml:"poll_ms"`
	DebounceMs  int `yaml:"debounce_ms"`
	HeartbeatMs int `yaml:"heartbeat_ms"` // indicator toggle interval
	ReportMs    int `yaml:"report_ms"`    // MQTT status heartbeat, 0 disables
}

// ---- MQTT ----

type MQTTConfig struct {
	Broker      string `yaml:"broker"` // empty disables telemetry
	ClientID    string `yaml:"client_id"`
	TopicPrefix string `yaml:"topic_prefix"`
}

// ---- HTTP ----

type HTTPConfig struct {
	Addr string `yaml:"addr"` // empty disables the status server
}

// Defaults.
const (
	DefaultPort        = "/dev/ttyACM0"
	DefaultChip        = "gpiochip0"
	DefaultPollMs      = 10
	DefaultDebounceMs  = 50
	DefaultHeartbeatMs = 1000
	DefaultReportMs    = 15 * 60 * 1000
	DefaultClientID    = "servo-bridge"
	DefaultTopicPrefix = "servo-bridge"
	DefaultBaud        = 9600
	DefaultReadTimeout = 100
)

// Default returns a fully populated configuration.
func Default() *Config {
	cfg := &Config{}
	Normalize(cfg)
	return cfg
}

// Load reads, normalizes and validates the YAML file at path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r. Unknown keys are rejected.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Table builds the channel table. Only valid after Validate.
func (c *Config) Table() bank.Table {
	t := bank.DefaultTable
	copy(t.Servos[:], c.Pins.Servos)
	copy(t.Outputs[:], c.Pins.Outputs)
	copy(t.Inputs[:], c.Pins.Inputs)
	if c.Pins.Indicator != nil {
		t.Indicator = *c.Pins.Indicator
	}
	return t
}

func (t TimingConfig) Poll() time.Duration      { return ms(t.PollMs) }
func (t TimingConfig) Debounce() time.Duration  { return ms(t.DebounceMs) }
func (t TimingConfig) Heartbeat() time.Duration { return ms(t.HeartbeatMs) }
func (t TimingConfig) Report() time.Duration    { return ms(t.ReportMs) }

func (s SerialConfig) ReadTimeout() time.Duration { return ms(s.ReadTimeoutMs) }

func ms(n int) time.Duration {
	return time.Duration(n) * time.Millisecond
}
