package config

import (
	"fmt"
	"strings"

	"github.com/sweeney/servo-bridge/internal/bank"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	if cfg.Serial.Baud < 0 {
		return fmt.Errorf("serial: baud must be positive, got %d", cfg.Serial.Baud)
	}
	if cfg.Serial.ReadTimeoutMs < 0 {
		return fmt.Errorf("serial: read_timeout_ms must not be negative")
	}

	groups := []struct {
		name string
		got  []int
		want int
	}{
		{"servos", cfg.Pins.Servos, bank.NumServos},
		{"outputs", cfg.Pins.Outputs, bank.NumOutputs},
		{"inputs", cfg.Pins.Inputs, bank.NumInputs},
	}
	for _, g := range groups {
		if g.got != nil && len(g.got) != g.want {
			return fmt.Errorf("pins: %s needs exactly %d entries, got %d", g.name, g.want, len(g.got))
		}
	}
	if err := cfg.Table().Validate(); err != nil {
		return fmt.Errorf("pins: %w", err)
	}

	if cfg.Timing.PollMs < 0 || cfg.Timing.DebounceMs < 0 {
		return fmt.Errorf("timing: poll_ms and debounce_ms must not be negative")
	}
	if cfg.Timing.HeartbeatMs < 0 {
		return fmt.Errorf("timing: heartbeat_ms must not be negative")
	}

	if b := cfg.MQTT.Broker; b != "" && !strings.Contains(b, "://") {
		return fmt.Errorf("mqtt: broker %q must include a scheme (tcp://, ssl://, ws://)", b)
	}
	return nil
}
