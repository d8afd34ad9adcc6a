package config

// Normalize fills zero values with defaults.
// A negative report_ms disables the status heartbeat.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Serial.Port == "" {
		cfg.Serial.Port = DefaultPort
	}
	if cfg.Serial.Baud == 0 {
		cfg.Serial.Baud = DefaultBaud
	}
	if cfg.Serial.ReadTimeoutMs == 0 {
		cfg.Serial.ReadTimeoutMs = DefaultReadTimeout
	}

	if cfg.GPIO.Chip == "" {
		cfg.GPIO.Chip = DefaultChip
	}

	if cfg.Timing.PollMs == 0 {
		cfg.Timing.PollMs = DefaultPollMs
	}
	if cfg.Timing.DebounceMs == 0 {
		cfg.Timing.DebounceMs = DefaultDebounceMs
	}
	if cfg.Timing.HeartbeatMs == 0 {
		cfg.Timing.HeartbeatMs = DefaultHeartbeatMs
	}
	switch {
	case cfg.Timing.ReportMs == 0:
		cfg.Timing.ReportMs = DefaultReportMs
	case cfg.Timing.ReportMs < 0:
		cfg.Timing.ReportMs = 0
	}

	if cfg.MQTT.ClientID == "" {
		cfg.MQTT.ClientID = DefaultClientID
	}
	if cfg.MQTT.TopicPrefix == "" {
		cfg.MQTT.TopicPrefix = DefaultTopicPrefix
	}
}
