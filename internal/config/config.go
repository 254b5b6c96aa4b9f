package config

import (
	"encoding/json"
	"fmt"
)

// Config represents the bot configuration. It is loaded once at startup
// and never mutated afterwards.
type Config struct {
	// Telegram bot credential
	BotToken string `json:"bot_token" mapstructure:"bot_token"`

	// Groups allowed to receive images
	AllowedGroupIDs []int64 `json:"allowed_group_ids" mapstructure:"allowed_group_ids"`

	// Trigger text to image URL, in file order
	Triggers []Trigger `json:"triggers" mapstructure:"triggers"`

	// Logging
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`

	// Metrics
	Metrics MetricsConfig `json:"metrics" mapstructure:"metrics"`

	// Update polling
	Polling PollingConfig `json:"polling" mapstructure:"polling"`

	// PID file written while the bot runs, empty to disable
	PIDFile string `json:"pid_file" mapstructure:"pid_file"`
}

// Trigger maps an exact message text to an image URL
type Trigger struct {
	Text     string `json:"text" mapstructure:"text"`
	ImageURL string `json:"image_url" mapstructure:"image_url"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MetricsConfig holds the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Listen  string `json:"listen" mapstructure:"listen"`
}

// PollingConfig holds long-polling settings
type PollingConfig struct {
	Timeout int `json:"timeout" mapstructure:"timeout"` // seconds
}

// DefaultConfig returns a config with default values
func DefaultConfig() *Config {
	return &Config{
		AllowedGroupIDs: []int64{},
		Triggers:        []Trigger{},
		Logging: LoggingConfig{
			Level:     "info",
			Pretty:    true,
			Redaction: true,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Listen:  ":9090",
		},
		Polling: PollingConfig{
			Timeout: 60,
		},
	}
}

// String returns a JSON representation of the config with the token masked
func (c *Config) String() string {
	masked := *c
	if masked.BotToken != "" {
		masked.BotToken = "[REDACTED]"
	}
	data, _ := json.MarshalIndent(masked, "", "  ")
	return string(data)
}

// Validate checks the settings the bot cannot start without
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("bot token is not provided")
	}

	if len(c.AllowedGroupIDs) == 0 {
		return fmt.Errorf("allowed group IDs are not provided")
	}

	for i, t := range c.Triggers {
		if t.Text == "" {
			return fmt.Errorf("trigger %d: text is required", i)
		}
		if t.ImageURL == "" {
			return fmt.Errorf("trigger %q: image_url is required", t.Text)
		}
	}

	if c.Polling.Timeout < 0 {
		return fmt.Errorf("polling timeout must be >= 0")
	}

	return nil
}
