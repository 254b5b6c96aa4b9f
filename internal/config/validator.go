package config

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// builtinPatterns are reserved by the router
var builtinPatterns = []string{"/groupid", "#groupinfo"}

var telegramTokenPattern = regexp.MustCompile(`^\d+:[A-Za-z0-9_-]+$`)

// Validator validates configuration values
type Validator struct{}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateTelegramToken validates a Telegram bot token
func (v *Validator) ValidateTelegramToken(token string) error {
	if token == "" {
		return fmt.Errorf("telegram bot token cannot be empty")
	}

	// Telegram bot tokens have format: <bot_id>:<token>
	if !telegramTokenPattern.MatchString(token) {
		return fmt.Errorf("invalid Telegram bot token format")
	}

	return nil
}

// ValidateImageURL checks that raw is an absolute http(s) URL
func (v *Validator) ValidateImageURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("image URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid image URL %q: %w", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("image URL %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("image URL %q has no host", raw)
	}

	return nil
}

// ValidateTriggerText rejects empty texts and the built-in commands
func (v *Validator) ValidateTriggerText(text string) error {
	if text == "" {
		return fmt.Errorf("trigger text cannot be empty")
	}

	for _, builtin := range builtinPatterns {
		if text == builtin {
			return fmt.Errorf("trigger %q is reserved for a built-in command", text)
		}
	}

	return nil
}

// ValidateLogLevel validates log level
func (v *Validator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}
	for _, valid := range validLevels {
		if level == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (must be one of: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateConfig performs comprehensive validation
func (v *Validator) ValidateConfig(cfg *Config) []error {
	var errors []error

	if err := cfg.Validate(); err != nil {
		errors = append(errors, err)
	}

	if cfg.BotToken != "" {
		if err := v.ValidateTelegramToken(cfg.BotToken); err != nil {
			errors = append(errors, err)
		}
	}

	for i, t := range cfg.Triggers {
		if err := v.ValidateTriggerText(t.Text); err != nil {
			errors = append(errors, fmt.Errorf("trigger %d: %w", i, err))
		}
		if err := v.ValidateImageURL(t.ImageURL); err != nil {
			errors = append(errors, fmt.Errorf("trigger %d: %w", i, err))
		}
	}

	if err := v.ValidateLogLevel(cfg.Logging.Level); err != nil {
		errors = append(errors, err)
	}

	return errors
}

// DuplicateTriggers returns trigger texts that appear more than once.
// Duplicates are allowed; the last entry wins.
func (v *Validator) DuplicateTriggers(cfg *Config) []string {
	seen := make(map[string]int)
	var duplicates []string

	for _, t := range cfg.Triggers {
		seen[t.Text]++
		if seen[t.Text] == 2 {
			duplicates = append(duplicates, t.Text)
		}
	}

	return duplicates
}
