package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigBaseName is the file name searched for when no path is given
	ConfigBaseName = "bot.config"
	// EnvPrefix prefixes environment overrides, e.g. GROUPSNAP_BOT_TOKEN
	EnvPrefix = "GROUPSNAP"
)

// searchExtensions lists the supported config formats in lookup order
var searchExtensions = []string{"json", "yaml", "yml", "toml"}

// Loader handles configuration loading
type Loader struct {
	configPath string
	searchDir  string
}

// NewLoader creates a new config loader. An empty path means
// bot.config.{json,yaml,yml,toml} in the working directory.
func NewLoader(configPath string) *Loader {
	return &Loader{
		configPath: configPath,
		searchDir:  ".",
	}
}

// Load loads and validates the configuration
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.read()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// read loads the configuration without validating it
func (l *Loader) read() (*Config, error) {
	// A missing .env is fine
	envPath := filepath.Join(l.searchDir, ".env")
	if _, err := os.Stat(envPath); err == nil {
		if err := godotenv.Load(envPath); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envPath, err)
		}
	}

	configPath, err := l.resolvePath()
	if err != nil {
		return nil, err
	}

	// Setup viper
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only covers keys viper already knows about
	for _, key := range []string{
		"bot_token",
		"allowed_group_ids",
		"logging.level",
		"logging.file",
		"logging.pretty",
		"logging.redaction",
		"metrics.enabled",
		"metrics.listen",
		"polling.timeout",
		"pid_file",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if ext := strings.TrimPrefix(filepath.Ext(configPath), "."); ext != "" {
			v.SetConfigType(ext)
		} else {
			v.SetConfigType("json")
		}

		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Unmarshal into config struct
	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// resolvePath returns the config file to read, or "" when none exists
// and the configuration must come from the environment alone
func (l *Loader) resolvePath() (string, error) {
	if l.configPath != "" {
		if _, err := os.Stat(l.configPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", l.configPath, err)
		}
		return l.configPath, nil
	}

	for _, ext := range searchExtensions {
		candidate := filepath.Join(l.searchDir, ConfigBaseName+"."+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}

	return "", nil
}

// Save writes cfg as JSON to the loader's path
func (l *Loader) Save(cfg *Config) error {
	configPath := l.GetConfigPath()

	// Ensure directory exists
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	v.Set("bot_token", cfg.BotToken)
	v.Set("allowed_group_ids", cfg.AllowedGroupIDs)
	v.Set("triggers", cfg.Triggers)
	v.Set("logging", cfg.Logging)
	v.Set("metrics", cfg.Metrics)
	v.Set("polling", cfg.Polling)
	v.Set("pid_file", cfg.PIDFile)

	if err := v.WriteConfig(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// GetConfigPath returns the config file path
func (l *Loader) GetConfigPath() string {
	if l.configPath != "" {
		return l.configPath
	}

	if path, err := l.resolvePath(); err == nil && path != "" {
		return path
	}
	return filepath.Join(l.searchDir, ConfigBaseName+".json")
}

// Load is a convenience function that creates a loader and loads the config
func Load(configPath string) (*Config, error) {
	loader := NewLoader(configPath)
	return loader.Load()
}
