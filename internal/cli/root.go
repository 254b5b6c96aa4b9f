package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/harun/groupsnap/internal/config"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	cfgFile  string
	logLevel string
	pidFile  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "groupsnap",
	Short: "groupsnap - Telegram group image trigger bot",
	Long: `groupsnap is a Telegram bot for group chats. It answers /groupid and
#groupinfo with the chat ID and replies with a configured image when a
trigger word is posted in an allowed group.`,
	Version:      version,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./bot.config.{json,yaml,yml,toml})")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&pidFile, "pid-file", "", "PID file path (default is $TMPDIR/groupsnap.pid)")

	// Version template
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s" .Version}}
`)
}

// GetRootCmd returns the root command for testing
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// GetVersion returns the current version
func GetVersion() string {
	return version
}

// loadConfig reads the configuration and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	cfg.PIDFile = resolvePIDFile(cfg)

	return cfg, nil
}

// resolvePIDFile picks the flag, then the config value, then the default
func resolvePIDFile(cfg *config.Config) string {
	if pidFile != "" {
		return pidFile
	}
	if cfg != nil && cfg.PIDFile != "" {
		return cfg.PIDFile
	}
	return defaultPIDFile()
}

func defaultPIDFile() string {
	return filepath.Join(os.TempDir(), "groupsnap.pid")
}

// pidFileForControl resolves the PID file for stop and status, which must
// work even when the config no longer validates
func pidFileForControl() string {
	if pidFile != "" {
		return pidFile
	}
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return defaultPIDFile()
	}
	return resolvePIDFile(cfg)
}
