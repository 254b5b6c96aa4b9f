package cli

import (
	"fmt"

	"github.com/harun/groupsnap/internal/daemon"
	"github.com/harun/groupsnap/internal/logger"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the groupsnap bot",
	Long: `Start the groupsnap bot in the foreground.
The bot long-polls Telegram for messages until it receives SIGINT or SIGTERM.`,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	if isRunning(cfg.PIDFile) {
		return fmt.Errorf("bot is already running (PID file: %s)", cfg.PIDFile)
	}

	log, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
		Secrets:   []string{cfg.BotToken},
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer log.Close()

	d, err := daemon.New(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	return d.Run(cmd.Context())
}

func isRunning(pidFile string) bool {
	pid, err := daemon.ReadPIDFile(pidFile)
	if err != nil {
		return false
	}
	return daemon.ProcessAlive(pid)
}
