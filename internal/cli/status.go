package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/harun/groupsnap/internal/daemon"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show bot status",
	Long:  `Show whether a groupsnap bot is running, using its PID file.`,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	path := pidFileForControl()

	if !isRunning(path) {
		cmd.Println("Status: stopped")
		return nil
	}

	pid, err := daemon.ReadPIDFile(path)
	if err != nil {
		return fmt.Errorf("failed to read PID file: %w", err)
	}

	cmd.Println("Status: running")
	cmd.Printf("PID: %d\n", pid)

	// PID file modification time approximates the start time
	if info, err := os.Stat(path); err == nil {
		cmd.Printf("Uptime: %s\n", formatDuration(time.Since(info.ModTime())))
	}

	return nil
}

func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
