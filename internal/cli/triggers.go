package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/harun/groupsnap/internal/dispatch"
	"github.com/spf13/cobra"
)

var triggersCmd = &cobra.Command{
	Use:   "triggers",
	Short: "List the triggers the bot responds to",
	RunE:  runTriggers,
}

func init() {
	rootCmd.AddCommand(triggersCmd)
}

func runTriggers(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	router, err := dispatch.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("failed to build router: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PATTERN\tKIND\tIMAGE")
	for _, t := range router.Triggers() {
		image := t.ImageURL
		if image == "" {
			image = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Pattern, t.Kind, image)
	}
	return w.Flush()
}
