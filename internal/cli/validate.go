package cli

import (
	"fmt"

	"github.com/harun/groupsnap/internal/config"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the configuration file",
	Long: `Load the configuration and check the bot token, the allowed group IDs
and every trigger. Duplicate trigger texts are reported as warnings.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader(cfgFile)

	cfg, err := loader.Load()
	if err != nil {
		return err
	}

	validator := config.NewValidator()
	if errs := validator.ValidateConfig(cfg); len(errs) > 0 {
		for _, e := range errs {
			cmd.Printf("error: %v\n", e)
		}
		return fmt.Errorf("configuration has %d error(s)", len(errs))
	}

	for _, text := range validator.DuplicateTriggers(cfg) {
		cmd.Printf("warning: trigger %q is defined more than once, the last entry wins\n", text)
	}

	cmd.Printf("Configuration OK: %d allowed group(s), %d trigger(s)\n", len(cfg.AllowedGroupIDs), len(cfg.Triggers))
	return nil
}
