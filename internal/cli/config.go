package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `View and modify trackermeta configuration.

Every key can also be set through the environment, e.g.
TRACKERMETA_NETWORK_INFINITY_RETRY=true.

Examples:
  trackermeta config get network.retry_attempts
  trackermeta config set network.infinity_retry true
  trackermeta config set downloads.path ~/mods`,
	}

	getCmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Get a configuration value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			value := config.GetValue(key)
			if value == nil {
				return fmt.Errorf("key not found: %s", key)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %v\n", key, value)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Set a configuration value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, value := args[0], args[1]
			if err := config.Set(key, value); err != nil {
				return fmt.Errorf("failed to set config: %w", err)
			}
			Successf(cmd.OutOrStdout(), "Set %s = %s", key, value)
			fmt.Fprintf(cmd.OutOrStdout(), "Config saved to: %s\n", config.GetConfigPath())
			return nil
		},
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file paths",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", config.GetConfigPath())
			fmt.Fprintf(out, "Overrides:   %s\n", config.GetOverridePath())
			fmt.Fprintf(out, "Database:    %s\n", config.GetDBPath())
			fmt.Fprintf(out, "Config dir:  %s\n", config.GetConfigDir())
		},
	}

	cmd.AddCommand(getCmd, setCmd, pathCmd)
	return cmd
}
