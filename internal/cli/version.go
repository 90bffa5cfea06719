package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/config"
)

var (
	// Version is set at build time
	Version = "0.1.0"
	// Commit is set at build time
	Commit = "dev"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s (%s)\n", config.AppName, Version, Commit)
		},
	}
}
