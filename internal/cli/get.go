package cli

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/db"
	"github.com/billmal071/trackermeta/internal/logger"
	"github.com/billmal071/trackermeta/internal/modarchive"
	"github.com/billmal071/trackermeta/internal/tui"
)

func newGetCmd(a *app) *cobra.Command {
	var instruments, asJSON bool

	cmd := &cobra.Command{
		Use:   "get [id]",
		Short: "Show the metadata of a module",
		Long: `Fetch a module's detail page and print its metadata.

Examples:
  trackermeta get 51772
  trackermeta get --instruments 51772
  trackermeta get --json 51772`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseModuleID(args[0])
			if err != nil {
				return err
			}

			info, err := a.lookup(cmd, id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}
			fmt.Fprintln(out, tui.RenderModInfo(info, instruments))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&instruments, "instruments", "i", false, "also print the instrument text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the record as JSON")

	return cmd
}

func newLinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "link [id]",
		Short: "Print the download link of a module",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseModuleID(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), modarchive.DownloadLink(id))
			return nil
		},
	}
}

// lookup fetches a module record and records it in the history
func (a *app) lookup(cmd *cobra.Command, id int) (*modarchive.ModInfo, error) {
	info, err := a.archive().Get(cmd.Context(), id)
	if err != nil {
		return nil, fmt.Errorf("lookup failed: %w", err)
	}

	if db.Enabled() {
		if err := db.AddLookup(info.ID, info.Filename, info.Title, info.Format); err != nil {
			a.log.Warn("Failed to record lookup", logger.Error(err))
		}
	}
	return info, nil
}

func parseModuleID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid module id %q", s)
	}
	return id, nil
}
