package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/anchors"
	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/tui"
)

func newOffsetsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offsets",
		Short: "Show or override the detail page anchor lines",
		Long: `The detail fetcher reads the filename, info block and download count from
fixed lines of the module page. When the archive changes its layout the lines
can be overridden without rebuilding.

The override file holds one line of three comma-separated numbers.

Examples:
  trackermeta offsets
  trackermeta offsets set 150 165 180
  trackermeta offsets reset`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := config.GetOverridePath()

			fmt.Fprintf(out, "%s %s\n", tui.LabelStyle.Render("Default"), anchors.Default())

			if override, err := anchors.LoadOverride(path); err == nil {
				fmt.Fprintf(out, "%s %s\n", tui.LabelStyle.Render("Override"), override)
			} else {
				fmt.Fprintf(out, "%s %s\n", tui.LabelStyle.Render("Override"), tui.DimStyle.Render(err.Error()))
			}

			fmt.Fprintf(out, "%s %s\n", tui.LabelStyle.Render("Effective"), a.offsets)
			fmt.Fprintf(out, "%s %s (+%d)\n", tui.LabelStyle.Render("Nominated"),
				a.offsets.Shift(anchors.NominationShift), anchors.NominationShift)
			if !a.cfg.Anchors.OverrideEnabled {
				fmt.Fprintln(out, tui.WarningStyle.Render("Override disabled by anchors.override_enabled"))
			}
			fmt.Fprintf(out, "%s %s\n", tui.LabelStyle.Render("File"), path)
			return nil
		},
	}

	setCmd := &cobra.Command{
		Use:   "set [filename-line] [info-line] [download-line]",
		Short: "Write the override file",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			var values [3]int
			for i, arg := range args {
				n, err := strconv.Atoi(arg)
				if err != nil {
					return fmt.Errorf("invalid line number %q", arg)
				}
				values[i] = n
			}

			o := anchors.Offsets{Filename: values[0], Info: values[1], Download: values[2]}
			path := config.GetOverridePath()
			if err := anchors.SaveOverride(path, o); err != nil {
				return fmt.Errorf("failed to save override: %w", err)
			}
			Successf(cmd.OutOrStdout(), "Override set to %s (%s)", o, path)
			return nil
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the override file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := anchors.RemoveOverride(config.GetOverridePath()); err != nil {
				return fmt.Errorf("failed to remove override: %w", err)
			}
			Successf(cmd.OutOrStdout(), "Override removed, using defaults %s", anchors.Default())
			return nil
		},
	}

	cmd.AddCommand(setCmd, resetCmd)
	return cmd
}
