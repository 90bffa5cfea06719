package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/db"
	"github.com/billmal071/trackermeta/internal/tui"
)

var errHistoryDisabled = errors.New("history is disabled (history.enabled = false)")

func newHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "View and manage lookup history",
		Long: `View and manage your search, lookup and download history.

Examples:
  trackermeta history              List recent activity
  trackermeta history search       Pick a past search and run it again
  trackermeta history clear        Clear all history
  trackermeta history clear --older-than 720h
                                   Clear searches older than 30 days`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !db.Enabled() {
				return errHistoryDisabled
			}
			return showHistory(cmd.OutOrStdout(), limit)
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of entries per section")

	var olderThan time.Duration
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear all history",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !db.Enabled() {
				return errHistoryDisabled
			}
			if olderThan > 0 {
				if err := db.DeleteSearchHistoryOlderThan(olderThan); err != nil {
					return fmt.Errorf("failed to prune search history: %w", err)
				}
				Successf(cmd.OutOrStdout(), "Searches older than %s cleared.", olderThan)
				return nil
			}
			if err := db.ClearHistory(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}
			Successf(cmd.OutOrStdout(), "History cleared.")
			return nil
		},
	}
	clearCmd.Flags().DurationVar(&olderThan, "older-than", 0, "only clear searches older than this (e.g. 720h)")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "Run a past search again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !db.Enabled() {
				return errHistoryDisabled
			}
			history, err := db.GetSearchHistory(20)
			if err != nil {
				return err
			}
			picked, err := tui.RunHistorySelector(history)
			if err != nil || picked == nil {
				return err
			}
			return a.runSearch(cmd, picked.Query, &searchOptions{})
		},
	}

	cmd.AddCommand(clearCmd, searchCmd)
	return cmd
}

func showHistory(w io.Writer, limit int) error {
	searches, err := db.GetSearchHistory(limit)
	if err != nil {
		return err
	}
	lookups, err := db.GetLookups(limit)
	if err != nil {
		return err
	}
	downloads, err := db.GetDownloads(limit)
	if err != nil {
		return err
	}

	if len(searches)+len(lookups)+len(downloads) == 0 {
		fmt.Fprintln(w, "No history yet.")
		return nil
	}

	if len(searches) > 0 {
		fmt.Fprintln(w, tui.TitleStyle.Render("Searches"))
		for _, h := range searches {
			fmt.Fprintf(w, "  %s  %-30s %d results\n", h.CreatedAt.Format("2006-01-02 15:04"), h.Query, h.ResultCount)
		}
	}
	if len(lookups) > 0 {
		fmt.Fprintln(w, tui.TitleStyle.Render("Lookups"))
		for _, l := range lookups {
			fmt.Fprintf(w, "  %s  #%-8d %-5s %s\n", l.CreatedAt.Format("2006-01-02 15:04"), l.ModuleID, l.Format, l.Filename)
		}
	}
	if len(downloads) > 0 {
		fmt.Fprintln(w, tui.TitleStyle.Render("Downloads"))
		for _, d := range downloads {
			mark := " "
			if d.Verified {
				mark = "✓"
			}
			fmt.Fprintf(w, "  %s  #%-8d %s %s\n", d.CreatedAt.Format("2006-01-02 15:04"), d.ModuleID, mark, d.FilePath)
		}
	}
	return nil
}
