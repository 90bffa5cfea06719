package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/db"
	"github.com/billmal071/trackermeta/internal/logger"
	"github.com/billmal071/trackermeta/internal/modarchive"
	"github.com/billmal071/trackermeta/internal/tui"
)

type searchOptions struct {
	limit         int
	noInteractive bool
	download      bool
	outputDir     string
}

func newSearchCmd(a *app) *cobra.Command {
	opts := &searchOptions{}

	cmd := &cobra.Command{
		Use:   "search [filename]",
		Short: "Search modules by filename",
		Long: `Search the Mod Archive for modules whose filename matches the query.

Only the first page of results (up to 40) is read. By default an interactive
selector is shown and the chosen module's metadata is printed.

Examples:
  trackermeta search noway.s3m
  trackermeta search --no-interactive axelf
  trackermeta search -n 10 --no-interactive space
  trackermeta search -d "space debris"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runSearch(cmd, strings.Join(args, " "), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.limit, "limit", "n", 0, "number of results to print (0 for all)")
	cmd.Flags().BoolVar(&opts.noInteractive, "no-interactive", false, "disable interactive mode, just print results")
	cmd.Flags().BoolVarP(&opts.download, "download", "d", false, "download the selected module")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "download directory (with --download)")

	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, query string, opts *searchOptions) error {
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	a.log.Debug("Searching", logger.String("query", query))
	candidates, err := a.archive().ResolveFilename(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if db.Enabled() {
		if err := db.AddSearchHistory(query, len(candidates)); err != nil {
			a.log.Warn("Failed to record search", logger.Error(err))
		}
	}

	if len(candidates) == 0 {
		fmt.Fprintln(out, "No modules found matching your query.")
		return nil
	}

	if opts.noInteractive {
		shown := candidates
		if opts.limit > 0 && len(shown) > opts.limit {
			shown = shown[:opts.limit]
		}
		printCandidates(out, shown)
		if len(shown) < len(candidates) {
			fmt.Fprintln(out, tui.DimStyle.Render(fmt.Sprintf("... and %d more", len(candidates)-len(shown))))
		}
		return nil
	}

	selected, err := tui.RunSelector(candidates)
	if err != nil {
		return err
	}
	if selected == nil {
		return nil
	}

	info, err := a.lookup(cmd, selected.ID)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, tui.RenderModInfo(info, false))

	if opts.download {
		return a.downloadModule(cmd, info, opts.outputDir)
	}
	return nil
}

func printCandidates(w io.Writer, candidates []modarchive.Candidate) {
	for i, c := range candidates {
		fmt.Fprintf(w, "%2d. %-8d %-5s %s\n", i+1, c.ID, c.Format, c.Filename)
	}
}
