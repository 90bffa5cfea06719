package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/anchors"
	"github.com/billmal071/trackermeta/internal/config"
	"github.com/billmal071/trackermeta/internal/db"
	"github.com/billmal071/trackermeta/internal/logger"
	"github.com/billmal071/trackermeta/internal/modarchive"
	"github.com/billmal071/trackermeta/internal/tui"
)

// app holds what every command needs once configuration is loaded
type app struct {
	cfgFile string
	verbose bool

	cfg     *config.Config
	log     logger.Logger
	offsets anchors.Offsets
	client  *modarchive.Client
}

// NewRootCmd builds the trackermeta command tree
func NewRootCmd() *cobra.Command {
	a := &app{log: logger.NewNop()}

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Look up tracker modules on the Mod Archive",
		Long: `trackermeta searches the Mod Archive (modarchive.org) by filename and
extracts the metadata of a module from its detail page.

Examples:
  trackermeta search noway.s3m          Search and pick a module interactively
  trackermeta get 51772                 Show the metadata of module #51772
  trackermeta link 51772                Print the download link
  trackermeta download 51772            Download and verify the module file
  trackermeta offsets set 150 165 180   Override the page anchor lines`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
			_ = db.Close()
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default "+config.GetConfigPath()+")")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(
		newSearchCmd(a),
		newGetCmd(a),
		newLinkCmd(),
		newDownloadCmd(a),
		newOffsetsCmd(a),
		newHistoryCmd(a),
		newConfigCmd(),
		newVersionCmd(),
	)

	return rootCmd
}

// Execute runs the root command. Cancelling ctx aborts any lookup in
// progress, including one under infinity retry.
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

func (a *app) init() error {
	// .env is optional
	_ = godotenv.Load()

	if err := config.Init(a.cfgFile); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}
	a.cfg = config.Get()

	logCfg := logger.Config{Level: a.cfg.Log.Level, Format: a.cfg.Log.Format}
	if a.verbose {
		logCfg.Level = "debug"
	}
	log, err := logger.New(logCfg)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.log = log

	// the override is read once per process
	a.offsets = anchors.Default()
	if a.cfg.Anchors.OverrideEnabled {
		a.offsets = anchors.LoadOrDefault(config.GetOverridePath(), a.log)
	}

	if a.cfg.History.Enabled {
		if err := db.Init(); err != nil {
			// history is a convenience, lookups work without it
			a.log.Warn("History disabled", logger.Error(err))
		}
	}

	return nil
}

// archive returns the shared archive client
func (a *app) archive() *modarchive.Client {
	if a.client == nil {
		a.client = modarchive.NewClientFromConfig(a.cfg, a.offsets, a.log)
	}
	return a.client
}

// Errorf prints an error message to stderr
func Errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
}

// Successf prints a success message
func Successf(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, tui.SuccessStyle.Render(fmt.Sprintf("✓ "+format, args...)))
}
