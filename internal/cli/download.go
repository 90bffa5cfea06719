package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/billmal071/trackermeta/internal/db"
	"github.com/billmal071/trackermeta/internal/downloader"
	"github.com/billmal071/trackermeta/internal/logger"
	"github.com/billmal071/trackermeta/internal/modarchive"
	"github.com/billmal071/trackermeta/internal/notify"
	"github.com/billmal071/trackermeta/internal/tui"
)

func newDownloadCmd(a *app) *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download [id]",
		Short: "Download a module file",
		Long: `Fetch a module's metadata, download the file and verify its MD5.

Examples:
  trackermeta download 51772
  trackermeta download -o ~/mods 51772`,
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
			return a.downloadModule(cmd, info, outputDir)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "download directory (default downloads.path)")

	return cmd
}

func (a *app) downloadModule(cmd *cobra.Command, info *modarchive.ModInfo, outputDir string) error {
	out := cmd.OutOrStdout()
	if outputDir == "" {
		outputDir = a.cfg.Downloads.Path
	}

	req := downloader.Request{
		URL:  info.DownloadLink(),
		Path: filepath.Join(outputDir, filepath.Base(info.Filename)),
	}
	if a.cfg.Downloads.Verify {
		req.MD5 = info.MD5
	}

	notifier := notify.FromConfig(a.cfg.Downloads, a.log)
	manager := downloader.NewManager(a.cfg.Network, a.log)

	fmt.Fprintf(out, "Downloading %s\n", info.Filename)
	result, err := manager.Download(cmd.Context(), req)
	if err != nil {
		notifier.DownloadFailed(info.Filename, err.Error())
		return fmt.Errorf("download failed: %w", err)
	}

	if db.Enabled() {
		if err := db.AddDownload(info.ID, result.Path, result.Size, result.Verified); err != nil {
			a.log.Warn("Failed to record download", logger.Error(err))
		}
	}

	notifier.DownloadComplete(info.Filename)
	Successf(out, "Saved %s (%s)", result.Path, tui.FormatSize(result.Size))
	if result.Verified {
		Successf(out, "MD5 verified")
	}
	return nil
}
