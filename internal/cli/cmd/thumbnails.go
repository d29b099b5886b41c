package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/cli/styles"
)

var thumbnailsCmd = &cobra.Command{
	Use:     "thumbnails",
	Aliases: []string{"thumbs"},
	Short:   "Inspect or clear the thumbnail cache",
}

var thumbnailsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached tab thumbnails",
	RunE:  runThumbnailsList,
}

var thumbnailsPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Delete every cached tab thumbnail",
	Long:  `Delete every tab-N-thumb.jpg file from the cache directory. Other files are kept.`,
	RunE:  runThumbnailsPurge,
}

func init() {
	rootCmd.AddCommand(thumbnailsCmd)
	thumbnailsCmd.AddCommand(thumbnailsListCmd)
	thumbnailsCmd.AddCommand(thumbnailsPurgeCmd)
}

func runThumbnailsList(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	dir, err := app.Thumbnails.Dir()
	if err != nil {
		return err
	}
	entries, err := app.Thumbnails.List(app.Ctx())
	if err != nil {
		return err
	}

	rows := make([]styles.ThumbnailRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, styles.ThumbnailRow{
			TabID:    e.TabID.String(),
			Path:     e.Path,
			Size:     e.Size,
			Modified: e.ModTime,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.NewThumbnailRenderer(app.Theme).RenderList(dir, rows))
	return nil
}

func runThumbnailsPurge(cmd *cobra.Command, _ []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	dir, err := app.Thumbnails.Dir()
	if err != nil {
		return err
	}
	removed, err := app.Thumbnails.Purge(app.Ctx())
	fmt.Fprintln(cmd.OutOrStdout(), styles.NewThumbnailRenderer(app.Theme).RenderPurged(dir, removed))
	return err
}
