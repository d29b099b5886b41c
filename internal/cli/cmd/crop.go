package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bnema/webpage/internal/cli"
	"github.com/bnema/webpage/internal/cli/styles"
	"github.com/bnema/webpage/internal/domain/entity"
)

var cropTabID int

var cropCmd = &cobra.Command{
	Use:   "crop <screenshot>",
	Short: "Turn an existing screenshot into a tab thumbnail",
	Long: `Apply the thumbnail crop to a PNG, JPEG, GIF, BMP or WebP screenshot and
write it as the thumbnail of the given tab.

Examples:
  webpage crop --tab 3 ~/Pictures/page.png`,
	Args: cobra.ExactArgs(1),
	RunE: runCrop,
}

func init() {
	rootCmd.AddCommand(cropCmd)
	cropCmd.Flags().IntVarP(&cropTabID, "tab", "t", 1, "tab id the thumbnail belongs to")
}

func runCrop(cmd *cobra.Command, args []string) error {
	app, err := requireApp()
	if err != nil {
		return err
	}

	path, err := cli.CropFile(app.Ctx(), app.SaveThumbnailUC, args[0], entity.TabID(cropTabID))
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.NewCaptureRenderer(app.Theme).RenderSaved(entity.TabID(cropTabID).String(), path))
	return nil
}
