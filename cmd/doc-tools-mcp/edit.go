package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ironsheep/doc-tools-mcp/internal/imaging"
)

var (
	editOutput     string
	editRotation   int
	editBrightness int
	editContrast   int
	editSaturation int
	editCrop       []float64
)

var editCmd = &cobra.Command{
	Use:   "edit <image>",
	Short: "Rotate, colour-adjust and crop an image file",
	Long: `Run the edit pipeline once on an image file and write the result.

The crop is given in percent of the image as x,y,w,h and is only allowed
at rotation 0. Lossy output is written as JPEG at the configured quality.`,
	Example: `  doc-tools-mcp edit scan.jpg --rotate 90 -o scan-upright.jpg
  doc-tools-mcp edit scan.png --crop 5,5,90,90 --contrast 130`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	f := editCmd.Flags()
	f.StringVarP(&editOutput, "output", "o", "", "output file (default <name>-edited<ext>)")
	f.IntVar(&editRotation, "rotate", 0, "clockwise rotation in degrees")
	f.IntVar(&editBrightness, "brightness", imaging.IdentityAdjustPercent, "brightness percent (0-200)")
	f.IntVar(&editContrast, "contrast", imaging.IdentityAdjustPercent, "contrast percent (0-200)")
	f.IntVar(&editSaturation, "saturation", imaging.IdentityAdjustPercent, "saturation percent (0-200)")
	f.Float64SliceVar(&editCrop, "crop", nil, "crop rectangle x,y,w,h in percent")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	edit := imaging.Edit{
		Rotation: editRotation,
		Adjust: imaging.ColorAdjustment{
			Brightness: editBrightness,
			Contrast:   editContrast,
			Saturation: editSaturation,
		},
	}
	if len(editCrop) > 0 {
		if len(editCrop) != 4 {
			return fmt.Errorf("--crop needs 4 values x,y,w,h, got %d", len(editCrop))
		}
		edit.Crop = &imaging.CropRect{X: editCrop[0], Y: editCrop[1], W: editCrop[2], H: editCrop[3]}
	}

	src, err := imaging.SourceFromFile(args[0])
	if err != nil {
		return err
	}
	res, err := imaging.NewPipeline(cfg.Editor.JPEGQuality).Run(context.Background(), src, edit)
	if err != nil {
		return err
	}

	out := editOutput
	if out == "" {
		out = editedName(args[0], res.MimeType)
	}
	if err := os.WriteFile(out, res.Data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", out, err)
	}

	logger.Info("image edited",
		zap.String("input", args[0]),
		zap.String("output", out),
		zap.Int("width", res.Width),
		zap.Int("height", res.Height))
	fmt.Fprintf(cmd.OutOrStdout(), "%s (%dx%d, %s)\n", out, res.Width, res.Height, res.MimeType)
	return nil
}

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/bmp":  ".bmp",
	"image/tiff": ".tiff",
}

// editedName derives "<stem>-edited<ext>" next to the input, using the
// extension of the output media type.
func editedName(input, mimeType string) string {
	ext := filepath.Ext(input)
	stem := strings.TrimSuffix(input, ext)
	if e, ok := mimeExtensions[mimeType]; ok && !strings.EqualFold(e, ext) && !(e == ".jpg" && strings.EqualFold(ext, ".jpeg")) {
		ext = e
	}
	return stem + "-edited" + ext
}
