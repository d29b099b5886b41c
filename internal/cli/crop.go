package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register decoder
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder

	"github.com/bnema/webpage/internal/application/usecase"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/logging"
)

var (
	// ErrUnsupportedImage is returned for screenshots in a format crop cannot decode.
	ErrUnsupportedImage = errors.New("unsupported image format")
	// ErrImageTooLarge is returned for screenshots above maxCropPixels.
	ErrImageTooLarge = errors.New("image too large")
)

// maxCropPixels bounds the decoded screenshot size (256 MiB as RGBA).
const maxCropPixels = 64 << 20

var cropFormats = []string{"image/png", "image/jpeg", "image/gif", "image/bmp", "image/webp"}

// CropFile turns an existing page screenshot into the thumbnail of tabID,
// using the same crop a live capture would apply.
func CropFile(ctx context.Context, uc *usecase.SaveThumbnailUseCase, path string, tabID entity.TabID) (string, error) {
	if tabID <= 0 {
		return "", fmt.Errorf("tab id must be positive, got %d", tabID)
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open screenshot: %w", err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("detect screenshot type: %w", err)
	}
	if !mimetype.EqualsAny(mtype.String(), cropFormats...) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mtype.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind screenshot: %w", err)
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return "", fmt.Errorf("decode screenshot header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > maxCropPixels {
		return "", fmt.Errorf("%w: %dx%d", ErrImageTooLarge, cfg.Width, cfg.Height)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind screenshot: %w", err)
	}

	img, format, err := image.Decode(f)
	if err != nil {
		return "", fmt.Errorf("decode screenshot: %w", err)
	}

	bounds := img.Bounds()
	out, err := uc.Execute(logging.WithTabID(ctx, tabID.String()), usecase.SaveThumbnailInput{
		TabID: tabID,
		Image: img,
		Crop:  entity.ThumbnailCrop(bounds.Dx(), bounds.Dy()),
	})
	if err != nil {
		return "", fmt.Errorf("save %s thumbnail: %w", format, err)
	}
	return out.Path, nil
}
