package usecase

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/webpage/internal/application/port"
	"github.com/bnema/webpage/internal/domain/entity"
	"github.com/bnema/webpage/internal/logging"
	"golang.org/x/image/draw"
)

const (
	thumbnailDirPerm  = 0o755
	thumbnailFilePerm = 0o644
)

var (
	// ErrEmptyImage is returned when the snapshot carries no pixels.
	ErrEmptyImage = errors.New("thumbnail: empty image")
	// ErrEmptyCrop is returned when the crop region does not overlap the image.
	ErrEmptyCrop = errors.New("thumbnail: empty crop region")
)

// SaveThumbnailUseCase crops a rendered page image, encodes it as JPEG and
// writes it to the per-tab cache file.
type SaveThumbnailUseCase struct {
	paths   port.XDGPaths
	quality int

	// writeMu serializes file writes so overlapping jobs never interleave
	// on the same destination.
	writeMu sync.Mutex
}

// NewSaveThumbnailUseCase creates a new SaveThumbnailUseCase.
// A quality outside 1..100 falls back to entity.ThumbnailQuality.
func NewSaveThumbnailUseCase(paths port.XDGPaths, quality int) *SaveThumbnailUseCase {
	if quality < 1 || quality > 100 {
		quality = entity.ThumbnailQuality
	}
	return &SaveThumbnailUseCase{
		paths:   paths,
		quality: quality,
	}
}

// SaveThumbnailInput contains the parameters for saving a thumbnail.
type SaveThumbnailInput struct {
	TabID entity.TabID
	Image image.Image
	Crop  image.Rectangle
}

// SaveThumbnailOutput contains the written file path.
type SaveThumbnailOutput struct {
	Path string
}

// Quality returns the JPEG quality factor in use.
func (uc *SaveThumbnailUseCase) Quality() int {
	return uc.quality
}

// Path returns the destination file for a tab thumbnail.
func (uc *SaveThumbnailUseCase) Path(tabID entity.TabID) (string, error) {
	dir, err := uc.paths.CacheDir()
	if err != nil {
		return "", fmt.Errorf("resolve cache dir: %w", err)
	}
	return filepath.Join(dir, entity.ThumbnailFileName(tabID)), nil
}

// Execute crops, encodes and writes the thumbnail.
// ctx cancellation is checked between steps; a cancelled job writes nothing.
func (uc *SaveThumbnailUseCase) Execute(ctx context.Context, input SaveThumbnailInput) (*SaveThumbnailOutput, error) {
	log := logging.FromContext(ctx)

	if input.Image == nil || input.Image.Bounds().Empty() {
		return nil, ErrEmptyImage
	}

	cropped, err := cropImage(input.Image, input.Crop)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path, err := uc.Path(input.TabID)
	if err != nil {
		return nil, err
	}

	uc.writeMu.Lock()
	defer uc.writeMu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := writeJPEG(path, cropped, uc.quality); err != nil {
		return nil, err
	}

	log.Debug().
		Str("path", path).
		Int("width", cropped.Bounds().Dx()).
		Int("height", cropped.Bounds().Dy()).
		Msg("thumbnail written")

	return &SaveThumbnailOutput{Path: path}, nil
}

// cropImage copies rect (relative to the image origin) into a new RGBA image
// of rect's size. Pixels of rect outside the image stay zero.
func cropImage(src image.Image, rect image.Rectangle) (*image.RGBA, error) {
	bounds := src.Bounds()
	want := rect.Add(bounds.Min)
	region := want.Intersect(bounds)
	if rect.Empty() || region.Empty() {
		return nil, ErrEmptyCrop
	}

	dst := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Copy(dst, region.Min.Sub(want.Min), src, region, draw.Src, nil)
	return dst, nil
}

// writeJPEG encodes img next to path and renames it into place.
func writeJPEG(path string, img image.Image, quality int) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, thumbnailDirPerm); err != nil {
		return fmt.Errorf("create thumbnail dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".thumb-*.jpg")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()

	if err := jpeg.Encode(tmp, img, &jpeg.Options{Quality: quality}); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("encode jpeg: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, thumbnailFilePerm); err != nil {
		return fmt.Errorf("chmod thumbnail: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename thumbnail: %w", err)
	}
	return nil
}
