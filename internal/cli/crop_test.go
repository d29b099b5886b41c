package cli

import (
	"bytes"
	"context"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bnema/webpage/internal/application/usecase"
	"github.com/bnema/webpage/internal/domain/entity"
)

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{G: 200, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestCropFile(t *testing.T) {
	src := filepath.Join(t.TempDir(), "shot.png")
	writePNG(t, src, 640, 480)

	cacheDir := t.TempDir()
	uc := usecase.NewSaveThumbnailUseCase(tempPaths{dir: cacheDir}, entity.ThumbnailQuality)

	path, err := CropFile(context.Background(), uc, src, 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cacheDir, "tab-7-thumb.jpg"), path)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 480, cfg.Width)
	assert.Equal(t, 240, cfg.Height)
}

func TestCropFile_Errors(t *testing.T) {
	dir := t.TempDir()
	uc := usecase.NewSaveThumbnailUseCase(tempPaths{dir: dir}, entity.ThumbnailQuality)

	_, err := CropFile(context.Background(), uc, filepath.Join(dir, "missing.png"), 1)
	assert.ErrorContains(t, err, "open screenshot")

	garbage := filepath.Join(dir, "garbage.png")
	require.NoError(t, os.WriteFile(garbage, []byte("not an image"), 0o644))
	_, err = CropFile(context.Background(), uc, garbage, 1)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
	assert.ErrorContains(t, err, "text/plain")

	truncated := filepath.Join(dir, "truncated.png")
	require.NoError(t, os.WriteFile(truncated, []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR"), 0o644))
	_, err = CropFile(context.Background(), uc, truncated, 1)
	assert.ErrorContains(t, err, "decode screenshot")

	_, err = CropFile(context.Background(), uc, garbage, 0)
	assert.ErrorContains(t, err, "tab id")
}

func TestCropFile_RejectsOversizedImage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewGray(image.Rect(0, 0, 1, 1))))
	data := buf.Bytes()

	// Rewrite the IHDR dimensions and checksum; the pixel data stays 1x1.
	binary.BigEndian.PutUint32(data[16:20], 100000)
	binary.BigEndian.PutUint32(data[20:24], 100000)
	binary.BigEndian.PutUint32(data[29:33], crc32.ChecksumIEEE(data[12:29]))

	dir := t.TempDir()
	src := filepath.Join(dir, "huge.png")
	require.NoError(t, os.WriteFile(src, data, 0o644))

	uc := usecase.NewSaveThumbnailUseCase(tempPaths{dir: dir}, entity.ThumbnailQuality)
	_, err := CropFile(context.Background(), uc, src, 1)
	assert.ErrorIs(t, err, ErrImageTooLarge)
	assert.ErrorContains(t, err, "100000x100000")
	assert.NoFileExists(t, filepath.Join(dir, entity.ThumbnailFileName(1)))
}
