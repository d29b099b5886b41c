package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThumbnailCrop(t *testing.T) {
	tests := []struct {
		name   string
		width  int
		height int
		want   image.Rectangle
	}{
		{name: "portrait", width: 480, height: 854, want: image.Rect(0, 0, 480, 240)},
		{name: "landscape", width: 1280, height: 720, want: image.Rect(0, 0, 720, 360)},
		{name: "square", width: 300, height: 300, want: image.Rect(0, 0, 300, 150)},
		{name: "odd size rounds down", width: 101, height: 205, want: image.Rect(0, 0, 101, 50)},
		{name: "zero", width: 0, height: 600, want: image.Rect(0, 0, 0, 0)},
		{name: "negative clamps", width: -10, height: 600, want: image.Rect(0, 0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ThumbnailCrop(tt.width, tt.height)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, image.Point{}, got.Min)
		})
	}
}

func TestThumbnailCrop_HeightIsHalfWidth(t *testing.T) {
	for w := 0; w < 64; w++ {
		for h := 0; h < 64; h++ {
			r := ThumbnailCrop(w, h)
			assert.Equal(t, min(w, h), r.Dx())
			assert.Equal(t, min(w, h)/2, r.Dy())
		}
	}
}
