package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestThumbnailFileName(t *testing.T) {
	assert.Equal(t, "tab-0-thumb.jpg", ThumbnailFileName(0))
	assert.Equal(t, "tab-5-thumb.jpg", ThumbnailFileName(5))
	assert.Equal(t, "tab-42-thumb.jpg", ThumbnailFileName(TabID(42)))
	assert.Equal(t, "12", TabID(12).String())
}

func TestParseThumbnailFileName(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		wantID TabID
		wantOK bool
	}{
		{name: "simple", input: "tab-5-thumb.jpg", wantID: 5, wantOK: true},
		{name: "large id", input: "tab-1024-thumb.jpg", wantID: 1024, wantOK: true},
		{name: "zero", input: "tab-0-thumb.jpg"},
		{name: "negative", input: "tab--3-thumb.jpg"},
		{name: "plus sign", input: "tab-+3-thumb.jpg"},
		{name: "leading zeros", input: "tab-007-thumb.jpg"},
		{name: "missing id", input: "tab--thumb.jpg"},
		{name: "wrong extension", input: "tab-5-thumb.png"},
		{name: "temp file", input: "tab-5-thumb.jpg.tmp"},
		{name: "unrelated", input: "config.toml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ParseThumbnailFileName(tt.input)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.wantID, id)
				assert.Equal(t, tt.input, ThumbnailFileName(id))
			}
		})
	}
}
