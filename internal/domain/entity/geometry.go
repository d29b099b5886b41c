// Package entity defines domain entities for the page view.
package entity

import "image"

// ThumbnailCrop returns the region of a rendered page kept in its thumbnail.
//
// The crop is anchored at the top-left corner. Its width is the smaller of
// the two view dimensions and its height half of that, so portrait and
// landscape views produce the same 2:1 letterbox.
func ThumbnailCrop(viewWidth, viewHeight int) image.Rectangle {
	size := min(viewWidth, viewHeight)
	if size < 0 {
		size = 0
	}
	return image.Rect(0, 0, size, size/2)
}
