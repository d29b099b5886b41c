package entity

import (
	"fmt"
	"strconv"
	"strings"
)

// TabID identifies the tab a page view renders.
// Assigned by the tab container; zero means "not assigned yet".
type TabID int

// String returns the decimal form used in file names and log fields.
func (id TabID) String() string {
	return fmt.Sprintf("%d", int(id))
}

// ThumbnailQuality is the JPEG quality factor used for tab thumbnails.
// 75 keeps previews small while staying legible.
const ThumbnailQuality = 75

// ThumbnailFileName returns the cache file name of a tab's thumbnail.
func ThumbnailFileName(id TabID) string {
	return fmt.Sprintf("tab-%d-thumb.jpg", int(id))
}

// ParseThumbnailFileName extracts the tab id from a thumbnail file name.
// It reports false for names ThumbnailFileName could not have produced.
func ParseThumbnailFileName(name string) (TabID, bool) {
	digits, ok := strings.CutPrefix(name, "tab-")
	if !ok {
		return 0, false
	}
	digits, ok = strings.CutSuffix(digits, "-thumb.jpg")
	if !ok || digits == "" || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	id, err := strconv.Atoi(digits)
	if err != nil || id <= 0 {
		return 0, false
	}
	return TabID(id), ThumbnailFileName(TabID(id)) == name
}
