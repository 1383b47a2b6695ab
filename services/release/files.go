package release

import (
	"path"
	"strings"
)

var videoExts = map[string]struct{}{
	".mkv":  {},
	".mp4":  {},
	".avi":  {},
	".mov":  {},
	".wmv":  {},
	".webm": {},
}

// IsVideoFile reports whether name ends in a playable video extension.
func IsVideoFile(name string) bool {
	_, ok := videoExts[strings.ToLower(path.Ext(name))]
	return ok
}
