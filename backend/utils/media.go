package utils

import (
	"strings"

	"stepwise/backend/models"
)

// MediaURL resolves a stored media object to the public URL served by host.
// Objects already stored as absolute URLs are returned as is.
func MediaURL(host string, media *models.Media) string {
	if media == nil || media.File == "" {
		return ""
	}
	if strings.HasPrefix(media.File, "http://") || strings.HasPrefix(media.File, "https://") {
		return media.File
	}
	return strings.TrimRight(host, "/") + "/media/" + strings.TrimLeft(media.File, "/")
}
