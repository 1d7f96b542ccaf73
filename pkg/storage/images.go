package storage

import (
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FolderAds is the key prefix for ad images.
const FolderAds = "ads"

// Allowed image MIME types and extensions.
var (
	AllowedImageTypes = map[string]string{
		"image/jpeg": ".jpg",
		"image/jpg":  ".jpg",
		"image/png":  ".png",
		"image/webp": ".webp",
		"image/gif":  ".gif",
	}
	AllowedImageExtensions = map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".webp": "image/webp",
		".gif":  "image/gif",
	}
)

// ValidateImageType returns true if the content type or the extension is an allowed image.
func ValidateImageType(contentType, filename string) bool {
	if contentType != "" {
		if _, ok := AllowedImageTypes[normalizeType(contentType)]; ok {
			return true
		}
	}
	_, ok := AllowedImageExtensions[strings.ToLower(path.Ext(filename))]
	return ok
}

// ImageContentType picks the stored content type: a recognised header wins, then the extension.
func ImageContentType(contentType, filename string) string {
	if ct := normalizeType(contentType); ct != "" {
		if _, ok := AllowedImageTypes[ct]; ok {
			return ct
		}
	}
	return ContentTypeForFilename(filename)
}

// ContentTypeForFilename returns the MIME type for an image filename extension.
func ContentTypeForFilename(filename string) string {
	if ct, ok := AllowedImageExtensions[strings.ToLower(path.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ImageKey returns a fresh object key for an ad image: ads/{ad_id}/{uuid}{ext}.
// The original filename only contributes its extension.
func ImageKey(adID int64, filename, contentType string) string {
	ext := strings.ToLower(path.Ext(filename))
	if _, ok := AllowedImageExtensions[ext]; !ok {
		ext = AllowedImageTypes[normalizeType(contentType)]
	}
	return path.Join(FolderAds, strconv.FormatInt(adID, 10), uuid.NewString()+ext)
}

func normalizeType(contentType string) string {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = strings.TrimSpace(ct[:i])
	}
	return ct
}
