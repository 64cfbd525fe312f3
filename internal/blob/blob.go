// Package blob stores avatar and post images and hands back URLs for them.
package blob

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrImageEncoding  = errors.New("image encoding failed")
	ErrInvalidURL     = errors.New("invalid image url")
	ErrUploadFailed   = errors.New("image upload failed")
	ErrDownloadFailed = errors.New("image download failed")
	ErrDeleteFailed   = errors.New("image delete failed")
)

// MaxImageBytes caps a single upload.
const MaxImageBytes = 20 << 20

var extByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Sniff detects the image type of data and returns its content type and file
// extension.
func Sniff(data []byte) (string, string, error) {
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: empty image", ErrImageEncoding)
	}
	if len(data) > MaxImageBytes {
		return "", "", fmt.Errorf("%w: image larger than %d bytes", ErrImageEncoding, MaxImageBytes)
	}
	ctype := http.DetectContentType(data)
	ext, ok := extByType[ctype]
	if !ok {
		return "", "", fmt.Errorf("%w: unsupported image type %s", ErrImageEncoding, ctype)
	}
	return ctype, ext, nil
}

// objectName is the owner-scoped name of a new image.
func objectName(owner, ext string, now time.Time) string {
	return sanitize(owner) + "/" + now.UTC().Format("20060102T150405.000") + "_img" + ext
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if r == '-' || r == '_' ||
			(r >= '0' && r <= '9') || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
			return r
		}
		return '-'
	}, s)
	if s == "" {
		return "shared"
	}
	return s
}
