// Package dataurl converts inline base64 images into raw blobs.
package dataurl

import (
	"encoding/base64"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

var ErrMalformed = errors.New("malformed data url")

var shape = regexp.MustCompile(`^data:(.+);base64,(.+)$`)

var allowed = map[string]string{
	"jpeg": "jpeg",
	"jpg":  "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// Blob is a decoded payload tagged with its mime type.
type Blob struct {
	MimeType string
	Data     []byte
}

// Parse decodes a data:<mime>;base64,<payload> string. The shape is checked
// before the payload is decoded.
func Parse(s string) (*Blob, error) {
	m := shape.FindStringSubmatch(s)
	if m == nil {
		return nil, ErrMalformed
	}
	data, err := base64.StdEncoding.DecodeString(m[2])
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return &Blob{MimeType: m[1], Data: data}, nil
}

func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:image")
}

// Subtype returns the part after "image/", or "" for other mime types.
func Subtype(mime string) string {
	if !strings.HasPrefix(mime, "image/") {
		return ""
	}
	return strings.TrimPrefix(mime, "image/")
}

// AllowedImage reports whether mime is one of the accepted image types.
func AllowedImage(mime string) bool {
	_, ok := allowed[Subtype(mime)]
	return ok
}

// Extension returns the file extension for an accepted image mime type.
func Extension(mime string) (string, bool) {
	ext, ok := allowed[Subtype(mime)]
	return ext, ok
}
