package services

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxImageBytes bounds the decoded size of a cover image.
const MaxImageBytes = 2 * 1024 * 1024

// CoverImage is a validated inline cover image.
type CoverImage struct {
	DataURI  string
	MIMEType string
}

// ParseCoverImage validates a data URI and its declared MIME type. It returns
// nil when no image was supplied; imageType alone is ignored.
func ParseCoverImage(imageData, imageType string) (*CoverImage, error) {
	if imageData == "" {
		return nil, nil
	}
	if !strings.HasPrefix(imageType, "image/") {
		return nil, invalid("Invalid image data")
	}
	if !strings.HasPrefix(imageData, "data:image/") {
		return nil, invalid("Invalid image format")
	}

	header, payload, ok := strings.Cut(strings.TrimPrefix(imageData, "data:"), ",")
	if !ok {
		return nil, invalid("Invalid image format")
	}
	mediaType, encoding, ok := strings.Cut(header, ";")
	if !ok || encoding != "base64" {
		return nil, invalid("Image must be base64 encoded")
	}
	if !strings.EqualFold(mediaType, imageType) {
		return nil, invalid("Image type does not match image data")
	}

	// Reject before decoding when the encoded length already exceeds the bound.
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxImageBytes+2 {
		return nil, invalid("Image size must be less than 2MB")
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, invalid("Invalid image encoding")
	}
	if len(raw) == 0 {
		return nil, invalid("Image is empty")
	}
	if len(raw) > MaxImageBytes {
		return nil, invalid("Image size must be less than 2MB")
	}

	if detected := mimetype.Detect(raw); !strings.HasPrefix(detected.String(), "image/") {
		return nil, invalid("Image content is not an image")
	}

	return &CoverImage{DataURI: imageData, MIMEType: strings.ToLower(mediaType)}, nil
}
