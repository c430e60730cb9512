package domain

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
)

// DefaultImageMIME is assumed when a payload carries no data-URI prefix.
const DefaultImageMIME = "image/jpeg"

const imageDataPrefix = "data:image/"

var dataURIPrefix = regexp.MustCompile(`^data:(image/[a-zA-Z0-9.+-]+);base64,`)

// HasImageDataPrefix reports whether s starts like an image data URI.
func HasImageDataPrefix(s string) bool {
	return strings.HasPrefix(s, imageDataPrefix)
}

// StripDataURIPrefix splits an image data URI into its MIME type and base64
// payload. Input without a recognised prefix is returned untouched with
// DefaultImageMIME.
func StripDataURIPrefix(s string) (mimeType, payload string) {
	m := dataURIPrefix.FindStringSubmatch(s)
	if m == nil {
		return DefaultImageMIME, s
	}
	return strings.ToLower(m[1]), s[len(m[0]):]
}

// DecodeImageDataURI returns the MIME type and raw bytes of an image data URI.
func DecodeImageDataURI(s string) (string, []byte, error) {
	if !HasImageDataPrefix(s) {
		return "", nil, ErrInvalidFormat
	}
	mimeType, payload := StripDataURIPrefix(s)
	if payload == s {
		return "", nil, ErrInvalidFormat
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if len(data) == 0 {
		return "", nil, ErrInvalidFormat
	}
	return mimeType, data, nil
}

// EncodeImageDataURI wraps raw image bytes in a display-ready data URI.
func EncodeImageDataURI(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = DefaultImageMIME
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
