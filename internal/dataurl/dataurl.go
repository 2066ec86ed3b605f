// Package dataurl encodes and parses base64 data URLs
package dataurl

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed is returned for strings that are not base64 data URLs
var ErrMalformed = errors.New("malformed data url")

// Encode returns data as a data:<mime>;base64,... URL
func Encode(mimeType string, data []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// IsDataURL reports whether s looks like a data URL
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}

// Decode splits a base64 data URL into its MIME type and payload
func Decode(s string) (string, []byte, error) {
	if !IsDataURL(s) {
		return "", nil, ErrMalformed
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(s, "data:"), ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", ErrMalformed)
	}
	mimeType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 payloads are supported", ErrMalformed)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return strings.ToLower(strings.TrimSpace(mimeType)), data, nil
}
