package studypack

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

// ErrNotDataURI is returned when an image URL is not a base64 data URI.
var ErrNotDataURI = errors.New("unexpected image URL format")

// Bytes decodes the image payload carried in URL.
func (g GeneratedImage) Bytes() ([]byte, error) {
	_, payload, ok := strings.Cut(g.URL, ";base64,")
	if !ok || !strings.HasPrefix(g.URL, "data:") {
		return nil, ErrNotDataURI
	}
	b, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return b, nil
}

// FileName suggests a PNG file name for the image of pack packID.
func (g GeneratedImage) FileName(packID string) string {
	return fmt.Sprintf("%s-%s.png", shortID(packID), shortID(g.ID))
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
