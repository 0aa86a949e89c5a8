// Package pdfinput loads a chapter PDF from disk for inline upload.
package pdfinput

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// MaxBytes is the largest document accepted for inline upload.
const MaxBytes = 20 << 20

// ErrTooLarge is returned for documents above MaxBytes.
var ErrTooLarge = errors.New("pdf exceeds the inline upload limit")

var configOnce sync.Once

// Document is a validated PDF ready to attach to a generation request.
type Document struct {
	Name  string
	Pages int
	Size  int

	// Data is the base64-encoded file content.
	Data string
}

// Load reads, validates and encodes the PDF at path.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	doc, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	doc.Name = filepath.Base(path)
	return doc, nil
}

// Parse validates an in-memory PDF and counts its pages.
func Parse(b []byte) (*Document, error) {
	if len(b) == 0 {
		return nil, errors.New("pdf is empty")
	}
	if len(b) > MaxBytes {
		return nil, fmt.Errorf("%w (%d bytes, max %d)", ErrTooLarge, len(b), MaxBytes)
	}

	// pdfcpu writes a config directory on first use unless told otherwise.
	configOnce.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()

	if err := api.Validate(bytes.NewReader(b), conf); err != nil {
		return nil, fmt.Errorf("invalid pdf: %w", err)
	}
	pages, err := api.PageCount(bytes.NewReader(b), conf)
	if err != nil {
		return nil, fmt.Errorf("count pages: %w", err)
	}

	return &Document{
		Pages: pages,
		Size:  len(b),
		Data:  base64.StdEncoding.EncodeToString(b),
	}, nil
}
