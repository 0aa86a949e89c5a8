package pdfinput

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// minimalPDF builds a valid PDF with the given number of blank pages.
func minimalPDF(pages int) []byte {
	var buf bytes.Buffer
	var offsets []int

	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}

	buf.WriteString("%PDF-1.4\n")
	obj("<< /Type /Catalog /Pages 2 0 R >>")

	kids := ""
	for i := range pages {
		kids += fmt.Sprintf("%d 0 R ", i+3)
	}
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", kids, pages))
	for range pages {
		obj("<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << >> >>")
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(offsets)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestParse_ValidDocument(t *testing.T) {
	b := minimalPDF(2)
	doc, err := Parse(b)
	require.NoError(t, err)
	assert.Equal(t, 2, doc.Pages)
	assert.Equal(t, len(b), doc.Size)

	decoded, err := base64.StdEncoding.DecodeString(doc.Data)
	require.NoError(t, err)
	assert.Equal(t, b, decoded)
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse(nil)
	assert.Error(t, err)

	_, err = Parse([]byte("Photosynthesis is how plants make food."))
	assert.Error(t, err)

	_, err = Parse(make([]byte, MaxBytes+1))
	assert.True(t, errors.Is(err, ErrTooLarge))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chapter.pdf")
	require.NoError(t, os.WriteFile(path, minimalPDF(1), 0o644))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "chapter.pdf", doc.Name)
	assert.Equal(t, 1, doc.Pages)

	_, err = Load(filepath.Join(t.TempDir(), "missing.pdf"))
	assert.Error(t, err)
}
