// Package ingest turns uploaded documents into plain text for the gateway.
// It is a pure function of the file content: no state, no side effects.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
)

// Ingest errors, surfaced to the user as typed file errors.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file exceeds the size limit")
	ErrEmptyDocument   = errors.New("no text could be extracted from the file")
	ErrCorruptFile     = errors.New("file could not be parsed")
)

// ExtractText reads an uploaded file and returns its plain text. Supported
// types are PDF and plain text, decided by file extension with a PDF magic
// byte fallback for extensionless uploads. maxBytes caps the read; anything
// larger is refused before parsing.
func ExtractText(filename string, r io.Reader, maxBytes int64) (string, error) {
	// Read one byte past the cap so oversize is detectable.
	data, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return "", ErrTooLarge
	}
	if len(data) == 0 {
		return "", ErrEmptyDocument
	}

	switch {
	case isPDF(filename, data):
		return extractPDF(data)
	case isPlainText(filename, data):
		text := strings.TrimSpace(string(data))
		if text == "" {
			return "", ErrEmptyDocument
		}
		return text, nil
	default:
		return "", ErrUnsupportedType
	}
}

func isPDF(filename string, data []byte) bool {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return true
	}
	return bytes.HasPrefix(data, []byte("%PDF-"))
}

func isPlainText(filename string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt", ".text", ".md":
		return true
	case "":
		return utf8.Valid(data) && !bytes.ContainsRune(data, 0)
	default:
		return false
	}
}

// extractPDF pulls the text layer out of a PDF. Scanned PDFs without a text
// layer come back empty and are reported as ErrEmptyDocument.
func extractPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", ErrCorruptFile
	}

	var b strings.Builder
	for pageNum := 1; pageNum <= reader.NumPage(); pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// Skip unreadable pages rather than failing the whole document.
			continue
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	text := strings.TrimSpace(b.String())
	if text == "" {
		return "", ErrEmptyDocument
	}
	return text, nil
}
