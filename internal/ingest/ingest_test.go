package ingest_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/testgenius/backend/internal/ingest"
)

func TestExtractText_PlainText(t *testing.T) {
	text, err := ingest.ExtractText("syllabus.txt", strings.NewReader("  Unit 1: Algebra\nUnit 2: Geometry  "), 1024)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Unit 1: Algebra\nUnit 2: Geometry" {
		t.Errorf("unexpected text %q", text)
	}
}

func TestExtractText_MarkdownAndExtensionless(t *testing.T) {
	if _, err := ingest.ExtractText("notes.md", strings.NewReader("# Notes"), 1024); err != nil {
		t.Errorf("markdown: unexpected error %v", err)
	}
	if _, err := ingest.ExtractText("upload", strings.NewReader("plain words"), 1024); err != nil {
		t.Errorf("extensionless UTF-8: unexpected error %v", err)
	}
}

func TestExtractText_UnsupportedExtension(t *testing.T) {
	_, err := ingest.ExtractText("sheet.xlsx", strings.NewReader("binary-ish"), 1024)
	if !errors.Is(err, ingest.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractText_BinaryWithoutExtension(t *testing.T) {
	_, err := ingest.ExtractText("upload", strings.NewReader("ab\x00cd"), 1024)
	if !errors.Is(err, ingest.ErrUnsupportedType) {
		t.Errorf("expected ErrUnsupportedType for NUL bytes, got %v", err)
	}
}

func TestExtractText_TooLarge(t *testing.T) {
	_, err := ingest.ExtractText("big.txt", strings.NewReader(strings.Repeat("a", 100)), 50)
	if !errors.Is(err, ingest.ErrTooLarge) {
		t.Errorf("expected ErrTooLarge, got %v", err)
	}
}

func TestExtractText_Empty(t *testing.T) {
	for _, content := range []string{"", "   \n\t  "} {
		_, err := ingest.ExtractText("empty.txt", strings.NewReader(content), 1024)
		if !errors.Is(err, ingest.ErrEmptyDocument) {
			t.Errorf("content %q: expected ErrEmptyDocument, got %v", content, err)
		}
	}
}

func TestExtractText_CorruptPDF(t *testing.T) {
	// PDF magic bytes followed by garbage.
	_, err := ingest.ExtractText("paper.pdf", strings.NewReader("%PDF-1.7 not actually a pdf"), 1024)
	if !errors.Is(err, ingest.ErrCorruptFile) {
		t.Errorf("expected ErrCorruptFile, got %v", err)
	}
}
