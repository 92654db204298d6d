package extract

import (
	"errors"
	"testing"
)

func TestSupported(t *testing.T) {
	supported := []string{MediaTypePDF, MediaTypeDOCX, MediaTypeText, MediaTypeMarkdown}
	for _, mt := range supported {
		if !Supported(mt) {
			t.Errorf("expected %s to be supported", mt)
		}
	}

	unsupported := []string{"image/png", "application/zip", "video/mp4", ""}
	for _, mt := range unsupported {
		if Supported(mt) {
			t.Errorf("expected %s to be unsupported", mt)
		}
	}
}

func TestExtractPlainText(t *testing.T) {
	res, err := Extract([]byte("hello world"), MediaTypeText)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Text != "hello world" {
		t.Errorf("expected passthrough text, got %q", res.Text)
	}
	if res.PageCount != nil {
		t.Errorf("expected no page count for text, got %v", *res.PageCount)
	}
}

func TestExtractMarkdown(t *testing.T) {
	res, err := Extract([]byte("# Title\n\nbody"), MediaTypeMarkdown)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	// Markdown is indexed as-is; no rendering.
	if res.Text != "# Title\n\nbody" {
		t.Errorf("expected raw markdown, got %q", res.Text)
	}
}

func TestExtractUnsupported(t *testing.T) {
	_, err := Extract([]byte("data"), "image/png")
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestExtractMalformedPDF(t *testing.T) {
	res, err := Extract([]byte("not a pdf at all"), MediaTypePDF)
	if err == nil {
		t.Fatal("expected error for malformed pdf")
	}
	if res != nil {
		t.Errorf("expected nil result, got %+v", res)
	}
}

func TestExtractMalformedDOCX(t *testing.T) {
	if _, err := Extract([]byte("not a zip"), MediaTypeDOCX); err == nil {
		t.Fatal("expected error for malformed docx")
	}
}
