package extract

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"code.sajari.com/docconv"
	"github.com/ledongthuc/pdf"
)

// Media types accepted for upload.
const (
	MediaTypePDF      = "application/pdf"
	MediaTypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MediaTypeText     = "text/plain"
	MediaTypeMarkdown = "text/markdown"
)

// ErrUnsupportedType is returned for media types outside the allow-list.
var ErrUnsupportedType = errors.New("unsupported media type")

// Result holds extracted plain text and, where the format provides one,
// a page count.
type Result struct {
	Text      string
	PageCount *int
}

// Supported reports whether the given media type can be extracted.
func Supported(mediaType string) bool {
	switch mediaType {
	case MediaTypePDF, MediaTypeDOCX, MediaTypeText, MediaTypeMarkdown:
		return true
	}
	return false
}

// Extract converts raw document bytes into plain text, dispatching on the
// declared media type. Parse failures surface as errors, never as partial
// or garbage text.
func Extract(data []byte, mediaType string) (*Result, error) {
	switch mediaType {
	case MediaTypePDF:
		return extractPDF(data)
	case MediaTypeDOCX:
		return extractDOCX(data)
	case MediaTypeText, MediaTypeMarkdown:
		return &Result{Text: string(data)}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, mediaType)
	}
}

// extractPDF returns per-page text joined with newlines plus the page count.
func extractPDF(data []byte) (res *Result, err error) {
	// The pdf package panics on some malformed files.
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("parsing pdf: %v", r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("parsing pdf: %w", err)
	}

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting pdf page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return &Result{Text: strings.Join(pages, "\n"), PageCount: &pageCount}, nil
}

// extractDOCX returns the raw document text. DOCX has no fixed pagination,
// so no page count is reported.
func extractDOCX(data []byte) (*Result, error) {
	text, _, err := docconv.ConvertDocx(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parsing docx: %w", err)
	}
	return &Result{Text: text}, nil
}
