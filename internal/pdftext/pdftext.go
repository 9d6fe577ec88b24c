// Package pdftext extracts plain text from PDF documents.
package pdftext

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrInvalidPDF is returned when the bytes cannot be parsed as a PDF.
	ErrInvalidPDF = errors.New("invalid pdf")
	// ErrNoText is returned when a PDF parses but contains no extractable text.
	ErrNoText = errors.New("no text extracted from pdf")
)

// Extractor turns PDF bytes into text.
type Extractor interface {
	Extract(r io.ReaderAt, size int64) (string, error)
}

// LedongthucExtractor extracts text page by page with github.com/ledongthuc/pdf.
type LedongthucExtractor struct{}

// NewExtractor returns the default Extractor.
func NewExtractor() *LedongthucExtractor {
	return &LedongthucExtractor{}
}

var _ Extractor = (*LedongthucExtractor)(nil)

// Extract returns the concatenated plain text of every page.
func (LedongthucExtractor) Extract(r io.ReaderAt, size int64) (text string, err error) {
	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if rec := recover(); rec != nil {
			text, err = "", fmt.Errorf("%w: %v", ErrInvalidPDF, rec)
		}
	}()

	rdr, err := pdf.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPDF, err)
	}

	plain, err := rdr.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("%w: read text: %v", ErrInvalidPDF, err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("%w: read text: %v", ErrInvalidPDF, err)
	}

	text = buf.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoText
	}
	return text, nil
}
