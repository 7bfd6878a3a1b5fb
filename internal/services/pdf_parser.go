package services

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

var ErrNoTextContent = errors.New("no text content found in PDF")

// PDFParserService pulls plain text out of PDF bytes. An unreadable document
// and a document without text both yield "" and a non-nil error; callers treat
// the two the same way.
type PDFParserService interface {
	ExtractText(data []byte) (string, error)
}

type pdfParserService struct{}

func NewPDFParserService() PDFParserService {
	return &pdfParserService{}
}

func (p *pdfParserService) ExtractText(data []byte) (text string, err error) {
	if len(data) == 0 {
		return "", fmt.Errorf("failed to open PDF: empty input")
	}

	// The pdf package panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			text, err = "", fmt.Errorf("failed to read PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var textBuilder strings.Builder
	totalPage := r.NumPage()

	for pageIndex := 1; pageIndex <= totalPage; pageIndex++ {
		page := r.Page(pageIndex)
		if page.V.IsNull() {
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil || pageText == "" {
			continue
		}

		textBuilder.WriteString(pageText)
		textBuilder.WriteString("\n")
	}

	text = textBuilder.String()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoTextContent
	}

	return text, nil
}
