package extractor

import (
	"bytes"
	"fmt"
	"io"

	"exam-eval/internal/domain"
	"exam-eval/internal/logger"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"
)

// PDFExtractor implements domain.TextExtractor for PDF uploads.
type PDFExtractor struct{}

// NewPDFExtractor creates a new instance of PDFExtractor.
func NewPDFExtractor() domain.TextExtractor {
	return &PDFExtractor{}
}

// ExtractText implements domain.TextExtractor. The pdf package panics on some
// malformed inputs, so the recover converts those into extraction errors too.
func (e *PDFExtractor) ExtractText(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Get().Error("PDF reader panicked", zap.Any("panic", r))
			err = domain.NewExtractionError(fmt.Errorf("pdf reader panicked: %v", r))
		}
	}()

	if len(data) == 0 {
		return "", domain.NewExtractionError(fmt.Errorf("empty file"))
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domain.NewExtractionError(fmt.Errorf("failed to open pdf: %w", err))
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", domain.NewExtractionError(fmt.Errorf("failed to read pdf text: %w", err))
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", domain.NewExtractionError(fmt.Errorf("failed to read pdf text: %w", err))
	}

	logger.Get().Debug("Extracted text from PDF",
		zap.Int("input_bytes", len(data)),
		zap.Int("text_bytes", buf.Len()))
	return buf.String(), nil
}
