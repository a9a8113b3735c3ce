// Package pdfreader extracts per-page text from PDF documents.
package pdfreader

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
	"go.uber.org/zap"

	"github.com/agriassist/agriassist/internal/domain/entities"
)

// Reader implements ports.DocumentReader for PDF files. Text is
// extracted page by page so downstream chunks carry exact page numbers.
type Reader struct {
	logger *zap.Logger
}

// NewReader creates a new PDF document reader.
func NewReader(logger *zap.Logger) *Reader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reader{logger: logger}
}

// SupportedExtensions returns the file extensions this reader accepts.
func (r *Reader) SupportedExtensions() []string {
	return []string{".pdf"}
}

// ReadPages extracts the text of each page. Pages that cannot be
// decoded are skipped with a warning; a document where every page
// fails or is empty is an error so ingestion can record the skip.
func (r *Reader) ReadPages(ctx context.Context, path string) ([]entities.Page, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	total := reader.NumPage()
	pages := make([]entities.Page, 0, total)
	for i := 1; i <= total; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		p := reader.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			r.logger.Warn("skipping undecodable page",
				zap.String("file", path),
				zap.Int("page", i),
				zap.Error(err))
			continue
		}
		text = normalizeWhitespace(text)
		if text == "" {
			continue
		}
		pages = append(pages, entities.Page{Number: i, Text: text})
	}

	if len(pages) == 0 {
		return nil, fmt.Errorf("no extractable text in %s", path)
	}
	return pages, nil
}

// normalizeWhitespace collapses runs of whitespace into single spaces.
// PDF extraction tends to scatter newlines and doubled spaces that
// would otherwise distort chunk boundaries.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
